package cond

import (
	"bytes"
	"fmt"
	"strconv"
)

// Printing compiled predicates back to text, for plan dumps and tests. Binary
// nodes are always parenthesized so the left to right folding is visible.

func opText(op int) string {
	switch op {
	case TkEq:
		return "="
	case TkAnd:
		return "and"
	case TkOr:
		return "or"
	default:
		return tokenName(op)
	}
}

func doPrintConst(c *Const, buf *bytes.Buffer) {
	switch c.Ty {
	case ConstStr:
		buf.WriteString(fmt.Sprintf("%q", c.String))
	case ConstInt:
		buf.WriteString(fmt.Sprintf("%d", c.Int))
	default:
		buf.WriteString(strconv.FormatFloat(c.Real, 'g', -1, 64))
	}
}

func doPrintBinary(l Expr, op int, r Expr, buf *bytes.Buffer, spaced bool) {
	buf.WriteString("(")
	doPrint(l, buf)
	if spaced {
		buf.WriteString(" ")
		buf.WriteString(opText(op))
		buf.WriteString(" ")
	} else {
		buf.WriteString(opText(op))
	}
	doPrint(r, buf)
	buf.WriteString(")")
}

func doPrint(e Expr, buf *bytes.Buffer) {
	switch e.Type() {
	case ExprConst:
		doPrintConst(e.(*Const), buf)
	case ExprRef:
		buf.WriteString(e.(*Ref).Id)
	case ExprColumn:
		x := e.(*Column)
		buf.WriteString(fmt.Sprintf("%d.%s", x.Scan, x.Name))
	case ExprAgg:
		buf.WriteString(fmt.Sprintf("$%s", e.(*Agg).Name))
	case ExprAvg:
		x := e.(*Avg)
		buf.WriteString(fmt.Sprintf("avg($%s, $%s)", x.Sum, x.Count))
	case ExprKey:
		x := e.(*Key)
		buf.WriteString(fmt.Sprintf("key[%d:%s]", x.Index, x.Name))
	case ExprArith:
		x := e.(*Arith)
		doPrintBinary(x.L, x.Op, x.R, buf, false)
	case ExprCompare:
		x := e.(*Compare)
		doPrintBinary(x.L, x.Op, x.R, buf, true)
	case ExprLogic:
		x := e.(*Logic)
		doPrintBinary(x.L, x.Op, x.R, buf, true)
	case ExprTruth:
		buf.WriteString("truth(")
		doPrint(e.(*Truth).Operand, buf)
		buf.WriteString(")")
	default:
		panic("unreachable")
	}
}

func Print(e Expr) string {
	if e == nil {
		return ""
	}
	b := &bytes.Buffer{}
	doPrint(e, b)
	return b.String()
}
