package cg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dianpeng/mfquery/cond"
)

// expression generation, a compiled predicate is translated into an AWK
// expression reading the current row (r) and the current group entry (g)
type exprCodeGen struct {
	o strings.Builder
}

func genExpr(e cond.Expr) (string, error) {
	gen := &exprCodeGen{}
	if err := gen.genExpr(e); err != nil {
		return "", err
	}
	return gen.o.String(), nil
}

func (self *exprCodeGen) genConst(
	c *cond.Const,
) {
	switch c.Ty {
	case cond.ConstInt:
		self.o.WriteString(fmt.Sprintf("%d", c.Int))
	case cond.ConstReal:
		self.o.WriteString(strconv.FormatFloat(c.Real, 'g', -1, 64))
	default:
		self.o.WriteString(awkQuote(c.String))
	}
}

func accRef(name string) string {
	return fmt.Sprintf("acc[g, %s]", awkQuote(name))
}

func avgRef(sum, count string) string {
	return fmt.Sprintf("mf_avg(%s, %s)", accRef(sum), accRef(count))
}

func colRef(name string) string {
	return fmt.Sprintf("rows[r, col[%s]]", awkQuote(name))
}

func keyRef(g string, idx int) string {
	return fmt.Sprintf("gkey[%s, %d]", g, idx)
}

func arithOp(op int) string {
	switch op {
	case cond.TkAdd:
		return "+"
	case cond.TkSub:
		return "-"
	case cond.TkMul:
		return "*"
	default:
		return "/"
	}
}

func compareOp(op int) string {
	switch op {
	case cond.TkEq:
		return "=="
	case cond.TkNe:
		return "!="
	case cond.TkLt:
		return "<"
	case cond.TkLe:
		return "<="
	case cond.TkGt:
		return ">"
	default:
		return ">="
	}
}

func (self *exprCodeGen) genArith(
	x *cond.Arith,
) error {
	if x.Op == cond.TkDiv {
		self.o.WriteString("mf_div(mf_n(")
		if err := self.genExpr(x.L); err != nil {
			return err
		}
		self.o.WriteString("), mf_n(")
		if err := self.genExpr(x.R); err != nil {
			return err
		}
		self.o.WriteString("))")
		return nil
	}

	self.o.WriteString("(mf_n(")
	if err := self.genExpr(x.L); err != nil {
		return err
	}
	self.o.WriteString(fmt.Sprintf(") %s mf_n(", arithOp(x.Op)))
	if err := self.genExpr(x.R); err != nil {
		return err
	}
	self.o.WriteString("))")
	return nil
}

func (self *exprCodeGen) genCompare(
	x *cond.Compare,
) error {
	self.o.WriteString("(mf_cmp(")
	if err := self.genExpr(x.L); err != nil {
		return err
	}
	self.o.WriteString(", ")
	if err := self.genExpr(x.R); err != nil {
		return err
	}
	self.o.WriteString(fmt.Sprintf(") %s 0)", compareOp(x.Op)))
	return nil
}

func (self *exprCodeGen) genLogic(
	x *cond.Logic,
) error {
	op := "&&"
	if x.Op == cond.TkOr {
		op = "||"
	}
	self.o.WriteString("(")
	if err := self.genExpr(x.L); err != nil {
		return err
	}
	self.o.WriteString(fmt.Sprintf(" %s ", op))
	if err := self.genExpr(x.R); err != nil {
		return err
	}
	self.o.WriteString(")")
	return nil
}

func (self *exprCodeGen) genExpr(
	e cond.Expr,
) error {
	switch e.Type() {
	case cond.ExprConst:
		self.genConst(e.(*cond.Const))
	case cond.ExprColumn:
		self.o.WriteString(colRef(e.(*cond.Column).Name))
	case cond.ExprAgg:
		self.o.WriteString(fmt.Sprintf("(%s + 0)", accRef(e.(*cond.Agg).Name)))
	case cond.ExprAvg:
		x := e.(*cond.Avg)
		self.o.WriteString(avgRef(x.Sum, x.Count))
	case cond.ExprKey:
		self.o.WriteString(keyRef("g", e.(*cond.Key).Index))
	case cond.ExprArith:
		return self.genArith(e.(*cond.Arith))
	case cond.ExprCompare:
		return self.genCompare(e.(*cond.Compare))
	case cond.ExprLogic:
		return self.genLogic(e.(*cond.Logic))
	case cond.ExprTruth:
		self.o.WriteString("mf_truth(")
		if err := self.genExpr(e.(*cond.Truth).Operand); err != nil {
			return err
		}
		self.o.WriteString(")")
	default:
		return errors.AssertionFailedf(
			"stage(code-gen): unresolved expression %s",
			errors.Safe(e.CInfo().Snippet),
		)
	}
	return nil
}
