package cond

// Parser of the two predicate dialects used by an MF query. The grammar is
// intentionally tiny, both dialects are a flat chain of terms joined by
// and/or which is folded strictly from left to right, ie there's no
// precedence between and/or and no parentheses at all:
//
//   a or b and c   ==>  ((a or b) and c)
//
// ### filter (sigma) --------------------------------------------------------
//
// filter := term (chain term)*
// term   := QUALIFIED cmp-op arith
// chain  := AND | OR
//
// ### having (G) ------------------------------------------------------------
//
// having := cond (chain cond)*
// cond   := arith (cmp-op arith)?
//
// ### shared -----------------------------------------------------------------
//
// arith  := mul (('+' | '-') mul)*
// mul    := unary (('*' | '/') unary)*
// unary  := '-' unary | '+' unary | atom
// atom   := INT | REAL | STR | ID | QUALIFIED
// cmp-op := '=' | '==' | '!=' | '<>' | '<' | '<=' | '>' | '>='
//
// QUALIFIED is <scan>.<attribute>, ie 1.state, and only allowed in a filter.
// A bare '=' is normalized into equality here.
// ----------------------------------------------------------------------------

import (
	"github.com/dianpeng/mfquery/errs"
)

const (
	modeFilter = iota
	modeHaving
)

type Parser struct {
	L    *Lexer
	mode int
	last int // end offset of the last consumed token
}

func newParser(source string, mode int) *Parser {
	p := &Parser{
		L:    newLexer(source),
		mode: mode,
	}
	p.L.Next()
	return p
}

func (self *Parser) stage() string {
	if self.mode == modeFilter {
		return "filter"
	}
	return "having"
}

func (self *Parser) err(msg string) error {
	if self.L.Token == TkError {
		return errs.PredicateSyntax(
			self.stage(),
			"%s, in predicate(%s)",
			self.L.Lexeme.Text,
			self.L.Source,
		)
	}
	return errs.PredicateSyntax(
		self.stage(),
		"%s: %s, in predicate(%s)",
		self.L.dinfo(),
		msg,
		self.L.Source,
	)
}

func (self *Parser) advance() int {
	self.last = self.L.Cursor
	return self.L.Next()
}

func (self *Parser) codeInfo(start int) CodeInfo {
	end := self.last
	if end < start {
		end = start
	}
	return CodeInfo{
		Start:   start,
		End:     end,
		Snippet: self.L.Source[start:end],
	}
}

func isCmpOp(tk int) bool {
	switch tk {
	case TkAssign, TkEq, TkNe, TkLt, TkLe, TkGt, TkGe:
		return true
	default:
		return false
	}
}

func normalizeCmpOp(tk int) int {
	if tk == TkAssign {
		return TkEq
	}
	return tk
}

func (self *Parser) Parse() (Expr, error) {
	if self.L.Token == TkEof {
		return nil, self.err("empty predicate")
	}

	start := self.L.Start
	lhs, err := self.parseTerm()
	if err != nil {
		return nil, err
	}

	for self.L.Token == TkAnd || self.L.Token == TkOr {
		op := self.L.Token
		self.advance()

		rhs, err := self.parseTerm()
		if err != nil {
			return nil, err
		}
		lhs = &Logic{
			Op:       op,
			L:        lhs,
			R:        rhs,
			CodeInfo: self.codeInfo(start),
		}
	}

	if self.L.Token != TkEof {
		return nil, self.err("expect 'and', 'or' or end of predicate, got " + tokenName(self.L.Token))
	}
	return lhs, nil
}

func (self *Parser) parseTerm() (Expr, error) {
	if self.mode == modeFilter {
		return self.parseFilterTerm()
	}
	return self.parseHavingTerm()
}

func (self *Parser) parseFilterTerm() (Expr, error) {
	start := self.L.Start

	if self.L.Token != TkQualified {
		return nil, self.err("filter term must look like <scan>.<attribute> <op> <value>")
	}
	lhs := &Column{
		Scan: int(self.L.Lexeme.Int),
		Name: self.L.Lexeme.Text,
	}
	self.advance()
	lhs.CodeInfo = self.codeInfo(start)

	if !isCmpOp(self.L.Token) {
		return nil, self.err("expect comparison operator after " + lhs.CodeInfo.Snippet)
	}
	op := normalizeCmpOp(self.L.Token)
	self.advance()

	rhs, err := self.parseArith()
	if err != nil {
		return nil, err
	}

	return &Compare{
		Op:       op,
		L:        lhs,
		R:        rhs,
		CodeInfo: self.codeInfo(start),
	}, nil
}

func (self *Parser) parseHavingTerm() (Expr, error) {
	start := self.L.Start

	lhs, err := self.parseArith()
	if err != nil {
		return nil, err
	}

	if !isCmpOp(self.L.Token) {
		return &Truth{
			Operand:  lhs,
			CodeInfo: self.codeInfo(start),
		}, nil
	}

	op := normalizeCmpOp(self.L.Token)
	self.advance()

	rhs, err := self.parseArith()
	if err != nil {
		return nil, err
	}

	return &Compare{
		Op:       op,
		L:        lhs,
		R:        rhs,
		CodeInfo: self.codeInfo(start),
	}, nil
}

func (self *Parser) parseArith() (Expr, error) {
	start := self.L.Start

	lhs, err := self.parseMul()
	if err != nil {
		return nil, err
	}
	for self.L.Token == TkAdd || self.L.Token == TkSub {
		op := self.L.Token
		self.advance()
		rhs, err := self.parseMul()
		if err != nil {
			return nil, err
		}
		lhs = &Arith{
			Op:       op,
			L:        lhs,
			R:        rhs,
			CodeInfo: self.codeInfo(start),
		}
	}
	return lhs, nil
}

func (self *Parser) parseMul() (Expr, error) {
	start := self.L.Start

	lhs, err := self.parseUnary()
	if err != nil {
		return nil, err
	}
	for self.L.Token == TkMul || self.L.Token == TkDiv {
		op := self.L.Token
		self.advance()
		rhs, err := self.parseUnary()
		if err != nil {
			return nil, err
		}
		lhs = &Arith{
			Op:       op,
			L:        lhs,
			R:        rhs,
			CodeInfo: self.codeInfo(start),
		}
	}
	return lhs, nil
}

func (self *Parser) parseUnary() (Expr, error) {
	start := self.L.Start

	switch self.L.Token {
	case TkAdd:
		self.advance()
		return self.parseUnary()

	case TkSub:
		self.advance()
		operand, err := self.parseUnary()
		if err != nil {
			return nil, err
		}
		// fold negative literal directly
		if operand.Type() == ExprConst {
			c := operand.(*Const)
			switch c.Ty {
			case ConstInt:
				c.Int = -c.Int
				c.CodeInfo = self.codeInfo(start)
				return c, nil
			case ConstReal:
				c.Real = -c.Real
				c.CodeInfo = self.codeInfo(start)
				return c, nil
			default:
				return nil, self.err("unary '-' applied to a string literal")
			}
		}
		return &Arith{
			Op:       TkSub,
			L:        &Const{Ty: ConstInt, Int: 0},
			R:        operand,
			CodeInfo: self.codeInfo(start),
		}, nil

	default:
		return self.parseAtomic()
	}
}

func (self *Parser) parseAtomic() (Expr, error) {
	start := self.L.Start

	switch self.L.Token {
	case TkInt:
		v := self.L.Lexeme.Int
		self.advance()
		return &Const{
			Ty:       ConstInt,
			Int:      v,
			CodeInfo: self.codeInfo(start),
		}, nil

	case TkReal:
		v := self.L.Lexeme.Real
		self.advance()
		return &Const{
			Ty:       ConstReal,
			Real:     v,
			CodeInfo: self.codeInfo(start),
		}, nil

	case TkStr:
		v := self.L.Lexeme.Text
		self.advance()
		return &Const{
			Ty:       ConstStr,
			String:   v,
			CodeInfo: self.codeInfo(start),
		}, nil

	case TkId:
		id := self.L.Lexeme.Text
		self.advance()
		return &Ref{
			Id:       id,
			CodeInfo: self.codeInfo(start),
		}, nil

	case TkQualified:
		if self.mode != modeFilter {
			return nil, self.err("qualified attribute is only allowed inside of a filter")
		}
		col := &Column{
			Scan: int(self.L.Lexeme.Int),
			Name: self.L.Lexeme.Text,
		}
		self.advance()
		col.CodeInfo = self.codeInfo(start)
		return col, nil

	case TkError:
		return nil, self.err("")

	default:
		return nil, self.err("unexpected token " + tokenName(self.L.Token) + " for operand")
	}
}
