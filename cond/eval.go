package cond

import (
	"strings"

	"github.com/dianpeng/mfquery/errs"
)

// Env is what a compiled predicate reads at evaluation time. For a filter it
// is the current row plus the row's own group entry, for the having clause
// there is no row and Column always misses.
type Env interface {
	Column(string) (interface{}, bool)
	Accumulator(string) (float64, bool)
	Key(int) interface{}
}

// Predicate is a compiled filter or having clause. A nil Root is the
// constant true predicate, used when G is absent.
type Predicate struct {
	Text string
	Root Expr

	columns      []string
	accumulators []string
}

func newPredicate(text string, root Expr) *Predicate {
	return &Predicate{
		Text:         text,
		Root:         root,
		columns:      Columns(root),
		accumulators: Accumulators(root),
	}
}

// Always returns the constant true predicate
func Always() *Predicate {
	return newPredicate("", nil)
}

func (self *Predicate) IsAlways() bool {
	return self.Root == nil
}

// Columns returns the row attributes the predicate reads
func (self *Predicate) Columns() []string {
	return self.columns
}

// Accumulators returns the accumulator slots the predicate reads
func (self *Predicate) Accumulators() []string {
	return self.accumulators
}

func (self *Predicate) String() string {
	if self.Root == nil {
		return "true"
	}
	return Print(self.Root)
}

func (self *Predicate) Match(env Env) (bool, error) {
	if self.Root == nil {
		return true, nil
	}
	v, err := Eval(self.Root, env)
	if err != nil {
		return false, err
	}
	return Truthy(v), nil
}

func compile(text string, mode int, scope Scope) (Expr, error) {
	p := newParser(text, mode)
	root, err := p.Parse()
	if err != nil {
		return nil, err
	}
	r := &rewriter{
		mode:  mode,
		text:  text,
		scope: scope,
	}
	return r.rewrite(root)
}

// CompileFilter compiles the row filter of conditional scan `scan`. The
// grouping variable prefix written in the text (1. in 1.state) is not
// checked against scan, the filter always reads the current row.
func CompileFilter(scan int, text string, scope Scope) (*Predicate, error) {
	root, err := compile(text, modeFilter, scope)
	if err != nil {
		return nil, err
	}
	return newPredicate(text, root), nil
}

// CompileHaving compiles the having clause, empty text yields Always
func CompileHaving(text string, scope Scope) (*Predicate, error) {
	if strings.TrimSpace(text) == "" {
		return Always(), nil
	}
	root, err := compile(text, modeHaving, scope)
	if err != nil {
		return nil, err
	}
	return newPredicate(text, root), nil
}

func arith(x *Arith, env Env) (interface{}, error) {
	l, err := Eval(x.L, env)
	if err != nil {
		return nil, err
	}
	r, err := Eval(x.R, env)
	if err != nil {
		return nil, err
	}

	lf, ok := ToFloat64(l)
	if !ok {
		return nil, errs.Row("eval", "non numeric operand(%v) in %s", l, x.CodeInfo.Snippet)
	}
	rf, ok := ToFloat64(r)
	if !ok {
		return nil, errs.Row("eval", "non numeric operand(%v) in %s", r, x.CodeInfo.Snippet)
	}

	switch x.Op {
	case TkAdd:
		return lf + rf, nil
	case TkSub:
		return lf - rf, nil
	case TkMul:
		return lf * rf, nil
	default:
		if rf == 0 {
			return nil, errs.Row("eval", "division by zero in %s", x.CodeInfo.Snippet)
		}
		return lf / rf, nil
	}
}

func accumulator(name string, env Env) (float64, error) {
	v, ok := env.Accumulator(name)
	if !ok {
		return 0, errs.Reference("eval", "accumulator %s is not allocated", name)
	}
	return v, nil
}

// Eval evaluates e against env. Comparisons and logic nodes yield bool.
func Eval(e Expr, env Env) (interface{}, error) {
	switch e.Type() {
	case ExprConst:
		return e.(*Const).Value(), nil

	case ExprColumn:
		x := e.(*Column)
		v, ok := env.Column(x.Name)
		if !ok {
			return nil, errs.Row("eval", "row has no attribute %s", x.Name)
		}
		return v, nil

	case ExprAgg:
		return accumulator(e.(*Agg).Name, env)

	case ExprAvg:
		x := e.(*Avg)
		sum, err := accumulator(x.Sum, env)
		if err != nil {
			return nil, err
		}
		count, err := accumulator(x.Count, env)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return float64(0), nil
		}
		return sum / count, nil

	case ExprKey:
		return env.Key(e.(*Key).Index), nil

	case ExprArith:
		return arith(e.(*Arith), env)

	case ExprCompare:
		x := e.(*Compare)
		l, err := Eval(x.L, env)
		if err != nil {
			return nil, err
		}
		r, err := Eval(x.R, env)
		if err != nil {
			return nil, err
		}
		return compareOp(x.Op, l, r), nil

	case ExprLogic:
		x := e.(*Logic)
		l, err := Eval(x.L, env)
		if err != nil {
			return nil, err
		}
		lv := Truthy(l)
		if x.Op == TkAnd && !lv {
			return false, nil
		}
		if x.Op == TkOr && lv {
			return true, nil
		}
		r, err := Eval(x.R, env)
		if err != nil {
			return nil, err
		}
		return Truthy(r), nil

	case ExprTruth:
		v, err := Eval(e.(*Truth).Operand, env)
		if err != nil {
			return nil, err
		}
		return Truthy(v), nil

	default:
		return nil, errs.Reference("eval", "unresolved identifier %s", e.CInfo().Snippet)
	}
}
