package cond

import (
	"strings"

	"github.com/dianpeng/mfquery/errs"
)

// Scope tells the rewrite pass which names are resolvable. Accumulators are
// the sum/count/min/max slots of a group entry, grouping attributes are the
// V list.
type Scope interface {
	Accumulator(string) bool
	GroupingAttr(string) (int, bool)
}

// AggPrefix splits an aggregate field name into its function and the rest,
// ie avg_1_quant => ("avg", "1_quant")
func AggPrefix(name string) (string, string, bool) {
	pos := strings.Index(name, "_")
	if pos <= 0 || pos == len(name)-1 {
		return "", "", false
	}
	switch f := name[:pos]; f {
	case "sum", "count", "min", "max", "avg":
		return f, name[pos+1:], true
	default:
		return "", "", false
	}
}

type rewriter struct {
	mode  int
	text  string
	scope Scope
}

func (self *rewriter) stage() string {
	if self.mode == modeFilter {
		return "filter"
	}
	return "having"
}

func (self *rewriter) resolve(ref *Ref) (Expr, error) {
	fn, rest, ok := AggPrefix(ref.Id)
	if ok {
		if fn == "avg" {
			sum := "sum_" + rest
			count := "count_" + rest
			if !self.scope.Accumulator(sum) || !self.scope.Accumulator(count) {
				return nil, errs.Hint(
					errs.Reference(
						self.stage(),
						"%s needs %s and %s, which are not computed, in predicate(%s)",
						ref.Id,
						sum,
						count,
						self.text,
					),
					"add "+ref.Id+" to F",
				)
			}
			return &Avg{
				Name:     ref.Id,
				Sum:      sum,
				Count:    count,
				CodeInfo: ref.CodeInfo,
			}, nil
		}

		if !self.scope.Accumulator(ref.Id) {
			return nil, errs.Hint(
				errs.Reference(
					self.stage(),
					"aggregate %s is not computed, in predicate(%s)",
					ref.Id,
					self.text,
				),
				"add "+ref.Id+" to F",
			)
		}
		return &Agg{
			Name:     ref.Id,
			CodeInfo: ref.CodeInfo,
		}, nil
	}

	if self.mode == modeHaving {
		if idx, ok := self.scope.GroupingAttr(ref.Id); ok {
			return &Key{
				Index:    idx,
				Name:     ref.Id,
				CodeInfo: ref.CodeInfo,
			}, nil
		}
		return nil, errs.Reference(
			"having",
			"%s is neither an aggregate nor a grouping attribute, in predicate(%s)",
			ref.Id,
			self.text,
		)
	}

	return nil, errs.Hint(
		errs.PredicateSyntax(
			"filter",
			"bare identifier %s on the right hand side, in predicate(%s)",
			ref.Id,
			self.text,
		),
		"quote string literals, ie '"+ref.Id+"', or qualify attributes, ie 1."+ref.Id,
	)
}

func (self *rewriter) rewrite(e Expr) (Expr, error) {
	switch e.Type() {
	case ExprRef:
		return self.resolve(e.(*Ref))

	case ExprArith:
		x := e.(*Arith)
		l, err := self.rewrite(x.L)
		if err != nil {
			return nil, err
		}
		r, err := self.rewrite(x.R)
		if err != nil {
			return nil, err
		}
		x.L, x.R = l, r
		return x, nil

	case ExprCompare:
		x := e.(*Compare)
		l, err := self.rewrite(x.L)
		if err != nil {
			return nil, err
		}
		r, err := self.rewrite(x.R)
		if err != nil {
			return nil, err
		}
		x.L, x.R = l, r
		return x, nil

	case ExprLogic:
		x := e.(*Logic)
		l, err := self.rewrite(x.L)
		if err != nil {
			return nil, err
		}
		r, err := self.rewrite(x.R)
		if err != nil {
			return nil, err
		}
		x.L, x.R = l, r
		return x, nil

	case ExprTruth:
		x := e.(*Truth)
		o, err := self.rewrite(x.Operand)
		if err != nil {
			return nil, err
		}
		x.Operand = o
		return x, nil

	default:
		return e, nil
	}
}
