// Package spec holds the declarative description of a multi-feature (MF)
// aggregation query.
//
// A query is described by six components, named after the classic MF/EMF
// query notation:
//
//   V      grouping attributes, ordered and distinct
//   F      requested aggregates, ie sum_quant, count_1_quant, avg_2_quant
//   n      number of grouping variables, ie conditional scans
//   sigma  per grouping variable row filter, "1.state = 'NY'"
//   G      optional having predicate over the aggregates
//   S      select list
//
// The spec is loaded once per run and is immutable afterwards.
package spec

import (
	"strings"

	"github.com/dianpeng/mfquery/errs"
)

type QuerySpec struct {
	V     []string       // grouping attributes
	F     []string       // aggregate requests
	N     int            // number of conditional scans
	Sigma map[int]string // scan index (1..N) -> filter text
	G     string         // having text, empty means always true
	S     []string       // select list
}

func (self *QuerySpec) HasHaving() bool {
	return strings.TrimSpace(self.G) != ""
}

// Filter returns the filter text of conditional scan idx
func (self *QuerySpec) Filter(idx int) (string, bool) {
	v, ok := self.Sigma[idx]
	return v, ok
}

func (self *QuerySpec) IsGroupingAttr(name string) bool {
	for _, v := range self.V {
		if v == name {
			return true
		}
	}
	return false
}

// Validate checks the structural invariants of the spec. Aggregate names are
// checked later by the field classifier since only it knows the naming rule.
func (self *QuerySpec) Validate() error {
	if self.N < 0 {
		return errs.Spec("spec", "number of grouping variables must be >= 0, got %d", self.N)
	}

	seen := make(map[string]bool)
	for idx, v := range self.V {
		if strings.TrimSpace(v) == "" {
			return errs.Spec("spec", "grouping attribute V[%d] is empty", idx)
		}
		if seen[v] {
			return errs.Hint(
				errs.Spec("spec", "grouping attribute(%s) is not distinct", v),
				"remove the duplicated entry from V",
			)
		}
		seen[v] = true
	}

	for idx, f := range self.F {
		if strings.TrimSpace(f) == "" {
			return errs.Spec("spec", "aggregate F[%d] is empty", idx)
		}
	}

	for i := 1; i <= self.N; i++ {
		text, ok := self.Sigma[i]
		if !ok {
			return errs.Hint(
				errs.Spec("spec", "grouping variable %d has no filter in sigma", i),
				"every scan index from 1 to n needs a sigma entry",
			)
		}
		if strings.TrimSpace(text) == "" {
			return errs.Spec("spec", "filter of grouping variable %d is empty", i)
		}
	}
	for idx := range self.Sigma {
		if idx < 1 || idx > self.N {
			return errs.Spec(
				"spec",
				"sigma names grouping variable %d, but n is %d",
				idx,
				self.N,
			)
		}
	}

	for idx, s := range self.S {
		if strings.TrimSpace(s) == "" {
			return errs.Spec("spec", "select field S[%d] is empty", idx)
		}
	}
	return nil
}
