package plan

import (
	"github.com/dianpeng/mfquery/spec"
)

// Semantic checking, just check obvious MF query bugs
//
// ----------------------------------------------------------------------------
//
// [1] the number of scans must stay within Config.MaxScanSize, every scan is
//     a full pass over the row source
//
// [2] a filter of scan i reading an accumulator of scan j >= i observes the
//     value before scan j runs. Scans are strictly ordered and this is the
//     caller's responsibility, so it is only reported as a warning
//
// [3] a grouping attribute that is also measured by an aggregate is legal
//     but almost always a typo, warning as well
//
// ----------------------------------------------------------------------------

func (self *Plan) semaCheck(s *spec.QuerySpec) error {
	if s.N+1 > self.Config.MaxScanSize {
		return self.specErr(
			"sema",
			"too many scans, %d requested and at most %d allowed",
			s.N,
			self.Config.MaxScanSize-1,
		)
	}
	return nil
}

func (self *Plan) semaScanOrder() {
	for _, ts := range self.TableScan {
		if ts.IsBase() {
			continue
		}
		for _, name := range ts.Filter.Accumulators() {
			d, ok := self.Fields.Descriptor(name)
			if !ok {
				continue
			}
			if d.Scan >= ts.Index {
				self.warn(
					"sema",
					"filter of scan %d reads %s before scan %d completes, in predicate(%s)",
					ts.Index,
					name,
					d.Scan,
					ts.Filter.Text,
				)
			}
		}
	}
}

func (self *Plan) semaMeasuredKey() {
	for _, d := range self.Fields.AccumulatorList() {
		if _, ok := self.newSymbolTable().GroupingAttr(d.Attr); ok {
			self.warn(
				"sema",
				"%s aggregates the grouping attribute %s",
				d.Name,
				d.Attr,
			)
		}
	}
}
