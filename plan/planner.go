package plan

import (
	"github.com/dianpeng/mfquery/cond"
	"github.com/dianpeng/mfquery/spec"
)

func (self *Plan) planPrepare(s *spec.QuerySpec) error {
	// 1) spec shape
	if err := s.Validate(); err != nil {
		return err
	}

	// 2) perform semantic check
	if err := self.semaCheck(s); err != nil {
		return err
	}

	// 3) classify aggregation
	fields, err := self.anaAgg(s.F, s.N)
	if err != nil {
		return err
	}
	self.Fields = fields
	return nil
}

// ----------------------------------------------------------------------------
// plan group by
func (self *Plan) planGroupBy(s *spec.QuerySpec) {
	self.GroupBy = &GroupBy{
		VarList: append([]string{}, s.V...),
	}
}

// ----------------------------------------------------------------------------
// plan table scan, one per grouping variable plus the base scan. The column
// list of each scan is what a row must carry for that scan to process it
func scanColumn(groupBy []string, attrs []string, filter []string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, l := range [][]string{groupBy, attrs, filter} {
		for _, x := range l {
			if !seen[x] {
				seen[x] = true
				out = append(out, x)
			}
		}
	}
	return out
}

func (self *Plan) planTableScan(s *spec.QuerySpec) error {
	symbol := self.newSymbolTable()

	for idx := 0; idx <= s.N; idx++ {
		filter := cond.Always()

		if idx != baseScan {
			text, _ := s.Filter(idx)
			f, err := cond.CompileFilter(idx, text, symbol)
			if err != nil {
				return err
			}
			filter = f
		}

		attrs := self.Fields.Attrs(idx)
		self.TableScan = append(self.TableScan, &TableScan{
			Index:  idx,
			Filter: filter,
			Agg:    self.Fields.Scan(idx),
			Attrs:  attrs,
			Column: scanColumn(self.GroupBy.VarList, attrs, filter.Columns()),
		})
	}
	return nil
}

// ----------------------------------------------------------------------------
// plan having
func (self *Plan) planHaving(s *spec.QuerySpec) error {
	filter, err := cond.CompileHaving(s.G, self.newSymbolTable())
	if err != nil {
		return err
	}
	self.Having = &Having{
		Filter: filter,
	}
	return nil
}

// ----------------------------------------------------------------------------
// plan sort
func (self *Plan) planSort(s *spec.QuerySpec) {
	self.Sort = &Sort{
		VarList: self.GroupBy.VarList,
	}
}

// ----------------------------------------------------------------------------
// plan output, V followed by S in first seen order
func (self *Plan) planOutput(s *spec.QuerySpec) error {
	self.Output = &Output{}
	symbol := self.newSymbolTable()
	seen := make(map[string]bool)

	for _, l := range [][]string{s.V, s.S} {
		for _, name := range l {
			if seen[name] {
				continue
			}
			seen[name] = true

			v, err := self.resolveOutputVar(symbol, name)
			if err != nil {
				return err
			}
			self.Output.VarList = append(self.Output.VarList, v)
		}
	}
	return nil
}

func (self *Plan) plan(s *spec.QuerySpec) error {
	self.Spec = s
	if err := self.planPrepare(s); err != nil {
		return err
	}
	self.planGroupBy(s)
	if err := self.planTableScan(s); err != nil {
		return err
	}
	if err := self.planHaving(s); err != nil {
		return err
	}
	self.planSort(s)
	if err := self.planOutput(s); err != nil {
		return err
	}
	self.semaScanOrder()
	self.semaMeasuredKey()
	return nil
}
