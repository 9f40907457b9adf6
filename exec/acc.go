package exec

import (
	"github.com/dianpeng/mfquery/plan"
)

// accumulator is one aggregate slot of a group entry. sum and count start at
// 0, min and max take the first contribution and read as 0 until then.
type accumulator struct {
	Type  int // plan.AggXXX, never plan.AggAvg
	Value float64
	Set   bool
}

func (self *accumulator) update(x float64) {
	switch self.Type {
	case plan.AggSum:
		self.Value += x
	case plan.AggCount:
		self.Value++
	case plan.AggMin:
		if !self.Set || x < self.Value {
			self.Value = x
		}
	case plan.AggMax:
		if !self.Set || x > self.Value {
			self.Value = x
		}
	}
	self.Set = true
}

func avg(sum, count float64) float64 {
	if count == 0 {
		return 0
	}
	return sum / count
}

// GroupEntry is one group, the tuple of grouping attribute values plus one
// accumulator per allocated aggregate
type GroupEntry struct {
	key []interface{}
	acc map[string]*accumulator
}

func newGroupEntry(key []interface{}, fields *plan.Fields) *GroupEntry {
	entry := &GroupEntry{
		key: key,
		acc: make(map[string]*accumulator),
	}
	for _, d := range fields.AccumulatorList() {
		entry.acc[d.Name] = &accumulator{
			Type: d.Type,
		}
	}
	return entry
}

// Key returns the grouping attribute values in V order
func (self *GroupEntry) Key() []interface{} {
	return self.key
}

func (self *GroupEntry) Accumulator(name string) (float64, bool) {
	a, ok := self.acc[name]
	if !ok {
		return 0, false
	}
	return a.Value, true
}

// Contributed tells whether any row has been folded into the accumulator
func (self *GroupEntry) Contributed(name string) bool {
	a, ok := self.acc[name]
	return ok && a.Set
}

// Avg derives avg from its sum/count pair, 0 when count is 0
func (self *GroupEntry) Avg(a *plan.AvgField) float64 {
	sum, _ := self.Accumulator(a.Sum)
	count, _ := self.Accumulator(a.Count)
	return avg(sum, count)
}
