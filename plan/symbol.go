package plan

import (
	"github.com/dianpeng/mfquery/cond"
	"github.com/dianpeng/mfquery/errs"
)

// Symbol resolution. A name used by a predicate or by the select list is one
// of the following, checked in order:
//
// 1) grouping attribute, one of V
// 2) accumulator allocated by the classification of F
// 3) derived avg, whose sum/count pair is allocated
//
// Anything else is a reference error.

type symbolTable struct {
	groupBy []string
	fields  *Fields
}

func (self *Plan) newSymbolTable() *symbolTable {
	return &symbolTable{
		groupBy: self.GroupBy.VarList,
		fields:  self.Fields,
	}
}

func (self *symbolTable) Accumulator(name string) bool {
	return self.fields.Accumulator(name)
}

func (self *symbolTable) GroupingAttr(name string) (int, bool) {
	for idx, v := range self.groupBy {
		if v == name {
			return idx, true
		}
	}
	return -1, false
}

// resolve a select list entry into an output var
func (self *Plan) resolveOutputVar(
	symbol *symbolTable,
	name string,
) (OutputVar, error) {
	if idx, ok := symbol.GroupingAttr(name); ok {
		return OutputVar{
			Name:  name,
			Type:  OutputKey,
			Index: idx,
		}, nil
	}

	if symbol.Accumulator(name) {
		return OutputVar{
			Name: name,
			Type: OutputAcc,
		}, nil
	}

	if avg, ok := self.Fields.Avg(name); ok {
		return OutputVar{
			Name: name,
			Type: OutputAvg,
			Avg:  avg,
		}, nil
	}

	// avg over an allocated sum/count pair is still computable
	if fn, rest, ok := cond.AggPrefix(name); ok && fn == "avg" {
		sum, count := "sum_"+rest, "count_"+rest
		if symbol.Accumulator(sum) && symbol.Accumulator(count) {
			d, _ := self.Fields.Descriptor(sum)
			return OutputVar{
				Name: name,
				Type: OutputAvg,
				Avg: &AvgField{
					Name:  name,
					Scan:  d.Scan,
					Sum:   sum,
					Count: count,
				},
			}, nil
		}
	}

	if _, _, ok := cond.AggPrefix(name); ok {
		return OutputVar{}, errs.Hint(
			self.refErr("output", "select field %s is not computed", name),
			"add "+name+" to F",
		)
	}
	return OutputVar{}, self.refErr(
		"output",
		"select field %s is neither a grouping attribute nor an aggregate",
		name,
	)
}
