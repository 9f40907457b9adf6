package plan

import (
	"fmt"
	"strings"
)

// Printing the plan out, for testing, debugging, visualization purpose etc ...

func (self *Plan) Print() string {
	buf := &strings.Builder{}
	self.printGroupBy(buf)
	self.printTableScanList(buf)
	self.printHaving(buf)
	self.printSort(buf)
	self.printOutput(buf)
	self.printWarning(buf)
	return buf.String()
}

func (self *Plan) printGroupBy(
	buf *strings.Builder,
) {
	buf.WriteString("##> GroupBy\n")
	if len(self.GroupBy.VarList) == 0 {
		buf.WriteString("--\n")
	} else {
		for idx, v := range self.GroupBy.VarList {
			buf.WriteString(fmt.Sprintf("Var[%d]: %s\n", idx, v))
		}
	}
}

func (self *Plan) printTableScan(
	ts *TableScan,
	buf *strings.Builder,
) {
	buf.WriteString("##> TableScan\n")
	buf.WriteString(fmt.Sprintf("Index: %d\n", ts.Index))
	buf.WriteString(fmt.Sprintf("Filter: %s\n", ts.Filter.String()))
	for idx, d := range ts.Agg {
		buf.WriteString(
			fmt.Sprintf(
				"Agg[%d]: %s = %s(%s)\n",
				idx,
				d.Name,
				d.AggName(),
				d.Attr,
			),
		)
	}
	buf.WriteString(fmt.Sprintf("Column: %s\n", strings.Join(ts.Column, ",")))
}

func (self *Plan) printTableScanList(
	buf *strings.Builder,
) {
	for _, ts := range self.TableScan {
		self.printTableScan(ts, buf)
	}
}

func (self *Plan) printHaving(
	buf *strings.Builder,
) {
	buf.WriteString("##> Having\n")
	if !self.HasHaving() {
		buf.WriteString("--\n")
	} else {
		buf.WriteString(fmt.Sprintf("Filter: %s\n", self.Having.Filter.String()))
	}
}

func (self *Plan) printSort(
	buf *strings.Builder,
) {
	buf.WriteString("##> Sort\n")
	if len(self.Sort.VarList) == 0 {
		buf.WriteString("--\n")
	} else {
		buf.WriteString(fmt.Sprintf("Var: %s\n", strings.Join(self.Sort.VarList, ",")))
	}
}

func (self *Plan) printOutput(
	buf *strings.Builder,
) {
	buf.WriteString("##> Output\n")
	for idx, v := range self.Output.VarList {
		switch v.Type {
		case OutputKey:
			buf.WriteString(fmt.Sprintf("Var[%d]: %s = key[%d]\n", idx, v.Name, v.Index))
		case OutputAcc:
			buf.WriteString(fmt.Sprintf("Var[%d]: %s = $%s\n", idx, v.Name, v.Name))
		default:
			buf.WriteString(
				fmt.Sprintf(
					"Var[%d]: %s = avg($%s, $%s)\n",
					idx,
					v.Name,
					v.Avg.Sum,
					v.Avg.Count,
				),
			)
		}
	}
}

func (self *Plan) printWarning(
	buf *strings.Builder,
) {
	if len(self.Warnings) == 0 {
		return
	}
	buf.WriteString("##> Warning\n")
	for _, w := range self.Warnings {
		buf.WriteString(w)
		buf.WriteString("\n")
	}
}
