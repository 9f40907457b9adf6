package cg

import (
	"github.com/dianpeng/mfquery/plan"
)

// ----------------------------------------------------------------------------
// Table scan. Every scan is one AWK function looping over the buffered rows,
// rows[r, i] holds field i of record r and col[name] maps the header. Scan 0
// creates the group entries, scan i > 0 only updates the entry the row maps
// to, after the row passed the scan's filter.
//
// Accumulators are stored in acc[g, name], min/max mark the first value in
// seen[g, name].
// ----------------------------------------------------------------------------

type tableScanCodeGen struct {
	cg     *queryCodeGen
	writer *awkWriter
}

func scanFuncName(idx int) string {
	return "scan_" + itoa(idx)
}

func (self *tableScanCodeGen) genColumnCheck(ts *plan.TableScan) {
	for _, c := range ts.Column {
		self.writer.Chunk(`
if (nrow > 0 && !(%[name] in col))
  mf_fail("scan %[idx]: row 1 has no attribute " %[name]);
`,
			awkWriterCtx{
				"name": awkQuote(c),
				"idx":  ts.Index,
			},
		)
	}
}

func (self *tableScanCodeGen) genUpdate(ts *plan.TableScan) {
	for _, d := range ts.Agg {
		ctx := awkWriterCtx{
			"acc":     accRef(d.Name),
			"name":    awkQuote(d.Name),
			"measure": "",
		}
		if d.Type != plan.AggCount {
			ctx["measure"] = "mf_measure(" + colRef(d.Attr) + ", " + itoa(ts.Index) +
				", r, " + awkQuote(d.Attr) + ", " + awkQuote(d.Name) + ")"
		}

		switch d.Type {
		case plan.AggCount:
			self.writer.Line("%[acc]++;", ctx)
		case plan.AggSum:
			self.writer.Line("%[acc] += %[measure];", ctx)
		case plan.AggMin, plan.AggMax:
			ctx["op"] = "<"
			if d.Type == plan.AggMax {
				ctx["op"] = ">"
			}
			self.writer.Chunk(`
v = %[measure];
if (!((g, %[name]) in seen) || v %[op] %[acc]) {
  %[acc] = v;
  seen[g, %[name]] = 1;
}
`, ctx)
		}
	}
}

func (self *tableScanCodeGen) genScan(ts *plan.TableScan) error {
	filter := ""
	if !ts.IsBase() && !ts.Filter.IsAlways() {
		f, err := genExpr(ts.Filter.Root)
		if err != nil {
			return err
		}
		filter = f
	}

	gb := &groupByCodeGen{
		cg:     self.cg,
		writer: self.writer,
	}

	self.writer.Line(
		"# %[text]",
		awkWriterCtx{
			"text": ts.Filter.String(),
		},
	)
	self.writer.Line(
		"function %[name](    r, k, g, v) {",
		awkWriterCtx{
			"name": scanFuncName(ts.Index),
		},
	)
	self.writer.Indent()
	self.genColumnCheck(ts)

	self.writer.Line("for (r = 1; r <= nrow; r++) {", nil)
	self.writer.Indent()
	self.writer.Line(
		"k = %[key];",
		awkWriterCtx{
			"key": gb.genKey(),
		},
	)
	if ts.IsBase() {
		gb.genInsert()
	} else {
		self.writer.Chunk(`
if (!(k in group))
  continue;
`, nil)
	}
	self.writer.Line("g = group[k];", nil)

	if filter != "" {
		self.writer.Chunk(`
if (!%[filter])
  continue;
`,
			awkWriterCtx{
				"filter": filter,
			},
		)
	}
	self.genUpdate(ts)

	self.writer.Dedent()
	self.writer.Line("}", nil)
	self.writer.Dedent()
	self.writer.Line("}", nil)
	return nil
}

func (self *tableScanCodeGen) gen() error {
	for _, ts := range self.cg.query.TableScan {
		if err := self.genScan(ts); err != nil {
			return err
		}
		self.writer.Blank()
	}
	return nil
}
