package cg

import (
	"strings"

	"github.com/dianpeng/mfquery/plan"
)

// Output phase, the header line followed by one line per surviving entry in
// sorted order. Fields are joined by OFS.
type outputCodeGen struct {
	cg     *queryCodeGen
	writer *awkWriter
}

func (self *outputCodeGen) genVar(v plan.OutputVar) string {
	switch v.Type {
	case plan.OutputKey:
		return "mf_val(" + keyRef("g", v.Index) + ")"
	case plan.OutputAcc:
		return "mf_fmt(" + accRef(v.Name) + ")"
	default:
		return "mf_fmt(" + avgRef(v.Avg.Sum, v.Avg.Count) + ")"
	}
}

func (self *outputCodeGen) gen() {
	header := []string{}
	values := []string{}
	for _, v := range self.cg.query.Output.VarList {
		header = append(header, awkQuote(v.Name))
		values = append(values, self.genVar(v))
	}

	if len(header) == 0 {
		header = append(header, `""`)
		values = append(values, `""`)
	}

	self.writer.Chunk(`
function mf_output(    i, g) {
  print %[header];
  for (i = 1; i <= ngroup; i++) {
    g = order[i];
    if (!mf_having(g))
      continue;
    print %[values];
  }
}
`,
		awkWriterCtx{
			"header": strings.Join(header, ", "),
			"values": strings.Join(values, ", "),
		},
	)
}
