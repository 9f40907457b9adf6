package cg

import (
	"strings"
)

// Grouping key. Group entries live in the associative array *group*, indexed
// by the canonical key of the row and holding the entry id. The raw grouping
// values of an entry are kept in gkey[id, i] as seen by the first row.

type groupByCodeGen struct {
	cg     *queryCodeGen
	writer *awkWriter
}

// genKey emits the AWK expression computing the canonical key of row r
func (self *groupByCodeGen) genKey() string {
	v := self.cg.query.GroupBy.VarList
	if len(v) == 0 {
		return `""`
	}
	parts := []string{}
	for _, name := range v {
		parts = append(parts, "mf_key("+colRef(name)+")")
	}
	return strings.Join(parts, " SUBSEP ")
}

// genInsert emits the entry creation of the base scan
func (self *groupByCodeGen) genInsert() {
	self.writer.Chunk(`
if (!(k in group)) {
  ngroup++;
  group[k] = ngroup;
`, nil)
	self.writer.Indent()
	for idx, name := range self.cg.query.GroupBy.VarList {
		self.writer.Line(
			"%[key] = %[col];",
			awkWriterCtx{
				"key": keyRef("ngroup", idx),
				"col": colRef(name),
			},
		)
	}
	self.writer.Dedent()
	self.writer.Line("}", nil)
}

// genLess emits mf_less(a, b), lexicographic over the grouping values
func (self *groupByCodeGen) genLess() {
	self.writer.Line("function mf_less(a, b,    c) {", nil)
	self.writer.Indent()
	for idx := range self.cg.query.GroupBy.VarList {
		self.writer.Chunk(`
c = mf_cmp(%[a], %[b]);
if (c != 0)
  return c < 0;
`,
			awkWriterCtx{
				"a": keyRef("a", idx),
				"b": keyRef("b", idx),
			},
		)
	}
	self.writer.Line("return 0;", nil)
	self.writer.Dedent()
	self.writer.Line("}", nil)
}
