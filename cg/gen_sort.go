package cg

// ----------------------------------------------------------------------------
// Sorting phase. Plain awk has no sort builtin (asort/asorti are gawk only),
// so the entry ids are put into order[1..ngroup] and sorted in place with a
// stable insertion sort over mf_less.
// ----------------------------------------------------------------------------

type sortCodeGen struct {
	cg     *queryCodeGen
	writer *awkWriter
}

func (self *sortCodeGen) gen() {
	gb := &groupByCodeGen{
		cg:     self.cg,
		writer: self.writer,
	}
	gb.genLess()
	self.writer.Blank()

	self.writer.Chunk(`
function mf_sort(    i, j, t) {
  for (i = 1; i <= ngroup; i++)
    order[i] = i;
  for (i = 2; i <= ngroup; i++) {
    t = order[i];
    for (j = i - 1; j >= 1 && mf_less(t, order[j]); j--)
      order[j + 1] = order[j];
    order[j + 1] = t;
  }
}
`, nil)
}
