package cg

// Having phase, mf_having(g) tells whether entry g reaches the output
type havingCodeGen struct {
	cg     *queryCodeGen
	writer *awkWriter
}

func (self *havingCodeGen) gen() error {
	cond := "1"
	having := self.cg.query.Having.Filter
	if !having.IsAlways() {
		c, err := genExpr(having.Root)
		if err != nil {
			return err
		}
		cond = c
	}

	self.writer.Line(
		"# %[text]",
		awkWriterCtx{
			"text": having.String(),
		},
	)
	self.writer.Chunk(`
function mf_having(g) {
  return %[cond];
}
`,
		awkWriterCtx{
			"cond": cond,
		},
	)
	return nil
}
