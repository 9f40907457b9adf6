package cg

import (
	"io"
	"strconv"
	"strings"

	"github.com/benhoyt/goawk/interp"
	"github.com/benhoyt/goawk/parser"
	"github.com/cockroachdb/errors"
	"github.com/dianpeng/mfquery/errs"
	"github.com/dianpeng/mfquery/plan"
)

type Config struct {
	Separator       rune   // input field separator, ',' when zero
	OutputSeparator string // OFS, a single space when empty
}

// Generate translates a plan into a self contained AWK program. The program
// reads one delimited input with a header line, buffers every record and
// runs the whole query in END: scan_0 .. scan_n, the sort, the having filter
// and the output. Groups are keyed by awk's associative arrays.
func Generate(x *plan.Plan, config *Config) (string, error) {
	g := &queryCodeGen{
		Separator:       ',',
		OutputSeparator: " ",
		query:           x,
		writer:          newAwkWriter(),
	}
	if config != nil {
		if config.Separator != 0 {
			g.Separator = config.Separator
		}
		if config.OutputSeparator != "" {
			g.OutputSeparator = config.OutputSeparator
		}
	}
	return g.Gen()
}

// codegen from plan to *awk* code
type queryCodeGen struct {
	Separator       rune
	OutputSeparator string
	query           *plan.Plan
	writer          *awkWriter
}

func itoa(x int) string {
	return strconv.Itoa(x)
}

func (self *queryCodeGen) genBegin() {
	self.writer.Chunk(`
BEGIN {
  FS = %[fs];
  OFS = %[ofs];
  CONVFMT = "%.17g";
  nrow = 0;
  ngroup = 0;
  failed = "";
}

NR == 1 {
  for (i = 1; i <= NF; i++) {
    h = $i;
    gsub(/^[ \t\r]+|[ \t\r]+$/, "", h);
    col[h] = i;
  }
  ncol = NF;
  next;
}

NF == 0 {
  next;
}

{
  if (NF != ncol && failed == "")
    failed = sprintf("input line %d has %d fields, header has %d", NR, NF, ncol);
  nrow++;
  for (i = 1; i <= NF; i++)
    rows[nrow, i] = $i;
}
`,
		awkWriterCtx{
			"fs":  awkQuote(string(self.Separator)),
			"ofs": awkQuote(self.OutputSeparator),
		},
	)
}

func (self *queryCodeGen) genEnd() {
	self.writer.Line("END {", nil)
	self.writer.Indent()
	self.writer.Chunk(`
if (failed != "")
  mf_fail(failed);
`, nil)
	for _, ts := range self.query.TableScan {
		self.writer.Line(
			"%[name]();",
			awkWriterCtx{
				"name": scanFuncName(ts.Index),
			},
		)
	}
	self.writer.Line("mf_sort();", nil)
	self.writer.Line("mf_output();", nil)
	self.writer.Dedent()
	self.writer.Line("}", nil)
}

func (self *queryCodeGen) Gen() (string, error) {
	self.writer.Line(
		"# mfquery, %[scan] scans over %[group]",
		awkWriterCtx{
			"scan":  self.query.ScanSize(),
			"group": "(" + strings.Join(self.query.GroupBy.VarList, ", ") + ")",
		},
	)
	self.genBegin()
	self.writer.Blank()

	ts := &tableScanCodeGen{
		cg:     self,
		writer: self.writer,
	}
	if err := ts.gen(); err != nil {
		return "", err
	}

	sort := &sortCodeGen{
		cg:     self,
		writer: self.writer,
	}
	sort.gen()
	self.writer.Blank()

	having := &havingCodeGen{
		cg:     self,
		writer: self.writer,
	}
	if err := having.gen(); err != nil {
		return "", err
	}
	self.writer.Blank()

	output := &outputCodeGen{
		cg:     self,
		writer: self.writer,
	}
	output.gen()
	self.writer.Blank()

	self.genEnd()
	self.writer.Chunk(builtinAWK, nil)
	return self.writer.Flush(), nil
}

// Run executes program with GoAWK's interpreter, input is the delimited
// table. A program exiting with a non zero status reports a RowError carrying
// whatever it wrote to stderr.
func Run(
	program string,
	input io.Reader,
	output io.Writer,
) error {
	prog, err := parser.ParseProgram(
		[]byte(program),
		nil,
	)
	if err != nil {
		return errors.Wrap(err, "stage(awk): generated program does not parse")
	}

	stderr := &strings.Builder{}
	awk, err := interp.New(prog)
	if err != nil {
		return errors.Wrap(err, "stage(awk)")
	}
	status, err := awk.Execute(&interp.Config{
		Stdin:  input,
		Output: output,
		Error:  stderr,
		Args:   []string{},
	})
	if err != nil {
		return errors.Wrap(err, "stage(awk)")
	}
	if status != 0 {
		return errs.Row("awk", "%s", strings.TrimSpace(stderr.String()))
	}
	return nil
}
