package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dianpeng/mfquery/cg"
	"github.com/dianpeng/mfquery/errs"
	"github.com/dianpeng/mfquery/exec"
	"github.com/dianpeng/mfquery/output"
	"github.com/dianpeng/mfquery/plan"
	"github.com/dianpeng/mfquery/source"
	"github.com/dianpeng/mfquery/spec"
	"github.com/fatih/color"
	"github.com/google/uuid"
)

var fSpec = flag.String(
	"spec",
	"",
	"path of the query spec, .json or .yaml",
)

var fInput = flag.String(
	"input",
	"",
	"delimited input file with a header line, .gz/.zst/.lz4/.br are decompressed",
)

var fSep = flag.String(
	"sep",
	",",
	"field separator of -input, use tab for a tab",
)

var fParquet = flag.String(
	"parquet",
	"",
	"parquet input file",
)

var fPgDSN = flag.String(
	"pg-dsn",
	os.Getenv("MF_PG_DSN"),
	"postgres connection string, MF_PG_DSN by default",
)

var fPgTable = flag.String(
	"pg-table",
	os.Getenv("MF_PG_TABLE"),
	"postgres table to scan, MF_PG_TABLE by default",
)

var fFormat = flag.String(
	"format",
	output.FormatTable,
	"output format, table, jsonl or csv",
)

var fEngine = flag.String(
	"engine",
	"go",
	"go runs the executor, awk runs the generated program with GoAWK on -input",
)

var fEmitAwk = flag.String(
	"emit-awk",
	"",
	"save the generated AWK program to the path, - for STDOUT",
)

var fOutput = flag.String(
	"output",
	"",
	"specify path to save output file, default write to STDOUT",
)

var fHash = flag.Bool(
	"hash",
	false,
	"key the group table by a hash index instead of linear search",
)

var fMaxScan = flag.Int(
	"max-scan",
	100,
	"maximum number of grouping variables",
)

var fPlan = flag.Bool(
	"plan",
	false,
	"print the query plan",
)

var fVerbose = flag.Bool(
	"v",
	false,
	"print a trace of the run to STDERR",
)

var runID = uuid.New().String()

func oops(stage string, err error) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprintf(os.Stderr, "ERROR [%s]]] %s\n", stage, err)
	for _, h := range errs.Hints(err) {
		color.New(color.FgYellow).Fprintf(os.Stderr, "HINT: %s\n", h)
	}
	os.Exit(1)
}

func trace(f string, args ...interface{}) {
	if !*fVerbose {
		return
	}
	color.New(color.FgCyan).Fprintf(
		os.Stderr,
		"[%s] %s\n",
		runID[:8],
		fmt.Sprintf(f, args...),
	)
}

func separator() rune {
	switch *fSep {
	case "tab", "\\t", "\t":
		return '\t'
	case "":
		return ','
	default:
		return []rune(*fSep)[0]
	}
}

// section headers are highlighted, color turns itself off when STDOUT is not
// a terminal
func printPlan(p *plan.Plan) {
	header := color.New(color.FgGreen, color.Bold)
	for _, l := range strings.SplitAfter(p.Print(), "\n") {
		if strings.HasPrefix(l, "##>") {
			header.Print(l)
		} else {
			fmt.Print(l)
		}
	}
}

func openSource() (source.Source, func()) {
	switch {
	case *fInput != "":
		src, err := source.OpenDelimited(*fInput, separator())
		if err != nil {
			oops("source", err)
		}
		trace("source: delimited %s", *fInput)
		return source.Cache(src), func() {}

	case *fParquet != "":
		src, err := source.OpenParquet(*fParquet)
		if err != nil {
			oops("source", err)
		}
		trace("source: parquet %s", *fParquet)
		return source.Cache(src), func() {}

	case *fPgDSN != "":
		if *fPgTable == "" {
			oops("source", errs.Hint(
				errs.Spec("source", "postgres source has no table"),
				"set -pg-table or MF_PG_TABLE",
			))
		}
		src, err := source.OpenPostgres(*fPgDSN, *fPgTable)
		if err != nil {
			oops("source", err)
		}
		trace("source: postgres table %s", *fPgTable)
		return source.Cache(src), func() { src.Close() }

	default:
		return nil, func() {}
	}
}

func openOutput() (io.Writer, func()) {
	if *fOutput == "" {
		return os.Stdout, func() {}
	}
	f, err := os.Create(*fOutput)
	if err != nil {
		oops("save", err)
	}
	return f, func() {
		if err := f.Close(); err != nil {
			oops("save", err)
		}
	}
}

func emitAwk(p *plan.Plan) string {
	awkCode, err := cg.Generate(
		p,
		&cg.Config{
			Separator:       separator(),
			OutputSeparator: " ",
		},
	)
	if err != nil {
		oops("code-gen", err)
	}

	switch *fEmitAwk {
	case "":
		break
	case "-":
		fmt.Printf("%s\n", awkCode)
	default:
		if err := os.WriteFile(
			*fEmitAwk,
			[]byte(awkCode),
			0644,
		); err != nil {
			oops("save", err)
		}
	}
	return awkCode
}

func runAwk(p *plan.Plan, w io.Writer) {
	if *fInput == "" {
		oops("awk", errs.Hint(
			errs.Spec("awk", "the awk engine needs a delimited input"),
			"set -input",
		))
	}
	code := emitAwk(p)

	r, err := source.OpenReader(*fInput)
	if err != nil {
		oops("source", err)
	}
	defer r.Close()

	trace("engine: goawk, %d bytes of program", len(code))
	if err := cg.Run(code, r, w); err != nil {
		oops("awk", err)
	}
}

func runGo(p *plan.Plan, src source.Source, w io.Writer) {
	f, err := output.New(*fFormat, w)
	if err != nil {
		oops("output", err)
	}

	ex := exec.NewExecutor(p, src, exec.Config{HashIndex: *fHash})
	rows, err := ex.Execute()
	if err != nil {
		oops("exec", err)
	}

	stats := ex.Stats()
	trace("engine: go, hash index %v", *fHash)
	for idx := range stats.Rows {
		trace("scan %d: %d rows, %d updates", idx, stats.Rows[idx], stats.Update[idx])
	}
	trace("groups: %d, output: %d, probes: %d", stats.Groups, stats.Output, stats.Probe)

	if err := f.Format(p.Output.Columns(), rows); err != nil {
		oops("output", err)
	}
}

func main() {
	flag.Parse()
	if *fSpec == "" {
		oops("spec", errs.Hint(
			errs.Spec("spec", "no query spec"),
			"set -spec path/to/query.json",
		))
	}

	s, err := spec.Load(*fSpec)
	if err != nil {
		oops("spec", err)
	}
	trace("spec: %s, V=(%s) n=%d", *fSpec, strings.Join(s.V, ","), s.N)

	p, err := plan.PlanSpecWithConfig(s, plan.Config{MaxScanSize: *fMaxScan})
	if err != nil {
		oops("plan", err)
	}
	for _, w := range p.Warnings {
		color.New(color.FgYellow).Fprintf(os.Stderr, "WARNING %s\n", w)
	}
	if *fPlan {
		printPlan(p)
	}

	w, closeOutput := openOutput()
	defer closeOutput()

	switch *fEngine {
	case "awk":
		runAwk(p, w)
	case "go":
		if *fEmitAwk != "" {
			emitAwk(p)
		}
		src, closeSource := openSource()
		defer closeSource()
		if src == nil {
			if *fPlan || *fEmitAwk != "" {
				return
			}
			oops("source", errs.Hint(
				errs.Spec("source", "no row source"),
				"set one of -input, -parquet or -pg-dsn",
			))
		}
		runGo(p, src, w)
	default:
		oops("engine", errs.Spec("engine", "unknown engine %s", *fEngine))
	}
}
