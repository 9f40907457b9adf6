package exec

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/dianpeng/mfquery/cond"
	"github.com/dianpeng/mfquery/errs"
	"github.com/dianpeng/mfquery/plan"
	"github.com/dianpeng/mfquery/source"
	"github.com/dianpeng/mfquery/spec"
)

// Golden cases under testdata/, the directives are
//
//   rows      load a space separated table, the first line is the header
//   query     YAML spec, prints the output table or the error class
//   plan      YAML spec, prints the plan dump
//
// Every query runs with the linear and the hash keyed table, both must agree.

func printRows(rows []Row, columns []string) string {
	b := &strings.Builder{}
	b.WriteString(strings.Join(columns, " "))
	b.WriteString("\n")
	for _, r := range rows {
		for idx, v := range r.Values {
			if idx > 0 {
				b.WriteString(" ")
			}
			b.WriteString(cond.ToString(v))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func printErr(err error) string {
	return fmt.Sprintf("error: %s\n", errs.KindName(errs.Kind(err)))
}

func TestDataDriven(t *testing.T) {
	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		var rows source.Slice

		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			switch d.Cmd {
			case "rows":
				rows = source.Slice{}
				if err := source.ReadDelimited(
					strings.NewReader(d.Input),
					' ',
					d.Pos,
					func(r source.Row) error {
						rows = append(rows, r)
						return nil
					},
				); err != nil {
					d.Fatalf(t, "rows: %v", err)
				}
				return fmt.Sprintf("%d rows\n", len(rows))

			case "plan":
				s, err := spec.Parse([]byte(d.Input), spec.FormatYAML)
				if err != nil {
					return printErr(err)
				}
				p, err := plan.PlanSpec(s)
				if err != nil {
					return printErr(err)
				}
				return p.Print()

			case "query":
				s, err := spec.Parse([]byte(d.Input), spec.FormatYAML)
				if err != nil {
					return printErr(err)
				}
				p, err := plan.PlanSpec(s)
				if err != nil {
					return printErr(err)
				}

				linear, lerr := Run(p, rows, Config{})
				hash, herr := Run(p, rows, Config{HashIndex: true})
				if errs.Kind(lerr) != errs.Kind(herr) {
					d.Fatalf(t, "linear(%v) and hash(%v) disagree", lerr, herr)
				}
				if lerr != nil {
					return printErr(lerr)
				}

				out := printRows(linear, p.Output.Columns())
				if h := printRows(hash, p.Output.Columns()); h != out {
					d.Fatalf(t, "linear and hash disagree:\n%s\n%s", out, h)
				}
				return out

			default:
				d.Fatalf(t, "unknown directive %s", d.Cmd)
				return ""
			}
		})
	})
}
