// Package output renders the result of an MF query.
//
// Supported formats:
//   - table: a bordered text table, the default of the command line
//   - jsonl: one JSON object per line, keys in column order
//   - csv: comma separated values with a header row
//
// Every formatter writes the header even when no group survived.
package output

import (
	"io"

	"github.com/dianpeng/mfquery/cond"
	"github.com/dianpeng/mfquery/errs"
	"github.com/dianpeng/mfquery/exec"
)

const (
	FormatTable = "table"
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
)

// Formatter writes query results to its output
type Formatter interface {
	// Format writes rows, columns gives the header and the value order
	Format(columns []string, rows []exec.Row) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// New returns the formatter called name writing to w
func New(name string, w io.Writer) (Formatter, error) {
	switch name {
	case FormatTable, "":
		return NewTableFormatter(w), nil
	case FormatJSONL:
		return NewJSONFormatter(w), nil
	case FormatCSV:
		return NewCSVFormatter(w), nil
	default:
		return nil, errs.Hint(
			errs.Spec("output", "unknown output format %s", name),
			"use one of table, jsonl or csv",
		)
	}
}

func formatValue(v interface{}) string {
	return cond.ToString(v)
}
