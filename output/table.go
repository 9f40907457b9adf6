package output

import (
	"io"

	"github.com/dianpeng/mfquery/exec"
	"github.com/olekukonko/tablewriter"
)

// TableFormatter draws a psql like table
type TableFormatter struct {
	writer io.Writer
}

func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

func (self *TableFormatter) SetOutput(w io.Writer) {
	self.writer = w
}

func (self *TableFormatter) Format(columns []string, rows []exec.Row) error {
	table := tablewriter.NewWriter(self.writer)
	table.SetHeader(columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)

	for _, r := range rows {
		record := make([]string, len(r.Values))
		for idx, v := range r.Values {
			record[idx] = formatValue(v)
		}
		table.Append(record)
	}
	table.Render()
	return nil
}
