package output

import (
	"encoding/csv"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/dianpeng/mfquery/exec"
)

// CSVFormatter outputs rows as CSV with a header row
type CSVFormatter struct {
	writer io.Writer
}

func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: w}
}

func (self *CSVFormatter) SetOutput(w io.Writer) {
	self.writer = w
}

func (self *CSVFormatter) Format(columns []string, rows []exec.Row) error {
	csvWriter := csv.NewWriter(self.writer)
	if err := csvWriter.Write(columns); err != nil {
		return err
	}

	for _, r := range rows {
		record := make([]string, len(r.Values))
		for idx, v := range r.Values {
			record[idx] = formatValue(v)
		}
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return errors.Wrap(err, "failed to flush CSV writer")
	}
	return nil
}
