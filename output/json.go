package output

import (
	"bufio"
	"io"

	"github.com/dianpeng/mfquery/exec"
	"github.com/segmentio/encoding/json"
)

// JSONFormatter outputs rows as JSON Lines, keys follow the column order
type JSONFormatter struct {
	writer io.Writer
}

func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

func (self *JSONFormatter) SetOutput(w io.Writer) {
	self.writer = w
}

func (self *JSONFormatter) encodeRow(b *bufio.Writer, r exec.Row) error {
	b.WriteByte('{')
	for idx, c := range r.Columns {
		if idx > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(c)
		if err != nil {
			return err
		}
		v, err := json.Marshal(r.Values[idx])
		if err != nil {
			return err
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteString("}\n")
	return nil
}

func (self *JSONFormatter) Format(_ []string, rows []exec.Row) error {
	b := bufio.NewWriter(self.writer)
	for _, r := range rows {
		if err := self.encodeRow(b, r); err != nil {
			return err
		}
	}
	return b.Flush()
}
