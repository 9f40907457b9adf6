package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dianpeng/mfquery/errs"
)

// Delimited is a text file source, the first line is the header naming the
// columns. The file is reopened for every pass.
type Delimited struct {
	Path string
	Sep  rune
}

// OpenDelimited checks that path exists, the content is only read by Scan
func OpenDelimited(path string, sep rune) (*Delimited, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stage(source): %w", err)
	}
	if sep == 0 {
		sep = ','
	}
	return &Delimited{
		Path: path,
		Sep:  sep,
	}, nil
}

func (self *Delimited) Scan(fn func(Row) error) error {
	rc, err := OpenReader(self.Path)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	return ReadDelimited(rc, self.Sep, self.Path, fn)
}

// Infer turns a field of a text file into a number when it looks like one
func Infer(field string) interface{} {
	s := strings.TrimSpace(field)
	if s == "" {
		return field
	}
	if c := s[0]; !(c >= '0' && c <= '9') && c != '-' && c != '+' && c != '.' {
		return field
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return field
}

// ReadDelimited parses a header + records stream, name is only used by
// error messages
func ReadDelimited(
	r io.Reader,
	sep rune,
	name string,
	fn func(Row) error,
) error {
	reader := csv.NewReader(r)
	reader.Comma = sep
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("stage(source): %s: invalid header: %w", name, err)
	}
	for idx, h := range header {
		header[idx] = strings.TrimSpace(h)
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if errors.Is(err, csv.ErrFieldCount) {
				return errs.Row(
					"source",
					"%s line %d has %d fields, header has %d",
					name,
					line,
					len(record),
					len(header),
				)
			}
			return fmt.Errorf("stage(source): %s line %d: %w", name, line, err)
		}

		row := make(Row, len(header))
		for idx, h := range header {
			row[h] = Infer(record[idx])
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}
