package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/segmentio/parquet-go"
)

// Parquet is a parquet file source. Only flat schemas are supported, a
// nested column is exposed under its dotted path, ie address.city.
type Parquet struct {
	Path string
}

func OpenParquet(path string) (*Parquet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("stage(source): %w", err)
	}
	defer func() { _ = file.Close() }()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stage(source): failed to stat file: %w", err)
	}
	if _, err := parquet.OpenFile(file, stat.Size()); err != nil {
		return nil, fmt.Errorf("stage(source): %s is not a parquet file: %w", path, err)
	}
	return &Parquet{
		Path: path,
	}, nil
}

func parquetValue(v parquet.Value) interface{} {
	if v.IsNull() {
		return nil
	}
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return int64(v.Int32())
	case parquet.Int64:
		return v.Int64()
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}

func (self *Parquet) Scan(fn func(Row) error) error {
	file, err := os.Open(self.Path)
	if err != nil {
		return fmt.Errorf("stage(source): %w", err)
	}
	defer func() { _ = file.Close() }()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stage(source): failed to stat file: %w", err)
	}
	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		return fmt.Errorf("stage(source): failed to open parquet file: %w", err)
	}

	columns := []string{}
	for _, path := range pqFile.Schema().Columns() {
		columns = append(columns, strings.Join(path, "."))
	}

	reader := parquet.NewReader(pqFile)
	defer func() { _ = reader.Close() }()

	buf := make([]parquet.Row, 64)
	for {
		n, err := reader.ReadRows(buf)
		for _, pr := range buf[:n] {
			row := make(Row, len(columns))
			for _, name := range columns {
				row[name] = nil
			}
			for _, v := range pr {
				if c := v.Column(); c >= 0 && c < len(columns) {
					row[columns[c]] = parquetValue(v)
				}
			}
			if err := fn(row); err != nil {
				return err
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("stage(source): failed to read row: %w", err)
		}
		if n == 0 {
			return nil
		}
	}
}
