package source

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Postgres reads every row of a table, one SELECT per pass. The table name
// may be schema qualified, ie public.sales.
type Postgres struct {
	db    *sql.DB
	Table string
}

func OpenPostgres(dsn string, table string) (*Postgres, error) {
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("stage(source): postgres table is not specified")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("stage(source): %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("stage(source): cannot connect to postgres: %w", err)
	}
	return &Postgres{
		db:    db,
		Table: table,
	}, nil
}

func (self *Postgres) Close() error {
	return self.db.Close()
}

func selectAll(table string) string {
	parts := strings.Split(table, ".")
	for idx, p := range parts {
		parts[idx] = pq.QuoteIdentifier(strings.TrimSpace(p))
	}
	return "SELECT * FROM " + strings.Join(parts, ".")
}

// text columns of numeric types come back as []byte from lib/pq
func sqlValue(v interface{}, dbType string) interface{} {
	switch x := v.(type) {
	case []byte:
		s := string(x)
		switch dbType {
		case "NUMERIC", "DECIMAL":
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f
			}
		}
		return s
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return x
	}
}

func (self *Postgres) Scan(fn func(Row) error) error {
	rows, err := self.db.Query(selectAll(self.Table))
	if err != nil {
		return fmt.Errorf("stage(source): %w", err)
	}
	defer func() { _ = rows.Close() }()

	types, err := rows.ColumnTypes()
	if err != nil {
		return fmt.Errorf("stage(source): %w", err)
	}

	values := make([]interface{}, len(types))
	ptr := make([]interface{}, len(types))
	for idx := range values {
		ptr[idx] = &values[idx]
	}

	for rows.Next() {
		if err := rows.Scan(ptr...); err != nil {
			return fmt.Errorf("stage(source): %w", err)
		}
		row := make(Row, len(types))
		for idx, t := range types {
			row[t.Name()] = sqlValue(values[idx], t.DatabaseTypeName())
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("stage(source): %w", err)
	}
	return nil
}
