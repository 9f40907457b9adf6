// Package source provides the row sources an MF query is evaluated over.
//
// A source must be iterable in full once per scan, an MF query with n
// grouping variables reads it n+1 times. Sources that are expensive to read
// twice (a database table, a compressed file) can be wrapped by Cache.
package source

// Row maps attribute names to loosely typed values. Numbers are any Go
// numeric type, text is string, a missing value is nil.
type Row map[string]interface{}

type Source interface {
	// Scan calls fn once per row, in source order. Returning an error from fn
	// stops the pass and Scan returns that error.
	Scan(fn func(Row) error) error
}

// Slice is an in-memory source
type Slice []Row

func (self Slice) Scan(fn func(Row) error) error {
	for _, r := range self {
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

type cache struct {
	src    Source
	rows   Slice
	loaded bool
}

// Cache materializes src on the first pass and replays it afterwards. A
// failed first pass is not cached.
func Cache(src Source) Source {
	if s, ok := src.(Slice); ok {
		return s
	}
	if c, ok := src.(*cache); ok {
		return c
	}
	return &cache{
		src: src,
	}
}

func (self *cache) load() error {
	rows := Slice{}
	if err := self.src.Scan(func(r Row) error {
		rows = append(rows, r)
		return nil
	}); err != nil {
		return err
	}
	self.rows = rows
	self.loaded = true
	return nil
}

func (self *cache) Scan(fn func(Row) error) error {
	if !self.loaded {
		if err := self.load(); err != nil {
			return err
		}
	}
	return self.rows.Scan(fn)
}

// Collect reads every row of src into memory
func Collect(src Source) (Slice, error) {
	out := Slice{}
	if err := src.Scan(func(r Row) error {
		out = append(out, r)
		return nil
	}); err != nil {
		return nil, err
	}
	return out, nil
}
