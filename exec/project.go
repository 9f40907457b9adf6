package exec

import (
	"github.com/cockroachdb/errors"
	"github.com/dianpeng/mfquery/plan"
)

// Row is one output row, values are in column order. Grouping attributes
// keep the value type of the source, aggregates are float64.
type Row struct {
	Columns []string
	Values  []interface{}
}

func (self Row) Get(name string) (interface{}, bool) {
	for idx, c := range self.Columns {
		if c == name {
			return self.Values[idx], true
		}
	}
	return nil, false
}

func (self Row) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(self.Columns))
	for idx, c := range self.Columns {
		out[c] = self.Values[idx]
	}
	return out
}

// having environment, there's no current row
type entryEnv struct {
	entry *GroupEntry
}

func (self *entryEnv) Column(string) (interface{}, bool) {
	return nil, false
}

func (self *entryEnv) Accumulator(name string) (float64, bool) {
	return self.entry.Accumulator(name)
}

func (self *entryEnv) Key(idx int) interface{} {
	return self.entry.key[idx]
}

func projectEntry(output *plan.Output, columns []string, entry *GroupEntry) Row {
	values := make([]interface{}, len(output.VarList))
	for idx, v := range output.VarList {
		switch v.Type {
		case plan.OutputKey:
			values[idx] = entry.key[v.Index]
		case plan.OutputAcc:
			values[idx], _ = entry.Accumulator(v.Name)
		default:
			values[idx] = entry.Avg(v.Avg)
		}
	}
	return Row{
		Columns: columns,
		Values:  values,
	}
}

func project(p *plan.Plan, entries []*GroupEntry) ([]Row, error) {
	out := []Row{}
	columns := p.Output.Columns()
	having := p.Having.Filter

	for idx, entry := range entries {
		ok, err := having.Match(&entryEnv{entry: entry})
		if err != nil {
			return nil, errors.Wrapf(err, "having: group %d", idx)
		}
		if ok {
			out = append(out, projectEntry(p.Output, columns, entry))
		}
	}
	return out, nil
}
