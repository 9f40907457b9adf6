package exec

import (
	"github.com/cockroachdb/errors"
	"github.com/dianpeng/mfquery/cond"
	"github.com/dianpeng/mfquery/errs"
	"github.com/dianpeng/mfquery/plan"
	"github.com/dianpeng/mfquery/source"
)

// The executor is a strictly sequential state machine:
//
//   Uninitialized -> BaseScanComplete -> Scanning(1) -> ... -> Scanning(n)
//                 -> Sorted -> Projected
//
// Every step checks the current state, calling a step out of order is an
// error and leaves the state untouched. A failed step leaves the executor in
// StateFailed, there's no recovery.

const (
	StateUninitialized = iota
	StateBaseScanComplete
	StateScanning
	StateSorted
	StateProjected
	StateFailed
)

func stateName(s int) string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateBaseScanComplete:
		return "base-scan-complete"
	case StateScanning:
		return "scanning"
	case StateSorted:
		return "sorted"
	case StateProjected:
		return "projected"
	default:
		return "failed"
	}
}

type Config struct {
	HashIndex bool // key the group table by a hash map instead of linear search
}

type Stats struct {
	Rows   []int // rows read by each scan, index 0 is the base scan
	Update []int // rows that updated an entry, per scan
	Groups int   // group entries after the base scan
	Output int   // rows surviving the having clause
	Probe  int   // key comparisons of the linear lookup
}

type Executor struct {
	plan   *plan.Plan
	src    source.Source
	config Config
	table  *GroupTable
	state  int
	scan   int // last completed conditional scan
	stats  Stats
}

func NewExecutor(p *plan.Plan, src source.Source, config Config) *Executor {
	return &Executor{
		plan:   p,
		src:    src,
		config: config,
		table:  newGroupTable(p.Fields, config.HashIndex),
		state:  StateUninitialized,
		stats: Stats{
			Rows:   make([]int, p.ScanSize()),
			Update: make([]int, p.ScanSize()),
		},
	}
}

func (self *Executor) State() string { return stateName(self.state) }

func (self *Executor) Stats() Stats {
	s := self.stats
	s.Probe = self.table.probe
	return s
}

// Table exposes the group entries in table order, read only
func (self *Executor) Table() []*GroupEntry {
	return self.table.Entries()
}

func (self *Executor) order(op string, expect ...int) error {
	for _, s := range expect {
		if self.state == s {
			return nil
		}
	}
	return errors.AssertionFailedf(
		"stage(exec): %s is not allowed in state %s",
		errors.Safe(op),
		errors.Safe(stateName(self.state)),
	)
}

func (self *Executor) fail(err error) error {
	self.state = StateFailed
	return err
}

// filter/update environment of one row and its group entry
type rowEnv struct {
	row   source.Row
	entry *GroupEntry
}

func (self *rowEnv) Column(name string) (interface{}, bool) {
	v, ok := self.row[name]
	return v, ok
}

func (self *rowEnv) Accumulator(name string) (float64, bool) {
	return self.entry.Accumulator(name)
}

func (self *rowEnv) Key(idx int) interface{} {
	return self.entry.key[idx]
}

func (self *Executor) groupKey(row source.Row) []interface{} {
	v := self.plan.GroupBy.VarList
	key := make([]interface{}, len(v))
	for idx, name := range v {
		key[idx] = row[name]
	}
	return key
}

func (self *Executor) checkRow(ts *plan.TableScan, row source.Row, line int) error {
	for _, c := range ts.Column {
		if _, ok := row[c]; !ok {
			return errs.Row(
				"exec",
				"scan %d: row %d has no attribute %s",
				ts.Index,
				line,
				c,
			)
		}
	}
	return nil
}

func (self *Executor) update(
	ts *plan.TableScan,
	entry *GroupEntry,
	row source.Row,
	line int,
) error {
	for _, d := range ts.Agg {
		acc := entry.acc[d.Name]
		if d.Type == plan.AggCount {
			acc.update(0)
			continue
		}

		v := row[d.Attr]
		if v == nil {
			continue
		}
		x, ok := cond.ToFloat64(v)
		if !ok {
			return errs.Row(
				"exec",
				"scan %d: %s of row %d is not numeric (%v), required by %s",
				ts.Index,
				d.Attr,
				line,
				v,
				d.Name,
			)
		}
		acc.update(x)
	}
	self.stats.Update[ts.Index]++
	return nil
}

func (self *Executor) runScan(ts *plan.TableScan) error {
	line := 0
	return self.src.Scan(func(row source.Row) error {
		line++
		self.stats.Rows[ts.Index]++

		if err := self.checkRow(ts, row, line); err != nil {
			return err
		}
		key := self.groupKey(row)
		entry := self.table.Find(key)

		if ts.IsBase() {
			if entry == nil {
				entry = self.table.insert(key)
			}
		} else {
			// conditional scans never insert
			if entry == nil {
				return nil
			}
			ok, err := ts.Filter.Match(&rowEnv{row: row, entry: entry})
			if err != nil {
				return errors.Wrapf(err, "scan %d: row %d", ts.Index, line)
			}
			if !ok {
				return nil
			}
		}
		return self.update(ts, entry, row, line)
	})
}

// BaseScan runs scan 0, the only scan creating group entries
func (self *Executor) BaseScan() error {
	if err := self.order("base scan", StateUninitialized); err != nil {
		return err
	}
	if err := self.runScan(self.plan.TableScan[0]); err != nil {
		return self.fail(err)
	}
	self.stats.Groups = self.table.Len()
	self.state = StateBaseScanComplete
	return nil
}

// Scan runs conditional scan idx, which must be the one after the last
// completed scan
func (self *Executor) Scan(idx int) error {
	if err := self.order("conditional scan", StateBaseScanComplete, StateScanning); err != nil {
		return err
	}
	if idx != self.scan+1 || idx >= self.plan.ScanSize() {
		return errors.AssertionFailedf(
			"stage(exec): scan %d requested, next scan is %d of %d",
			idx,
			self.scan+1,
			self.plan.ScanSize()-1,
		)
	}
	if err := self.runScan(self.plan.TableScan[idx]); err != nil {
		return self.fail(err)
	}
	self.scan = idx
	self.state = StateScanning
	return nil
}

// Sort orders the table by the grouping key, every scan must have run
func (self *Executor) Sort() error {
	if err := self.order("sort", StateBaseScanComplete, StateScanning); err != nil {
		return err
	}
	if self.scan != self.plan.ScanSize()-1 {
		return errors.AssertionFailedf(
			"stage(exec): sort requested after scan %d of %d",
			self.scan,
			self.plan.ScanSize()-1,
		)
	}
	self.table.sort()
	self.state = StateSorted
	return nil
}

// Project applies the having clause and builds the output rows
func (self *Executor) Project() ([]Row, error) {
	if err := self.order("project", StateSorted); err != nil {
		return nil, err
	}
	out, err := project(self.plan, self.table.entries)
	if err != nil {
		return nil, self.fail(err)
	}
	self.stats.Output = len(out)
	self.state = StateProjected
	return out, nil
}

// Execute drives every step in order
func (self *Executor) Execute() ([]Row, error) {
	if err := self.BaseScan(); err != nil {
		return nil, err
	}
	for idx := 1; idx < self.plan.ScanSize(); idx++ {
		if err := self.Scan(idx); err != nil {
			return nil, err
		}
	}
	if err := self.Sort(); err != nil {
		return nil, err
	}
	return self.Project()
}

// Run evaluates p over src, the source is read n+1 times
func Run(p *plan.Plan, src source.Source, config Config) ([]Row, error) {
	return NewExecutor(p, src, config).Execute()
}
