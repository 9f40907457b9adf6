package plan

import (
	"fmt"

	"github.com/dianpeng/mfquery/cond"
	"github.com/dianpeng/mfquery/errs"
	"github.com/dianpeng/mfquery/spec"
)

const (
	defMaxScanSize = 100
)

// GroupBy phase, the grouping attributes in V order. The base scan creates
// one group entry per distinct tuple of these attributes.
type GroupBy struct {
	VarList []string
}

// TableScan is one full pass over the row source. Scan 0 is the base scan,
// it has no filter and is the only one allowed to create group entries.
type TableScan struct {
	Index  int
	Filter *cond.Predicate   // always true for the base scan
	Agg    []*AggDescriptor  // accumulators updated by this scan
	Attrs  []string          // measured attributes
	Column []string          // every row attribute the scan reads
}

func (self *TableScan) IsBase() bool { return self.Index == baseScan }

// Having phase, applied once per finalized group entry
type Having struct {
	Filter *cond.Predicate
}

// Sorting phase, lexicographic over the grouping attributes
type Sort struct {
	VarList []string
}

const (
	OutputKey = iota // grouping attribute
	OutputAcc        // stored accumulator
	OutputAvg        // derived avg
)

type OutputVar struct {
	Name  string
	Type  int
	Index int       // V index, OutputKey only
	Avg   *AvgField // OutputAvg only
}

// Output phase, V followed by S with duplicates collapsed
type Output struct {
	VarList []OutputVar
}

func (self *Output) Columns() []string {
	out := make([]string, 0, len(self.VarList))
	for _, v := range self.VarList {
		out = append(out, v.Name)
	}
	return out
}

// Planner configuration. Used to customize planner behavior
type Config struct {
	MaxScanSize int
}

type Plan struct {
	Config Config
	Spec   *spec.QuerySpec

	GroupBy   *GroupBy     // group by, always exists
	Fields    *Fields      // classified aggregates
	TableScan []*TableScan // base scan followed by scan 1..n
	Having    *Having      // having phase, always exists
	Sort      *Sort        // sort phase, always exists
	Output    *Output      // output phase, always exists

	// Warnings are not fatal, ie a filter reading accumulators of a scan that
	// has not run yet
	Warnings []string
}

func newPlan() *Plan {
	return &Plan{
		Config: Config{
			MaxScanSize: defMaxScanSize,
		},
	}
}

// PlanSpec validates and compiles s. Every spec, predicate and reference
// error is reported here, before any row is read.
func PlanSpec(s *spec.QuerySpec) (*Plan, error) {
	return PlanSpecWithConfig(s, Config{MaxScanSize: defMaxScanSize})
}

func PlanSpecWithConfig(s *spec.QuerySpec, c Config) (*Plan, error) {
	p := newPlan()
	if c.MaxScanSize > 0 {
		p.Config = c
	}
	if err := p.plan(s); err != nil {
		return nil, err
	}
	return p, nil
}

// ScanSize is n+1, the number of full passes over the row source
func (self *Plan) ScanSize() int { return len(self.TableScan) }

func (self *Plan) HasHaving() bool { return !self.Having.Filter.IsAlways() }

func (self *Plan) specErr(stage string, f string, args ...interface{}) error {
	return errs.Spec(stage, f, args...)
}

func (self *Plan) refErr(stage string, f string, args ...interface{}) error {
	return errs.Reference(stage, f, args...)
}

func (self *Plan) warn(stage string, f string, args ...interface{}) {
	msg := fmt.Sprintf(f, args...)
	self.Warnings = append(self.Warnings, fmt.Sprintf("stage(%s): %s", stage, msg))
}
