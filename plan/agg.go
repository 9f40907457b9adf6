package plan

import (
	"sort"
	"strconv"
	"strings"
)

// Classifying the requested aggregate fields into scans.
//
// Every field name of F follows the naming convention
//
//   <kind>_<scan>_<attribute>   ie sum_1_quant, aggregate of scan 1
//   <kind>_<attribute>          ie sum_quant,   aggregate of the base scan
//
// A middle token that is not made of digits is just part of the attribute,
// ie sum_x1_quant is the sum of x1_quant in the base scan. This is policy and
// not an error.
//
// avg is never stored. avg_<rest> is expanded into sum_<rest> and
// count_<rest> under the same scan, and derived whenever it is read.

const (
	AggSum = iota
	AggCount
	AggMin
	AggMax
	AggAvg
)

const (
	baseScan = 0
)

func aggTypeToName(i int) string {
	switch i {
	case AggSum:
		return "sum"
	case AggCount:
		return "count"
	case AggMin:
		return "min"
	case AggMax:
		return "max"
	case AggAvg:
		return "avg"
	default:
		return "unknown"
	}
}

func aggNameToType(n string) int {
	switch n {
	case "sum":
		return AggSum
	case "count":
		return AggCount
	case "min":
		return AggMin
	case "max":
		return AggMax
	case "avg":
		return AggAvg
	default:
		return -1
	}
}

type AggDescriptor struct {
	Name string // field name as written, ie sum_1_quant
	Type int    // AggXXX
	Scan int    // 0 is the base scan
	Attr string // measured attribute, ie quant
}

func (self *AggDescriptor) AggName() string { return aggTypeToName(self.Type) }

func (self *AggDescriptor) IsAvg() bool { return self.Type == AggAvg }

// rest of the name after the kind, shared by avg/sum/count of one attribute
func (self *AggDescriptor) suffix() string {
	return self.Name[len(self.AggName())+1:]
}

// AvgField is a derived avg output, computed as Sum/Count, 0 when Count is 0
type AvgField struct {
	Name  string
	Scan  int
	Sum   string
	Count string
}

// Fields is the result of classification
type Fields struct {
	// accumulators of each scan, index 0..n, sorted by name
	ScanList [][]*AggDescriptor

	// requested fields, in F order with duplicates removed, avg included
	Requested []*AggDescriptor

	acc map[string]*AggDescriptor
	avg map[string]*AvgField
}

func isDigits(x string) bool {
	if x == "" {
		return false
	}
	for _, c := range x {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (self *Plan) parseAggField(name string, n int) (*AggDescriptor, error) {
	parts := strings.SplitN(name, "_", 3)
	ty := aggNameToType(parts[0])
	if ty < 0 {
		return nil, self.specErr(
			"agg",
			"field %s has unknown aggregate kind %q, expect sum, count, min, max or avg",
			name,
			parts[0],
		)
	}

	scan := baseScan
	attr := ""

	switch {
	case len(parts) == 3 && isDigits(parts[1]):
		idx, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, self.specErr("agg", "field %s has invalid scan index: %s", name, err)
		}
		scan = idx
		attr = parts[2]

	case len(parts) >= 2:
		attr = name[len(parts[0])+1:]
	}

	if attr == "" {
		return nil, self.specErr("agg", "field %s does not name a measured attribute", name)
	}
	if scan > n {
		return nil, self.specErr(
			"agg",
			"field %s belongs to scan %d but there are only %d scans",
			name,
			scan,
			n,
		)
	}

	return &AggDescriptor{
		Name: name,
		Type: ty,
		Scan: scan,
		Attr: attr,
	}, nil
}

func (self *Fields) add(d *AggDescriptor) {
	if _, ok := self.acc[d.Name]; ok {
		return
	}
	self.acc[d.Name] = d
	self.ScanList[d.Scan] = append(self.ScanList[d.Scan], d)
}

// classify F into per scan accumulator list
func (self *Plan) anaAgg(f []string, n int) (*Fields, error) {
	out := &Fields{
		ScanList: make([][]*AggDescriptor, n+1),
		acc:      make(map[string]*AggDescriptor),
		avg:      make(map[string]*AvgField),
	}
	seen := make(map[string]bool)

	for _, name := range f {
		name = strings.TrimSpace(name)
		if seen[name] {
			continue
		}
		seen[name] = true

		d, err := self.parseAggField(name, n)
		if err != nil {
			return nil, err
		}
		out.Requested = append(out.Requested, d)

		if !d.IsAvg() {
			out.add(d)
			continue
		}

		// avg_<rest> => sum_<rest> + count_<rest>
		rest := d.suffix()
		avg := &AvgField{
			Name:  d.Name,
			Scan:  d.Scan,
			Sum:   "sum_" + rest,
			Count: "count_" + rest,
		}
		out.avg[d.Name] = avg
		out.add(&AggDescriptor{
			Name: avg.Sum,
			Type: AggSum,
			Scan: d.Scan,
			Attr: d.Attr,
		})
		out.add(&AggDescriptor{
			Name: avg.Count,
			Type: AggCount,
			Scan: d.Scan,
			Attr: d.Attr,
		})
	}

	for _, l := range out.ScanList {
		sort.Slice(l, func(i, j int) bool {
			return l[i].Name < l[j].Name
		})
	}
	return out, nil
}

// Accumulator tests whether name is a stored accumulator
func (self *Fields) Accumulator(name string) bool {
	_, ok := self.acc[name]
	return ok
}

func (self *Fields) Descriptor(name string) (*AggDescriptor, bool) {
	d, ok := self.acc[name]
	return d, ok
}

func (self *Fields) Avg(name string) (*AvgField, bool) {
	a, ok := self.avg[name]
	return a, ok
}

// Scan returns the accumulators that scan idx populates
func (self *Fields) Scan(idx int) []*AggDescriptor {
	if idx < 0 || idx >= len(self.ScanList) {
		return nil
	}
	return self.ScanList[idx]
}

// Attrs returns the distinct measured attributes of scan idx, sorted
func (self *Fields) Attrs(idx int) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, d := range self.Scan(idx) {
		if !seen[d.Attr] {
			seen[d.Attr] = true
			out = append(out, d.Attr)
		}
	}
	sort.Strings(out)
	return out
}

// AccumulatorList returns every accumulator, ordered by scan then by name
func (self *Fields) AccumulatorList() []*AggDescriptor {
	out := []*AggDescriptor{}
	for _, l := range self.ScanList {
		out = append(out, l...)
	}
	return out
}
