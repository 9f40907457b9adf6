package exec

import (
	"sort"
	"strings"

	"github.com/dianpeng/mfquery/cond"
	"github.com/dianpeng/mfquery/plan"
)

// GroupTable is the append only, insertion ordered store of group entries,
// at most one entry per grouping key. Lookup is a linear scan comparing key
// tuples unless the hash index is enabled, both give the same entries in the
// same order.
type GroupTable struct {
	fields  *plan.Fields
	entries []*GroupEntry
	index   map[string]*GroupEntry // nil in linear mode
	probe   int                    // key comparisons, linear mode only
}

func newGroupTable(fields *plan.Fields, hash bool) *GroupTable {
	t := &GroupTable{
		fields: fields,
	}
	if hash {
		t.index = make(map[string]*GroupEntry)
	}
	return t
}

func hashKey(key []interface{}) string {
	b := &strings.Builder{}
	for idx, k := range key {
		if idx > 0 {
			b.WriteByte(0x1c)
		}
		b.WriteString(cond.KeyString(k))
	}
	return b.String()
}

func keyEqual(a, b []interface{}) bool {
	if len(a) != len(b) {
		return false
	}
	for idx := range a {
		if !cond.Equal(a[idx], b[idx]) {
			return false
		}
	}
	return true
}

func keyCompare(a, b []interface{}) int {
	for idx := range a {
		if c := cond.CompareValues(a[idx], b[idx]); c != 0 {
			return c
		}
	}
	return 0
}

func (self *GroupTable) Find(key []interface{}) *GroupEntry {
	if self.index != nil {
		return self.index[hashKey(key)]
	}
	for _, e := range self.entries {
		self.probe++
		if keyEqual(e.key, key) {
			return e
		}
	}
	return nil
}

// insert appends a new entry, the caller must have checked Find first
func (self *GroupTable) insert(key []interface{}) *GroupEntry {
	e := newGroupEntry(key, self.fields)
	self.entries = append(self.entries, e)
	if self.index != nil {
		self.index[hashKey(key)] = e
	}
	return e
}

func (self *GroupTable) Len() int { return len(self.entries) }

func (self *GroupTable) IsHash() bool { return self.index != nil }

// Entries returns a copy of the entry list in table order
func (self *GroupTable) Entries() []*GroupEntry {
	return append([]*GroupEntry{}, self.entries...)
}

// sort orders the entries lexicographically over the key tuple. The index
// points at entries, not positions, so it stays valid.
func (self *GroupTable) sort() {
	sort.SliceStable(self.entries, func(i, j int) bool {
		return keyCompare(self.entries[i].key, self.entries[j].key) < 0
	})
}
