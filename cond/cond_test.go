package cond

import (
	"math"
	"testing"

	"github.com/dianpeng/mfquery/errs"
	"github.com/stretchr/testify/assert"
)

type testScope struct {
	acc map[string]bool
	v   []string
}

func (self *testScope) Accumulator(name string) bool {
	return self.acc[name]
}

func (self *testScope) GroupingAttr(name string) (int, bool) {
	for idx, v := range self.v {
		if v == name {
			return idx, true
		}
	}
	return -1, false
}

func newTestScope() *testScope {
	return &testScope{
		acc: map[string]bool{
			"sum_quant":     true,
			"sum_1_quant":   true,
			"count_1_quant": true,
			"sum_2_quant":   true,
			"count_2_quant": true,
			"max_1_quant":   true,
		},
		v: []string{"cust", "prod"},
	}
}

type testEnv struct {
	row  map[string]interface{}
	acc  map[string]float64
	keys []interface{}
}

func (self *testEnv) Column(name string) (interface{}, bool) {
	v, ok := self.row[name]
	return v, ok
}

func (self *testEnv) Accumulator(name string) (float64, bool) {
	v, ok := self.acc[name]
	return v, ok
}

func (self *testEnv) Key(idx int) interface{} {
	return self.keys[idx]
}

func newTestEnv() *testEnv {
	return &testEnv{
		row: map[string]interface{}{
			"state": "NY",
			"quant": 12,
			"year":  "2019",
		},
		acc: map[string]float64{
			"sum_quant":     100,
			"sum_1_quant":   30,
			"count_1_quant": 3,
			"sum_2_quant":   0,
			"count_2_quant": 0,
			"max_1_quant":   20,
		},
		keys: []interface{}{"Dan", "Milk"},
	}
}

func doTestFilter(expect, text string, assert *assert.Assertions) {
	p, err := CompileFilter(1, text, newTestScope())
	if !assert.True(err == nil, "%v", err) {
		return
	}
	assert.Equal(expect, p.String())
}

func doTestHaving(expect, text string, assert *assert.Assertions) {
	p, err := CompileHaving(text, newTestScope())
	if !assert.True(err == nil, "%v", err) {
		return
	}
	assert.Equal(expect, p.String())
}

func TestCompileFilter(t *testing.T) {
	assert := assert.New(t)

	doTestFilter(`(1.state = "NY")`, "1.state = 'NY'", assert)
	doTestFilter(`(1.state = "NY")`, "1.state == 'NY'", assert)
	doTestFilter(`(1.quant > -5)`, "1.quant > -5", assert)
	doTestFilter(`(1.quant >= 15)`, "1.quant >= 1.5e1", assert)
	doTestFilter(`(1.quant = (10-(2*3)))`, "1.quant = 10 - 2 * 3", assert)
	doTestFilter(`(1.quant > $sum_quant)`, "1.quant > sum_quant", assert)
	doTestFilter(`(1.quant > avg($sum_1_quant, $count_1_quant))`, "1.quant > avg_1_quant", assert)
	doTestFilter(`(1.state != 1.city)`, "1.state <> 1.city", assert)

	// and/or fold left to right, no precedence
	doTestFilter(
		`(((1.state = "NY") or (1.state = "NJ")) and (1.quant > 10))`,
		"1.state = 'NY' or 1.state = 'NJ' and 1.quant > 10",
		assert,
	)
	doTestFilter(
		`(((1.state = "NY") and (1.quant > 10)) or (1.state = "CT"))`,
		"1.state = 'NY' && 1.quant > 10 || 1.state = 'CT'",
		assert,
	)
}

func TestCompileHaving(t *testing.T) {
	assert := assert.New(t)

	doTestHaving(`($sum_1_quant > (2*$sum_2_quant))`, "sum_1_quant > 2 * sum_2_quant", assert)
	doTestHaving(`(avg($sum_1_quant, $count_1_quant) > 10)`, "avg_1_quant > 10", assert)
	doTestHaving(
		`((key[0:cust] = "Dan") and truth($count_1_quant))`,
		"cust = 'Dan' and count_1_quant",
		assert,
	)
	doTestHaving(`(($sum_1_quant+$sum_2_quant) <= 100)`, "sum_1_quant + sum_2_quant <= 100", assert)

	p, err := CompileHaving("   ", newTestScope())
	assert.True(err == nil)
	assert.True(p.IsAlways())
	assert.Equal("true", p.String())
}

func TestCompileError(t *testing.T) {
	assert := assert.New(t)

	filter := func(kind int, text string) {
		_, err := CompileFilter(1, text, newTestScope())
		assert.True(err != nil, text)
		assert.Equal(kind, errs.Kind(err), "%s: %v", text, err)
		if err != nil {
			assert.Contains(err.Error(), text)
		}
	}
	having := func(kind int, text string) {
		_, err := CompileHaving(text, newTestScope())
		assert.True(err != nil, text)
		assert.Equal(kind, errs.Kind(err), "%s: %v", text, err)
	}

	filter(errs.KindPredicateSyntax, "state = 'NY'")
	filter(errs.KindPredicateSyntax, "(1.state = 'NY')")
	filter(errs.KindPredicateSyntax, "1.state 'NY'")
	filter(errs.KindPredicateSyntax, "1.state = 'NY' 1.quant > 1")
	filter(errs.KindPredicateSyntax, "1.state = 'NY")
	filter(errs.KindPredicateSyntax, "1.state = 'NY' and")
	filter(errs.KindPredicateSyntax, "1.state = -'NY'")
	filter(errs.KindPredicateSyntax, "")
	filter(errs.KindReference, "1.quant > max_2_quant")
	filter(errs.KindReference, "1.quant > avg_quant")

	having(errs.KindReference, "avg_3_quant > 1")
	having(errs.KindReference, "min_1_quant > 1")
	having(errs.KindReference, "state = 'NY'")
	having(errs.KindPredicateSyntax, "1.quant > 1")
	having(errs.KindPredicateSyntax, "sum_1_quant >")
	having(errs.KindPredicateSyntax, "not sum_1_quant")
}

func TestBareIdentifierHint(t *testing.T) {
	assert := assert.New(t)
	_, err := CompileFilter(1, "1.state = NY", newTestScope())
	assert.Equal(errs.KindPredicateSyntax, errs.Kind(err))
	hints := errs.Hints(err)
	assert.Equal(1, len(hints))
	assert.Contains(hints[0], "'NY'")
}

func TestMatch(t *testing.T) {
	assert := assert.New(t)
	env := newTestEnv()
	scope := newTestScope()

	filter := func(expect bool, text string) {
		p, err := CompileFilter(1, text, scope)
		assert.True(err == nil, "%v", err)
		ok, err := p.Match(env)
		assert.True(err == nil, "%v", err)
		assert.Equal(expect, ok, text)
	}
	having := func(expect bool, text string) {
		p, err := CompileHaving(text, scope)
		assert.True(err == nil, "%v", err)
		ok, err := p.Match(env)
		assert.True(err == nil, "%v", err)
		assert.Equal(expect, ok, text)
	}

	filter(true, "1.state = 'NY' and 1.quant > 10")
	filter(false, "1.state = 'NJ'")
	filter(true, "1.year = 2019")
	filter(true, "1.quant = 12.0")
	filter(true, "1.quant * 2 = 24")
	filter(false, "1.quant > sum_quant")
	filter(true, "1.quant > avg_1_quant")

	// (true or false) and false
	filter(false, "1.state = 'NY' or 1.quant > 100 and 1.quant < 0")

	having(true, "avg_1_quant = 10")
	having(true, "avg_2_quant = 0")
	having(true, "sum_1_quant > 2 * sum_2_quant")
	having(true, "cust = 'Dan' and prod != 'Eggs'")
	having(true, "count_1_quant")
	having(false, "count_2_quant")
	having(true, "max_1_quant - sum_1_quant / count_1_quant = 10")
}

func TestMatchRowError(t *testing.T) {
	assert := assert.New(t)
	env := newTestEnv()

	{
		p, err := CompileFilter(1, "1.missing = 1", newTestScope())
		assert.True(err == nil)
		assert.Equal([]string{"missing"}, p.Columns())
		_, err = p.Match(env)
		assert.Equal(errs.KindRow, errs.Kind(err))
	}
	{
		p, err := CompileHaving("sum_1_quant / sum_2_quant > 1", newTestScope())
		assert.True(err == nil)
		assert.Equal([]string{"sum_1_quant", "sum_2_quant"}, p.Accumulators())
		_, err = p.Match(env)
		assert.Equal(errs.KindRow, errs.Kind(err))
	}
	{
		p, err := CompileFilter(1, "1.state + 1 > 1", newTestScope())
		assert.True(err == nil)
		_, err = p.Match(env)
		assert.Equal(errs.KindRow, errs.Kind(err))
	}
}

func TestValueNaN(t *testing.T) {
	assert := assert.New(t)
	nan := math.NaN()

	assert.Equal(0, CompareValues(nan, nan))
	assert.Equal(1, CompareValues(nan, 5.0))
	assert.Equal(1, CompareValues(nan, int64(7)))
	assert.Equal(-1, CompareValues(math.Inf(1), nan))
	assert.False(Equal(nan, 5.0))
	assert.Equal(KeyString(nan), KeyString(math.NaN()))
	assert.NotEqual(KeyString(nan), KeyString(5.0))

	assert.True(compareOp(TkEq, nan, nan))
	assert.True(compareOp(TkNe, nan, 5.0))
	assert.False(compareOp(TkLt, nan, 5.0))
	assert.True(compareOp(TkGt, nan, 5.0))
}

func TestValueLargeInteger(t *testing.T) {
	assert := assert.New(t)
	a := int64(9007199254740992)
	b := int64(9007199254740993)

	assert.Equal(-1, CompareValues(a, b))
	assert.Equal(-1, CompareValues("9007199254740992", "9007199254740993"))
	assert.Equal(0, CompareValues(a, float64(a)))
	assert.Equal(1, CompareValues(b, float64(a)))
	assert.Equal(-1, CompareValues(int64(math.MaxInt64), uint64(math.MaxUint64)))
	assert.Equal(-1, CompareValues(int64(math.MaxInt64), float64(1<<63)))

	assert.NotEqual(KeyString(a), KeyString(b))
	assert.Equal("n:9007199254740993", KeyString(b))
	assert.Equal(KeyString(a), KeyString(float64(a)))
	assert.Equal(KeyString(uint64(1<<63)), KeyString(float64(1<<63)))
	assert.Equal("n:2.5", KeyString(2.5))
	assert.Equal(KeyString(0), KeyString(math.Copysign(0, -1)))
}

func TestValue(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(0, CompareValues(5, "5.0"))
	assert.Equal(0, CompareValues(int64(5), 5.0))
	assert.Equal(-1, CompareValues(9, 10))
	assert.Equal(-1, CompareValues("9", "10"))
	assert.Equal(1, CompareValues("9x", "10x"))
	assert.Equal(1, CompareValues("b", "a"))
	assert.Equal(-1, CompareValues(nil, 0))
	assert.Equal(0, CompareValues(nil, nil))

	assert.Equal(KeyString(5), KeyString(5.0))
	assert.Equal(KeyString(5), KeyString("5"))
	assert.NotEqual(KeyString(nil), KeyString(""))
	assert.NotEqual(KeyString("a"), KeyString("b"))

	assert.True(compareOp(TkEq, nil, nil))
	assert.False(compareOp(TkEq, nil, 0))
	assert.True(compareOp(TkNe, nil, 0))
	assert.False(compareOp(TkLt, nil, 1))

	assert.True(Truthy(1))
	assert.True(Truthy("x"))
	assert.False(Truthy(""))
	assert.False(Truthy("0"))
	assert.False(Truthy(0.0))
	assert.False(Truthy(nil))

	_, ok := ToFloat64("NaN")
	assert.False(ok)
	_, ok = ToFloat64("abc")
	assert.False(ok)
	f, ok := ToFloat64(" 2.5 ")
	assert.True(ok)
	assert.Equal(2.5, f)

	assert.Equal("5", ToString(5.0))
	assert.Equal("2.5", ToString(float64(2.5)))
	assert.Equal("1000000", ToString(1e6))
	assert.Equal("1.2345675e+06", ToString(1234567.5))
}

func TestAggPrefix(t *testing.T) {
	assert := assert.New(t)
	{
		f, rest, ok := AggPrefix("avg_1_quant")
		assert.True(ok)
		assert.Equal("avg", f)
		assert.Equal("1_quant", rest)
	}
	{
		_, _, ok := AggPrefix("median_quant")
		assert.False(ok)
	}
	{
		_, _, ok := AggPrefix("sum_")
		assert.False(ok)
	}
	{
		_, _, ok := AggPrefix("cust")
		assert.False(ok)
	}
}
