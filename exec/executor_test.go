package exec

import (
	"math"
	"testing"

	"github.com/dianpeng/mfquery/errs"
	"github.com/dianpeng/mfquery/plan"
	"github.com/dianpeng/mfquery/source"
	"github.com/dianpeng/mfquery/spec"
	"github.com/stretchr/testify/assert"
)

func sales() source.Slice {
	return source.Slice{
		{"cust": "Dan", "prod": "Milk", "quant": 5, "state": "NY"},
		{"cust": "Dan", "prod": "Milk", "quant": 3, "state": "NJ"},
		{"cust": "Dan", "prod": "Eggs", "quant": 4, "state": "NY"},
		{"cust": "Sam", "prod": "Milk", "quant": 1, "state": "CT"},
		{"cust": "Sam", "prod": "Milk", "quant": 2, "state": "CT"},
		{"cust": "Amy", "prod": "Eggs", "quant": 6, "state": "NJ"},
		{"cust": "Amy", "prod": "Eggs", "quant": 2, "state": "NY"},
	}
}

func mustPlan(t *testing.T, s *spec.QuerySpec) *plan.Plan {
	t.Helper()
	p, err := plan.PlanSpec(s)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	return p
}

func rowMaps(rows []Row) []map[string]interface{} {
	out := []map[string]interface{}{}
	for _, r := range rows {
		out = append(out, r.Map())
	}
	return out
}

func TestScenarioA(t *testing.T) {
	assert := assert.New(t)
	p := mustPlan(t, &spec.QuerySpec{
		V:     []string{"cust", "prod"},
		F:     []string{"sum_quant", "count_1_quant"},
		N:     1,
		Sigma: map[int]string{1: "1.state = 'NY'"},
		S:     []string{"sum_quant", "count_1_quant"},
	})
	rows, err := Run(p, source.Slice{
		{"cust": "A", "prod": "P", "quant": 5, "state": "NY"},
		{"cust": "A", "prod": "P", "quant": 3, "state": "NJ"},
	}, Config{})
	assert.True(err == nil, "%v", err)
	assert.Equal(1, len(rows))
	assert.Equal([]string{"cust", "prod", "sum_quant", "count_1_quant"}, rows[0].Columns)
	assert.Equal([]interface{}{"A", "P", 8.0, 1.0}, rows[0].Values)
}

func TestScenarioB(t *testing.T) {
	assert := assert.New(t)
	p := mustPlan(t, &spec.QuerySpec{
		V: []string{"cust"},
		F: []string{"avg_quant"},
		G: "avg_quant > 2",
		S: []string{"avg_quant"},
	})
	rows, err := Run(p, source.Slice{
		{"cust": "low", "quant": 1},
		{"cust": "low", "quant": 2},
		{"cust": "high", "quant": 2},
		{"cust": "high", "quant": 4},
	}, Config{})
	assert.True(err == nil, "%v", err)
	assert.Equal(
		[]map[string]interface{}{
			{"cust": "high", "avg_quant": 3.0},
		},
		rowMaps(rows),
	)
}

func TestScenarioC(t *testing.T) {
	assert := assert.New(t)
	p := mustPlan(t, &spec.QuerySpec{
		V: []string{"cust"},
		F: []string{"sum_quant", "sum_1_quant", "count_2_quant"},
		N: 2,
		Sigma: map[int]string{
			1: "1.state = 'NY'",
			2: "2.state = 'NJ'",
		},
		S: []string{"sum_quant", "sum_1_quant", "count_2_quant"},
	})

	e := NewExecutor(p, source.Slice{
		{"cust": "A", "quant": 7, "state": "CT"},
	}, Config{})
	rows, err := e.Execute()
	assert.True(err == nil, "%v", err)

	// the row matches neither filter, only the base accumulator moves
	assert.Equal([]interface{}{"A", 7.0, 0.0, 0.0}, rows[0].Values)
	assert.Equal([]int{1, 0, 0}, e.Stats().Update)
	assert.Equal([]int{1, 1, 1}, e.Stats().Rows)
}

func TestGroupByOnly(t *testing.T) {
	assert := assert.New(t)
	p := mustPlan(t, &spec.QuerySpec{
		V: []string{"prod"},
		F: []string{"count_quant", "min_quant", "max_quant", "sum_quant"},
		S: []string{"count_quant", "min_quant", "max_quant", "sum_quant"},
	})
	for _, hash := range []bool{false, true} {
		rows, err := Run(p, sales(), Config{HashIndex: hash})
		assert.True(err == nil, "%v", err)
		assert.Equal(
			[]map[string]interface{}{
				{"prod": "Eggs", "count_quant": 3.0, "min_quant": 2.0, "max_quant": 6.0, "sum_quant": 12.0},
				{"prod": "Milk", "count_quant": 4.0, "min_quant": 1.0, "max_quant": 5.0, "sum_quant": 11.0},
			},
			rowMaps(rows),
		)
	}
}

func TestAvgZeroGuard(t *testing.T) {
	assert := assert.New(t)
	p := mustPlan(t, &spec.QuerySpec{
		V:     []string{"cust"},
		F:     []string{"avg_1_quant"},
		N:     1,
		Sigma: map[int]string{1: "1.state = 'TX'"},
		G:     "avg_1_quant = 0",
		S:     []string{"avg_1_quant"},
	})
	rows, err := Run(p, sales(), Config{})
	assert.True(err == nil, "%v", err)
	assert.Equal(3, len(rows))
	for _, r := range rows {
		v, ok := r.Get("avg_1_quant")
		assert.True(ok)
		assert.Equal(0.0, v)
	}
}

func TestCardinalityAndScanIsolation(t *testing.T) {
	assert := assert.New(t)
	p := mustPlan(t, &spec.QuerySpec{
		V: []string{"cust", "prod"},
		F: []string{"sum_quant", "max_1_quant", "min_2_quant"},
		N: 2,
		Sigma: map[int]string{
			1: "1.state = 'NY'",
			2: "2.quant > 1",
		},
		S: []string{"sum_quant"},
	})

	e := NewExecutor(p, sales(), Config{})
	assert.True(e.BaseScan() == nil)
	assert.Equal(4, len(e.Table()))
	assert.Equal(4, e.Stats().Groups)

	snapshot := func(name string) []float64 {
		out := []float64{}
		for _, entry := range e.Table() {
			v, _ := entry.Accumulator(name)
			out = append(out, v)
		}
		return out
	}

	base := snapshot("sum_quant")
	min2 := snapshot("min_2_quant")

	assert.True(e.Scan(1) == nil)
	assert.Equal(4, len(e.Table()))
	assert.Equal(base, snapshot("sum_quant"))
	assert.Equal(min2, snapshot("min_2_quant"))

	max1 := snapshot("max_1_quant")
	assert.True(e.Scan(2) == nil)
	assert.Equal(4, len(e.Table()))
	assert.Equal(base, snapshot("sum_quant"))
	assert.Equal(max1, snapshot("max_1_quant"))

	// Sam's rows never match 1.state = 'NY'
	for _, entry := range e.Table() {
		if entry.Key()[0] == "Sam" {
			assert.False(entry.Contributed("max_1_quant"))
			v, _ := entry.Accumulator("max_1_quant")
			assert.Equal(0.0, v)
		}
	}
}

func TestSortedAndIdempotent(t *testing.T) {
	assert := assert.New(t)
	p := mustPlan(t, &spec.QuerySpec{
		V: []string{"cust", "prod"},
		F: []string{"sum_quant"},
		S: []string{"sum_quant"},
	})

	first, err := Run(p, sales(), Config{})
	assert.True(err == nil)
	for i := 1; i < len(first); i++ {
		assert.True(keyCompare(first[i-1].Values[:2], first[i].Values[:2]) <= 0)
	}

	second, err := Run(p, sales(), Config{})
	assert.True(err == nil)
	assert.Equal(first, second)

	hash, err := Run(p, sales(), Config{HashIndex: true})
	assert.True(err == nil)
	assert.Equal(first, hash)
}

func TestNumericKeyIsOneGroup(t *testing.T) {
	assert := assert.New(t)
	p := mustPlan(t, &spec.QuerySpec{
		V: []string{"year"},
		F: []string{"count_quant"},
		S: []string{"count_quant"},
	})
	src := source.Slice{
		{"year": 2019, "quant": 1},
		{"year": "2019", "quant": 1},
		{"year": 2019.0, "quant": 1},
		{"year": 2020, "quant": 1},
	}
	for _, hash := range []bool{false, true} {
		rows, err := Run(p, src, Config{HashIndex: hash})
		assert.True(err == nil)
		assert.Equal(2, len(rows))
		assert.Equal(3.0, rows[0].Values[1])
	}
}

func groupsByMode(
	t *testing.T,
	p *plan.Plan,
	src source.Source,
) ([]map[string]interface{}, []map[string]interface{}) {
	linear, err := Run(p, src, Config{})
	if err != nil {
		t.Fatalf("linear: %v", err)
	}
	hash, err := Run(p, src, Config{HashIndex: true})
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return rowMaps(linear), rowMaps(hash)
}

func TestNaNKey(t *testing.T) {
	assert := assert.New(t)
	p := mustPlan(t, &spec.QuerySpec{
		V: []string{"k"},
		F: []string{"count_quant"},
		S: []string{"count_quant"},
	})
	src := source.Slice{
		{"k": math.NaN(), "quant": 1},
		{"k": 5.0, "quant": 1},
		{"k": 7.0, "quant": 1},
		{"k": math.NaN(), "quant": 1},
	}
	linear, hash := groupsByMode(t, p, src)
	assert.Equal(3, len(linear))
	assert.Equal(len(linear), len(hash))

	// NaN sorts after every number
	for _, rows := range [][]map[string]interface{}{linear, hash} {
		assert.Equal(5.0, rows[0]["k"])
		assert.Equal(7.0, rows[1]["k"])
		assert.True(math.IsNaN(rows[2]["k"].(float64)))
		assert.Equal(2.0, rows[2]["count_quant"])
	}
}

func TestLargeIntegerKey(t *testing.T) {
	assert := assert.New(t)
	p := mustPlan(t, &spec.QuerySpec{
		V: []string{"id"},
		F: []string{"count_quant"},
		S: []string{"count_quant"},
	})
	src := source.Slice{
		{"id": int64(9007199254740993), "quant": 1},
		{"id": int64(9007199254740992), "quant": 1},
		{"id": int64(9007199254740993), "quant": 1},
	}
	linear, hash := groupsByMode(t, p, src)
	want := []map[string]interface{}{
		{"id": int64(9007199254740992), "count_quant": 1.0},
		{"id": int64(9007199254740993), "count_quant": 2.0},
	}
	assert.Equal(want, linear)
	assert.Equal(want, hash)
}

func TestLeftToRightChain(t *testing.T) {
	assert := assert.New(t)
	p := mustPlan(t, &spec.QuerySpec{
		V:     []string{"cust"},
		F:     []string{"count_1_quant"},
		N:     1,
		Sigma: map[int]string{1: "1.state = 'CT' or 1.state = 'NY' and 1.quant > 4"},
		S:     []string{"count_1_quant"},
	})
	rows, err := Run(p, sales(), Config{})
	assert.True(err == nil)
	assert.Equal(
		[]map[string]interface{}{
			{"cust": "Amy", "count_1_quant": 0.0},
			{"cust": "Dan", "count_1_quant": 1.0},
			{"cust": "Sam", "count_1_quant": 0.0},
		},
		rowMaps(rows),
	)
}

func TestFilterReadsOwnEntry(t *testing.T) {
	assert := assert.New(t)
	p := mustPlan(t, &spec.QuerySpec{
		V:     []string{"cust"},
		F:     []string{"avg_quant", "count_1_quant"},
		N:     1,
		Sigma: map[int]string{1: "1.quant > avg_quant"},
		S:     []string{"avg_quant", "count_1_quant"},
	})
	rows, err := Run(p, sales(), Config{})
	assert.True(err == nil)
	assert.Equal(
		[]map[string]interface{}{
			{"cust": "Amy", "avg_quant": 4.0, "count_1_quant": 1.0},
			{"cust": "Dan", "avg_quant": 4.0, "count_1_quant": 1.0},
			{"cust": "Sam", "avg_quant": 1.5, "count_1_quant": 1.0},
		},
		rowMaps(rows),
	)
}

func TestEmptyGroupBy(t *testing.T) {
	assert := assert.New(t)
	p := mustPlan(t, &spec.QuerySpec{
		F: []string{"sum_quant"},
		S: []string{"sum_quant"},
	})
	rows, err := Run(p, sales(), Config{})
	assert.True(err == nil)
	assert.Equal([]map[string]interface{}{{"sum_quant": 23.0}}, rowMaps(rows))

	rows, err = Run(p, source.Slice{}, Config{})
	assert.True(err == nil)
	assert.Equal(0, len(rows))
}

func TestRowError(t *testing.T) {
	assert := assert.New(t)
	{
		// measured attribute missing
		p := mustPlan(t, &spec.QuerySpec{
			V: []string{"cust"},
			F: []string{"sum_price"},
			S: []string{"sum_price"},
		})
		rows, err := Run(p, sales(), Config{})
		assert.True(rows == nil)
		assert.Equal(errs.KindRow, errs.Kind(err))
		assert.Contains(err.Error(), "price")
	}
	{
		// filter attribute missing, only checked by scan 1
		p := mustPlan(t, &spec.QuerySpec{
			V:     []string{"cust"},
			F:     []string{"count_1_quant"},
			N:     1,
			Sigma: map[int]string{1: "1.city = 'NYC'"},
			S:     []string{"count_1_quant"},
		})
		e := NewExecutor(p, sales(), Config{})
		assert.True(e.BaseScan() == nil)
		err := e.Scan(1)
		assert.Equal(errs.KindRow, errs.Kind(err))
		assert.Contains(err.Error(), "city")
		assert.Equal("failed", e.State())
	}
	{
		// non numeric measure
		p := mustPlan(t, &spec.QuerySpec{
			V: []string{"cust"},
			F: []string{"sum_state"},
			S: []string{"sum_state"},
		})
		_, err := Run(p, sales(), Config{})
		assert.Equal(errs.KindRow, errs.Kind(err))
	}
	{
		// count does not care about the value, nil is skipped by sum
		p := mustPlan(t, &spec.QuerySpec{
			V: []string{"cust"},
			F: []string{"count_state", "sum_quant"},
			S: []string{"count_state", "sum_quant"},
		})
		rows, err := Run(p, source.Slice{
			{"cust": "A", "state": "NY", "quant": 1},
			{"cust": "A", "state": "NJ", "quant": nil},
		}, Config{})
		assert.True(err == nil, "%v", err)
		assert.Equal([]interface{}{"A", 2.0, 1.0}, rows[0].Values)
	}
	{
		// having division by zero
		p := mustPlan(t, &spec.QuerySpec{
			V: []string{"cust"},
			F: []string{"sum_quant", "count_1_quant"},
			N: 1,
			Sigma: map[int]string{
				1: "1.state = 'TX'",
			},
			G: "sum_quant / count_1_quant > 1",
			S: []string{"sum_quant"},
		})
		_, err := Run(p, sales(), Config{})
		assert.Equal(errs.KindRow, errs.Kind(err))
	}
}

func TestStateMachine(t *testing.T) {
	assert := assert.New(t)
	p := mustPlan(t, &spec.QuerySpec{
		V: []string{"cust"},
		F: []string{"sum_quant", "sum_1_quant", "sum_2_quant"},
		N: 2,
		Sigma: map[int]string{
			1: "1.state = 'NY'",
			2: "2.state = 'NJ'",
		},
		S: []string{"sum_quant"},
	})
	e := NewExecutor(p, sales(), Config{})
	assert.Equal("uninitialized", e.State())

	assert.True(e.Scan(1) != nil)
	assert.True(e.Sort() != nil)
	_, err := e.Project()
	assert.True(err != nil)

	assert.True(e.BaseScan() == nil)
	assert.Equal("base-scan-complete", e.State())
	assert.True(e.BaseScan() != nil)
	assert.True(e.Scan(2) != nil)
	assert.True(e.Sort() != nil)

	assert.True(e.Scan(1) == nil)
	assert.Equal("scanning", e.State())
	assert.True(e.Scan(1) != nil)
	assert.True(e.Scan(3) != nil)
	assert.True(e.Sort() != nil)

	assert.True(e.Scan(2) == nil)
	assert.True(e.Sort() == nil)
	assert.Equal("sorted", e.State())
	assert.True(e.Scan(3) != nil)

	rows, err := e.Project()
	assert.True(err == nil)
	assert.Equal(3, len(rows))
	assert.Equal("projected", e.State())
	_, err = e.Project()
	assert.True(err != nil)
	assert.Equal(3, e.Stats().Output)
}

func TestLinearProbe(t *testing.T) {
	assert := assert.New(t)
	p := mustPlan(t, &spec.QuerySpec{
		V: []string{"cust"},
		F: []string{"sum_quant"},
		S: []string{"sum_quant"},
	})

	linear := NewExecutor(p, sales(), Config{})
	_, err := linear.Execute()
	assert.True(err == nil)
	assert.True(linear.Stats().Probe > 0)

	hash := NewExecutor(p, sales(), Config{HashIndex: true})
	_, err = hash.Execute()
	assert.True(err == nil)
	assert.Equal(0, hash.Stats().Probe)
}
