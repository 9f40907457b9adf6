package cond

// Compiled predicate representation. The parser produces a tree of the
// following nodes, the rewrite pass resolves every free identifier (Ref) into
// either an accumulator reference (Agg), a guarded avg division (Avg) or a
// grouping key reference (Key). A fully compiled tree never contains Ref.

const (
	ConstStr = iota
	ConstInt
	ConstReal
)

const (
	ExprConst   = iota
	ExprRef     // free identifier, only exists before rewrite
	ExprColumn  // attribute of the current row
	ExprAgg     // accumulator of the current group entry
	ExprAvg     // sum/count of the current group entry, 0 when count is 0
	ExprKey     // grouping attribute value of the current group entry
	ExprArith   // + - * /
	ExprCompare // = != < <= > >=
	ExprLogic   // and / or, folded left to right
	ExprTruth   // bare operand used as a condition
)

type CodeInfo struct {
	Start   int
	End     int
	Snippet string
}

type Expr interface {
	Type() int
	CInfo() CodeInfo
}

type Const struct {
	Ty       int
	String   string
	Int      int64
	Real     float64
	CodeInfo CodeInfo
}

type Ref struct {
	Id       string
	CodeInfo CodeInfo
}

type Column struct {
	Scan     int // grouping variable prefix as written, ie 1 in 1.state
	Name     string
	CodeInfo CodeInfo
}

type Agg struct {
	Name     string
	CodeInfo CodeInfo
}

type Avg struct {
	Name     string // avg_1_quant
	Sum      string // sum_1_quant
	Count    string // count_1_quant
	CodeInfo CodeInfo
}

type Key struct {
	Index    int // position inside of V
	Name     string
	CodeInfo CodeInfo
}

type Arith struct {
	Op       int
	L        Expr
	R        Expr
	CodeInfo CodeInfo
}

type Compare struct {
	Op       int
	L        Expr
	R        Expr
	CodeInfo CodeInfo
}

type Logic struct {
	Op       int
	L        Expr
	R        Expr
	CodeInfo CodeInfo
}

type Truth struct {
	Operand  Expr
	CodeInfo CodeInfo
}

func (self *Const) Type() int       { return ExprConst }
func (self *Const) CInfo() CodeInfo { return self.CodeInfo }

func (self *Ref) Type() int       { return ExprRef }
func (self *Ref) CInfo() CodeInfo { return self.CodeInfo }

func (self *Column) Type() int       { return ExprColumn }
func (self *Column) CInfo() CodeInfo { return self.CodeInfo }

func (self *Agg) Type() int       { return ExprAgg }
func (self *Agg) CInfo() CodeInfo { return self.CodeInfo }

func (self *Avg) Type() int       { return ExprAvg }
func (self *Avg) CInfo() CodeInfo { return self.CodeInfo }

func (self *Key) Type() int       { return ExprKey }
func (self *Key) CInfo() CodeInfo { return self.CodeInfo }

func (self *Arith) Type() int       { return ExprArith }
func (self *Arith) CInfo() CodeInfo { return self.CodeInfo }

func (self *Compare) Type() int       { return ExprCompare }
func (self *Compare) CInfo() CodeInfo { return self.CodeInfo }

func (self *Logic) Type() int       { return ExprLogic }
func (self *Logic) CInfo() CodeInfo { return self.CodeInfo }

func (self *Truth) Type() int       { return ExprTruth }
func (self *Truth) CInfo() CodeInfo { return self.CodeInfo }

func (self *Const) Value() interface{} {
	switch self.Ty {
	case ConstInt:
		return self.Int
	case ConstReal:
		return self.Real
	default:
		return self.String
	}
}

// Walk visits the tree in pre order, stops descending when fn returns false
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch e.Type() {
	case ExprArith:
		x := e.(*Arith)
		Walk(x.L, fn)
		Walk(x.R, fn)
	case ExprCompare:
		x := e.(*Compare)
		Walk(x.L, fn)
		Walk(x.R, fn)
	case ExprLogic:
		x := e.(*Logic)
		Walk(x.L, fn)
		Walk(x.R, fn)
	case ExprTruth:
		Walk(e.(*Truth).Operand, fn)
	default:
		break
	}
}

// Columns returns the distinct row attributes referenced by e, in order of
// first appearance
func Columns(e Expr) []string {
	out := []string{}
	seen := make(map[string]bool)
	Walk(e, func(x Expr) bool {
		if x.Type() == ExprColumn {
			n := x.(*Column).Name
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
		return true
	})
	return out
}

// Accumulators returns the distinct accumulator names read by e, avg nodes
// contribute their sum and count
func Accumulators(e Expr) []string {
	out := []string{}
	seen := make(map[string]bool)
	add := func(n string) {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	Walk(e, func(x Expr) bool {
		switch x.Type() {
		case ExprAgg:
			add(x.(*Agg).Name)
		case ExprAvg:
			add(x.(*Avg).Sum)
			add(x.(*Avg).Count)
		}
		return true
	})
	return out
}
