package cond

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Value model shared by the row filters, the having clause and the grouping
// key comparison. Rows carry loosely typed values (whatever the source gives
// us), the rule is the same as awk's strnum: if both sides look numeric they
// are compared as numbers, otherwise as strings. nil only equals nil.
//
// Numbers compare exactly: two integers never go through float64, so ids
// above 2^53 stay distinct, and NaN equals only NaN and sorts after every
// other number.

func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	switch c := s[0]; {
	case c >= '0' && c <= '9', c == '-', c == '+', c == '.':
		return true
	default:
		return false
	}
}

// ToFloat64 converts a row value into a number when it is one or when it is a
// string that looks like one
func ToFloat64(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case string:
		s := strings.TrimSpace(x)
		if !looksNumeric(s) {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	case []byte:
		return ToFloat64(string(x))
	default:
		return 0, false
	}
}

// ToString renders a value the way it is printed and compared as a string,
// numbers use the shortest representation so 5.0 prints as 5. Integral
// floats below 1e15 never switch to the exponent form.
func ToString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatFloat(x, 'f', -1, 64)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	default:
		return fmt.Sprintf("%v", x)
	}
}

const (
	numInt = iota
	numUint
	numFloat
)

type number struct {
	kind int
	i    int64
	u    uint64
	f    float64
}

func (self number) isNaN() bool {
	return self.kind == numFloat && math.IsNaN(self.f)
}

func (self number) big() *big.Float {
	switch self.kind {
	case numInt:
		return new(big.Float).SetInt64(self.i)
	case numUint:
		return new(big.Float).SetUint64(self.u)
	default:
		return new(big.Float).SetFloat64(self.f)
	}
}

// toNumber is ToFloat64 keeping integers exact, numeric strings are parsed
// as integers first
func toNumber(v interface{}) (number, bool) {
	switch x := v.(type) {
	case int:
		return number{kind: numInt, i: int64(x)}, true
	case int8:
		return number{kind: numInt, i: int64(x)}, true
	case int16:
		return number{kind: numInt, i: int64(x)}, true
	case int32:
		return number{kind: numInt, i: int64(x)}, true
	case int64:
		return number{kind: numInt, i: x}, true
	case uint:
		return number{kind: numUint, u: uint64(x)}, true
	case uint8:
		return number{kind: numUint, u: uint64(x)}, true
	case uint16:
		return number{kind: numUint, u: uint64(x)}, true
	case uint32:
		return number{kind: numUint, u: uint64(x)}, true
	case uint64:
		return number{kind: numUint, u: x}, true
	case string:
		s := strings.TrimSpace(x)
		if !looksNumeric(s) {
			return number{}, false
		}
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return number{kind: numInt, i: i}, true
		}
		if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return number{kind: numUint, u: u}, true
		}
	case []byte:
		return toNumber(string(x))
	}
	f, ok := ToFloat64(v)
	if !ok {
		return number{}, false
	}
	return number{kind: numFloat, f: f}, true
}

func compareNumber(a, b number) int {
	switch an, bn := a.isNaN(), b.isNaN(); {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	}

	switch {
	case a.kind == numInt && b.kind == numInt:
		switch {
		case a.i < b.i:
			return -1
		case a.i > b.i:
			return 1
		default:
			return 0
		}
	case a.kind == numFloat && b.kind == numFloat:
		switch {
		case a.f < b.f:
			return -1
		case a.f > b.f:
			return 1
		default:
			return 0
		}
	default:
		return a.big().Cmp(b.big())
	}
}

// canonical text of a number, integral values are written as exact integers
// so two numbers have the same text iff compareNumber says they are equal
func (self number) key() string {
	switch self.kind {
	case numInt:
		return strconv.FormatInt(self.i, 10)
	case numUint:
		return strconv.FormatUint(self.u, 10)
	}
	f := self.f
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	if f >= -(1<<63) && f < (1<<63) {
		return strconv.FormatInt(int64(f), 10)
	}
	i, _ := new(big.Float).SetFloat64(f).Int(nil)
	return i.String()
}

// CompareValues orders two values, nil sorts before everything else
func CompareValues(a, b interface{}) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	an, aok := toNumber(a)
	bn, bok := toNumber(b)
	if aok && bok {
		return compareNumber(an, bn)
	}

	return strings.Compare(ToString(a), ToString(b))
}

func Equal(a, b interface{}) bool {
	return CompareValues(a, b) == 0
}

// KeyString maps a value into a string such that two values are Equal iff
// their KeyString are the same
func KeyString(v interface{}) string {
	if v == nil {
		return "z:"
	}
	if n, ok := toNumber(v); ok {
		return "n:" + n.key()
	}
	return "s:" + ToString(v)
}

// Truthy follows awk, 0 and the empty string are false
func Truthy(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		if f, ok := ToFloat64(x); ok {
			return f != 0
		}
		return x != ""
	default:
		if f, ok := ToFloat64(x); ok {
			return f != 0
		}
		return true
	}
}

func compareOp(op int, a, b interface{}) bool {
	if a == nil || b == nil {
		switch op {
		case TkEq:
			return a == nil && b == nil
		case TkNe:
			return !(a == nil && b == nil)
		default:
			return false
		}
	}

	c := CompareValues(a, b)
	switch op {
	case TkEq:
		return c == 0
	case TkNe:
		return c != 0
	case TkLt:
		return c < 0
	case TkLe:
		return c <= 0
	case TkGt:
		return c > 0
	case TkGe:
		return c >= 0
	default:
		return false
	}
}
