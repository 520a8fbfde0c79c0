package threshold

import (
	"strconv"
)

// CompareOp is a comparison operator shared by the CPU evaluation and
// shader generation of the mask so both can never disagree.
type CompareOp uint8

const (
	// OpLess is the strict a < b comparison.
	OpLess CompareOp = iota
	// OpLessEqual is the a <= b comparison.
	OpLessEqual
)

// Eval returns the result of a op b.
func (op CompareOp) Eval(a, b float64) bool {
	if op == OpLessEqual {
		return a <= b
	}
	return a < b
}

// String returns the operator as it is written in Go and GLSL.
func (op CompareOp) String() string {
	if op == OpLessEqual {
		return "<="
	}
	return "<"
}

func inclusiveOp(inclusive bool) CompareOp {
	if inclusive {
		return OpLessEqual
	}
	return OpLess
}

// Mask returns true if value lies within the threshold interval. The interval
// is closed when inclusive is true and open otherwise. Mask is false for all
// values when min > max.
func Mask(value, min, max float64, inclusive bool) bool {
	return Predicate{Min: min, Max: max, Inclusive: inclusive}.Eval(value)
}

// Predicate is the threshold visibility test:
//
//	Min op v && v op Max
//
// where op is <= for inclusive predicates and < otherwise.
type Predicate struct {
	Min, Max  float64
	Inclusive bool
}

// Op returns the comparison operator of both bound tests.
func (p Predicate) Op() CompareOp { return inclusiveOp(p.Inclusive) }

// Eval evaluates the predicate for v.
func (p Predicate) Eval(v float64) bool {
	op := p.Op()
	return op.Eval(p.Min, v) && op.Eval(v, p.Max)
}

// Empty returns true if no value can satisfy the predicate.
func (p Predicate) Empty() bool {
	return p.Min > p.Max || (!p.Inclusive && p.Min == p.Max)
}

// String returns the textual form of the predicate over variable v, i.e:
//
//	0 <= v && v <= 1
func (p Predicate) String() string {
	return string(p.AppendText(nil, "v"))
}

// AppendText appends the textual form of the predicate over variable name to b.
func (p Predicate) AppendText(b []byte, name string) []byte {
	op := p.Op().String()
	b = strconv.AppendFloat(b, p.Min, 'g', -1, 64)
	b = append(b, ' ')
	b = append(b, op...)
	b = append(b, ' ')
	b = append(b, name...)
	b = append(b, " && "...)
	b = append(b, name...)
	b = append(b, ' ')
	b = append(b, op...)
	b = append(b, ' ')
	b = strconv.AppendFloat(b, p.Max, 'g', -1, 64)
	return b
}
