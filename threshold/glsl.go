package threshold

import (
	"bytes"
	"math"
	"strconv"
)

// AppendGLSL appends a GLSL function named fnName to b that evaluates the
// predicate with the bounds baked in as literals:
//
//	bool fnName(float v) {
//	return 0.0<=v && v<=1.0;
//	}
//
// The comparison operators come from the same table as Eval. Bounds are
// written as the float32 values the GPU evaluates with.
func (p Predicate) AppendGLSL(b []byte, fnName string) []byte {
	b = appendFuncHeader(b, fnName)
	b = append(b, "return "...)
	b = appendComparisons(b, p.Op(), func(b []byte) []byte {
		return AppendFloat(b, p.Min)
	}, func(b []byte) []byte {
		return AppendFloat(b, p.Max)
	})
	b = append(b, ";\n}\n"...)
	return b
}

// AppendGLSLUniform appends a GLSL function named fnName to b that reads the
// bounds from uniforms minName and maxName. Only a change of inclusivity
// requires regenerating the source, bound changes are uniform updates.
func (p Predicate) AppendGLSLUniform(b []byte, fnName, minName, maxName string) []byte {
	b = append(b, "uniform float "...)
	b = append(b, minName...)
	b = append(b, ";\nuniform float "...)
	b = append(b, maxName...)
	b = append(b, ";\n"...)
	b = appendFuncHeader(b, fnName)
	b = append(b, "return "...)
	b = appendComparisons(b, p.Op(), func(b []byte) []byte {
		return append(b, minName...)
	}, func(b []byte) []byte {
		return append(b, maxName...)
	})
	b = append(b, ";\n}\n"...)
	return b
}

func appendFuncHeader(b []byte, fnName string) []byte {
	b = append(b, "bool "...)
	b = append(b, fnName...)
	b = append(b, "(float v) {\n"...)
	return b
}

func appendComparisons(b []byte, op CompareOp, lo, hi func([]byte) []byte) []byte {
	b = lo(b)
	b = append(b, op.String()...)
	b = append(b, "v && v"...)
	b = append(b, op.String()...)
	b = hi(b)
	return b
}

// AppendFloat appends v as a GLSL float literal. The shortest representation
// that round trips through float32 is used and a decimal point is always
// present. Infinities are clamped to the largest float32 magnitude and NaN
// is written as a comparison that is never true.
func AppendFloat(b []byte, v float64) []byte {
	switch {
	case math.IsNaN(v):
		return append(b, "(0.0/0.0)"...)
	case v > math.MaxFloat32:
		v = math.MaxFloat32
	case v < -math.MaxFloat32:
		v = -math.MaxFloat32
	}
	start := len(b)
	b = strconv.AppendFloat(b, float64(float32(v)), 'g', -1, 32)
	if bytes.IndexAny(b[start:], ".e") < 0 {
		b = append(b, ".0"...)
	}
	return b
}
