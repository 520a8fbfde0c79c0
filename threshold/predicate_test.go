package threshold

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMask(t *testing.T) {
	for _, test := range []struct {
		v, min, max float64
		inclusive   bool
		want        bool
	}{
		{v: 0.5, min: 0, max: 1, inclusive: true, want: true},
		{v: 0.5, min: 0, max: 1, inclusive: false, want: true},
		{v: 1, min: 0, max: 1, inclusive: false, want: false},
		{v: 1, min: 0, max: 1, inclusive: true, want: true},
		{v: 0, min: 0, max: 1, inclusive: false, want: false},
		{v: 0, min: 0, max: 1, inclusive: true, want: true},
		{v: -0.1, min: 0, max: 1, inclusive: true, want: false},
		{v: 2, min: 2, max: 2, inclusive: true, want: true},
		{v: 2, min: 2, max: 2, inclusive: false, want: false},
		{v: math.NaN(), min: 0, max: 1, inclusive: true, want: false},
	} {
		got := Mask(test.v, test.min, test.max, test.inclusive)
		if got != test.want {
			t.Errorf("Mask(%v, %v, %v, %v) = %v, want %v", test.v, test.min, test.max, test.inclusive, got, test.want)
		}
	}
}

func TestMaskInvertedInterval(t *testing.T) {
	p := Predicate{Min: 1, Max: 0, Inclusive: true}
	assert.True(t, p.Empty())
	for _, v := range []float64{-1, 0, 0.5, 1, 2} {
		assert.False(t, p.Eval(v), v)
		assert.False(t, Mask(v, 1, 0, false), v)
	}
	assert.True(t, Predicate{Min: 1, Max: 1}.Empty())
	assert.False(t, Predicate{Min: 1, Max: 1, Inclusive: true}.Empty())
}

func TestPredicateString(t *testing.T) {
	assert.Equal(t, "0 <= v && v <= 1", Predicate{Min: 0, Max: 1, Inclusive: true}.String())
	assert.Equal(t, "-0.5 < v && v < 2.25", Predicate{Min: -0.5, Max: 2.25}.String())
	assert.Equal(t, "1 < temp && temp < 3", string(Predicate{Min: 1, Max: 3}.AppendText(nil, "temp")))
}

func TestAppendGLSL(t *testing.T) {
	got := string(Predicate{Min: 0, Max: 1, Inclusive: true}.AppendGLSL(nil, "visible"))
	assert.Equal(t, "bool visible(float v) {\nreturn 0.0<=v && v<=1.0;\n}\n", got)

	got = string(Predicate{Min: -0.25, Max: 3e8}.AppendGLSL(nil, "mask"))
	assert.Equal(t, "bool mask(float v) {\nreturn -0.25<v && v<3e+08;\n}\n", got)

	got = string(Predicate{Inclusive: false}.AppendGLSLUniform(nil, "mask", "uMin", "uMax"))
	assert.Equal(t, "uniform float uMin;\nuniform float uMax;\nbool mask(float v) {\nreturn uMin<v && v<uMax;\n}\n", got)
}

func TestAppendFloat(t *testing.T) {
	for _, test := range []struct {
		v    float64
		want string
	}{
		{0, "0.0"},
		{1, "1.0"},
		{-2, "-2.0"},
		{0.1, "0.1"},
		{1.0 / 3, "0.33333334"},
		{1e-7, "1e-07"},
		{math.Inf(1), "3.4028235e+38"},
		{math.Inf(-1), "-3.4028235e+38"},
		{math.NaN(), "(0.0/0.0)"},
	} {
		assert.Equal(t, test.want, string(AppendFloat(nil, test.v)), test.v)
	}
}

// The same comparison operator drives CPU evaluation and shader text.
func TestCompareOpAgreement(t *testing.T) {
	for _, inclusive := range []bool{true, false} {
		p := Predicate{Min: 0, Max: 1, Inclusive: inclusive}
		glsl := string(p.AppendGLSL(nil, "f"))
		assert.Contains(t, glsl, "0.0"+p.Op().String()+"v")
		assert.Equal(t, inclusive, p.Eval(1))
		assert.Equal(t, inclusive, p.Op().Eval(1, 1))
	}
}
