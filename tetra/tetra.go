// Package tetra defines tetrahedral meshes and the per-vertex scalar fields
// sampled on them.
package tetra

import (
	"errors"
	"fmt"

	"github.com/soypat/isothresh/internal/d3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrDimensionMismatch is returned when a scalar field's length
	// does not match the vertex count of the mesh it is bound to.
	ErrDimensionMismatch = errors.New("field length does not match mesh vertex count")
	// ErrInvalidTopology is returned when a tetrahedron references a
	// vertex index outside of the mesh's position buffer.
	ErrInvalidTopology = errors.New("tetrahedron references out of range vertex")
)

// Mesh is a volumetric mesh decomposed into tetrahedra. Each tetrahedron
// holds 4 indices into Positions. Orientation of the tetrahedra is irrelevant.
//
// A Mesh must not be modified while it is bound to an extractor.
type Mesh struct {
	Positions  []r3.Vec
	Tetrahedra [][4]int
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int { return len(m.Positions) }

// Validate checks that every tetrahedron references existing vertices.
// The returned error wraps ErrInvalidTopology.
func (m *Mesh) Validate() error {
	nv := len(m.Positions)
	for i, tet := range m.Tetrahedra {
		for _, v := range tet {
			if v < 0 || v >= nv {
				return fmt.Errorf("tetrahedron %d vertex %d (have %d vertices): %w", i, v, nv, ErrInvalidTopology)
			}
		}
	}
	return nil
}

// Bounds returns the bounding box of all mesh vertices.
func (m *Mesh) Bounds() r3.Box {
	return r3.Box(d3.Set(m.Positions).Bounds())
}

// Field is a named scalar array indexed by vertex index. A Field is
// replaced wholesale when its values change, never mutated in place.
type Field struct {
	Name   string
	Values []float64
}

// Len returns the amount of values in the field.
func (f Field) Len() int { return len(f.Values) }

// Range returns the minimum and maximum values of the field.
// It returns 0, 0 for an empty field.
func (f Field) Range() (min, max float64) {
	if len(f.Values) == 0 {
		return 0, 0
	}
	return floats.Min(f.Values), floats.Max(f.Values)
}

// CheckField returns an error wrapping ErrDimensionMismatch if f
// can not be bound to m.
func (m *Mesh) CheckField(f Field) error {
	if f.Len() != m.VertexCount() {
		return fmt.Errorf("field %q has %d values, mesh has %d vertices: %w", f.Name, f.Len(), m.VertexCount(), ErrDimensionMismatch)
	}
	return nil
}

// Evaluator is implemented by scalar functions of space such as signed distance
// functions.
type Evaluator interface {
	Evaluate(p r3.Vec) float64
}

// EvaluatorFunc adapts an ordinary function to the Evaluator interface.
type EvaluatorFunc func(p r3.Vec) float64

// Evaluate calls f(p).
func (f EvaluatorFunc) Evaluate(p r3.Vec) float64 { return f(p) }

// Sample evaluates e at every mesh vertex and returns the resulting field.
func Sample(m *Mesh, name string, e Evaluator) Field {
	values := make([]float64, len(m.Positions))
	for i, p := range m.Positions {
		values[i] = e.Evaluate(p)
	}
	return Field{Name: name, Values: values}
}
