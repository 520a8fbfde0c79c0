// Package render writes triangle surfaces to STL files and PNG previews.
package render

import (
	"github.com/soypat/isothresh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle is a triangle in 3D space. Vertices are in counter clockwise
// order when viewed from the side the normal points towards.
type Triangle [3]r3.Vec

// Normal returns the unit normal of the triangle. Returns the zero
// vector for degenerate triangles.
func (t Triangle) Normal() r3.Vec {
	e1 := r3.Sub(t[1], t[0])
	e2 := r3.Sub(t[2], t[0])
	n := r3.Cross(e1, e2)
	norm := r3.Norm(n)
	if norm == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/norm, n)
}

// Area returns the area of the triangle.
func (t Triangle) Area() float64 {
	return 0.5 * r3.Norm(r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0])))
}

// Degenerate returns true if two vertices of the triangle are equal within tol.
func (t Triangle) Degenerate(tol float64) bool {
	return d3.EqualWithin(t[0], t[1], tol) ||
		d3.EqualWithin(t[1], t[2], tol) ||
		d3.EqualWithin(t[2], t[0], tol)
}

// Bounds returns the bounding box of a set of triangles.
func Bounds(model []Triangle) r3.Box {
	bb := d3.EmptyBox()
	for _, t := range model {
		for _, v := range t {
			bb = bb.Include(v)
		}
	}
	return r3.Box(bb)
}
