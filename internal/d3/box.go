package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Box is a 3d bounding box.
type Box r3.Box

// EmptyBox returns a box that contains nothing. Including a point
// in it yields a zero size box around that point.
func EmptyBox() Box {
	return Box{Min: Elem(math.MaxFloat64), Max: Elem(-math.MaxFloat64)}
}

// CenteredBox creates a Box with a given center and size.
// Negative components of size will be interpreted as zero.
func CenteredBox(center, size r3.Vec) Box {
	size = MaxElem(size, r3.Vec{}) // set negative values to zero.
	half := r3.Scale(0.5, size)
	return Box{Min: r3.Sub(center, half), Max: r3.Add(center, half)}
}

// Equals test the equality of 3d boxes.
func (a Box) Equals(b Box, tol float64) bool {
	return EqualWithin(a.Min, b.Min, tol) && EqualWithin(a.Max, b.Max, tol)
}

// Include enlarges a 3d box to include a point.
func (a Box) Include(v r3.Vec) Box {
	return Box{
		Min: MinElem(a.Min, v),
		Max: MaxElem(a.Max, v),
	}
}

// Size returns the size of a 3d box.
func (a Box) Size() r3.Vec {
	return r3.Sub(a.Max, a.Min)
}

// OnBoundary returns true if v lies on one of the box faces within tol.
func (a Box) OnBoundary(v r3.Vec, tol float64) bool {
	return math.Abs(v.X-a.Min.X) <= tol || math.Abs(v.X-a.Max.X) <= tol ||
		math.Abs(v.Y-a.Min.Y) <= tol || math.Abs(v.Y-a.Max.Y) <= tol ||
		math.Abs(v.Z-a.Min.Z) <= tol || math.Abs(v.Z-a.Max.Z) <= tol
}

// Vertices returns the 8 box corners. The ordering follows
// the binary counting of (x,y,z) with x as the least significant bit:
//
//	000, x00, 0y0, xy0, 00z, x0z, 0yz, xyz
func (a Box) Vertices() [8]r3.Vec {
	var v [8]r3.Vec
	for i := range v {
		v[i] = a.Min
		if i&1 != 0 {
			v[i].X = a.Max.X
		}
		if i&2 != 0 {
			v[i].Y = a.Max.Y
		}
		if i&4 != 0 {
			v[i].Z = a.Max.Z
		}
	}
	return v
}
