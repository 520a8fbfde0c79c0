// Package iso extracts isosurfaces from scalar fields sampled on tetrahedral
// meshes using marching tetrahedra.
package iso

import (
	"errors"
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/isothresh/internal/d3"
	"github.com/soypat/isothresh/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNoField is returned when extracting a surface before a field was bound.
var ErrNoField = errors.New("no scalar field bound to extractor")

// Mesh is an indexed triangle mesh. Every triangle references
// vertices by their index in Vertices.
type Mesh struct {
	Vertices  []r3.Vec
	Triangles [][3]int
	// Field is the name of the scalar field the surface was extracted from.
	Field string
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Vertices) }

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.Triangles) }

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool { return len(m.Triangles) == 0 }

// Bounds returns the bounding box of the mesh vertices.
func (m *Mesh) Bounds() r3.Box {
	return r3.Box(d3.Set(m.Vertices).Bounds())
}

// Triangle returns the ith triangle's vertex positions.
func (m *Mesh) Triangle(i int) render.Triangle {
	t := m.Triangles[i]
	return render.Triangle{m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]}
}

// AppendTriangles expands the indexed mesh into dst and returns the result.
// Use it to feed the mesh to render.WriteSTL and friends.
func (m *Mesh) AppendTriangles(dst []render.Triangle) []render.Triangle {
	for i := range m.Triangles {
		dst = append(dst, m.Triangle(i))
	}
	return dst
}

// AppendTriangles32 expands the mesh into single precision triangles
// as used by GPU pipelines.
func (m *Mesh) AppendTriangles32(dst []ms3.Triangle) []ms3.Triangle {
	for _, t := range m.Triangles {
		dst = append(dst, ms3.Triangle{
			vec32(m.Vertices[t[0]]),
			vec32(m.Vertices[t[1]]),
			vec32(m.Vertices[t[2]]),
		})
	}
	return dst
}

// Buffers returns flat single precision vertex positions (x,y,z per vertex)
// and triangle indices (3 per triangle) ready for GPU upload.
// An error is returned if a position is not representable in float32.
func (m *Mesh) Buffers() (positions []float32, indices []uint32, err error) {
	if int64(len(m.Vertices)) > math.MaxUint32 {
		return nil, nil, errors.New("too many vertices for 32 bit indices")
	}
	positions = make([]float32, 0, 3*len(m.Vertices))
	for i, v := range m.Vertices {
		v32 := vec32(v)
		if bad32(v32) {
			return nil, nil, fmt.Errorf("vertex %d %v not representable in float32", i, v)
		}
		positions = append(positions, v32.X, v32.Y, v32.Z)
	}
	indices = make([]uint32, 0, 3*len(m.Triangles))
	for _, t := range m.Triangles {
		indices = append(indices, uint32(t[0]), uint32(t[1]), uint32(t[2]))
	}
	return positions, indices, nil
}

func vec32(v r3.Vec) ms3.Vec {
	return ms3.Vec{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

func bad32(v ms3.Vec) bool {
	return math32.IsNaN(v.X) || math32.IsInf(v.X, 0) ||
		math32.IsNaN(v.Y) || math32.IsInf(v.Y, 0) ||
		math32.IsNaN(v.Z) || math32.IsInf(v.Z, 0)
}
