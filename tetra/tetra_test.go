package tetra

import (
	"math"
	"testing"

	"github.com/soypat/isothresh/internal/d3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

var unitBox = r3.Box{Min: d3.Elem(-1), Max: d3.Elem(1)}

func TestValidate(t *testing.T) {
	m := &Mesh{
		Positions:  []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}},
		Tetrahedra: [][4]int{{0, 1, 2, 3}},
	}
	require.NoError(t, m.Validate())
	for _, bad := range [][4]int{{0, 1, 2, 4}, {0, -1, 2, 3}} {
		m.Tetrahedra = [][4]int{{0, 1, 2, 3}, bad}
		err := m.Validate()
		assert.ErrorIs(t, err, ErrInvalidTopology)
		assert.Contains(t, err.Error(), "tetrahedron 1")
	}
}

func TestCheckField(t *testing.T) {
	m := &Mesh{Positions: make([]r3.Vec, 3)}
	assert.NoError(t, m.CheckField(Field{Values: []float64{1, 2, 3}}))
	err := m.CheckField(Field{Name: "temp", Values: []float64{1, 2}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Contains(t, err.Error(), `"temp"`)
}

func TestFieldRange(t *testing.T) {
	lo, hi := Field{}.Range()
	assert.Zero(t, lo)
	assert.Zero(t, hi)
	lo, hi = Field{Values: []float64{3, -2, 5, 0}}.Range()
	assert.Equal(t, -2.0, lo)
	assert.Equal(t, 5.0, hi)
}

func TestCubeMesh(t *testing.T) {
	const nx, ny, nz = 3, 4, 5
	m, err := CubeMesh(unitBox, nx, ny, nz)
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	assert.Equal(t, (nx+1)*(ny+1)*(nz+1), m.VertexCount())
	assert.Len(t, m.Tetrahedra, 6*nx*ny*nz)
	assert.True(t, d3.Box(m.Bounds()).Equals(d3.Box(unitBox), 1e-12))
	assertPositiveVolume(t, m)
	// The tetrahedra fill the box exactly.
	assert.InDelta(t, 8, totalVolume(m), 1e-9)
	assertConforming(t, m)

	_, err = CubeMesh(unitBox, 0, 1, 1)
	assert.Error(t, err)
	_, err = CubeMesh(r3.Box{Min: d3.Elem(1), Max: d3.Elem(1)}, 1, 1, 1)
	assert.Error(t, err)
}

func TestBCCMesh(t *testing.T) {
	const res = 0.5
	m, err := BCCMesh(unitBox, res)
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	const div = 4
	assert.Equal(t, (div+1)*(div+1)*(div+1)+div*div*div, m.VertexCount())
	// Every interior cell face is split into 4 tetrahedra.
	assert.Len(t, m.Tetrahedra, 4*3*div*div*(div-1))
	assertPositiveVolume(t, m)
	// Each cell loses the pyramids over its faces on the box boundary.
	const boundaryFaces = 6 * div * div
	assert.InDelta(t, 8-boundaryFaces*res*res*res/6, totalVolume(m), 1e-9)
	assertConforming(t, m)

	_, err = BCCMesh(unitBox, 0)
	assert.Error(t, err)
	_, err = BCCMesh(unitBox, 2.5)
	assert.Error(t, err)
}

func TestSample(t *testing.T) {
	m, err := CubeMesh(unitBox, 2, 2, 2)
	require.NoError(t, err)
	f := Sample(m, "x", EvaluatorFunc(func(p r3.Vec) float64 { return p.X }))
	assert.Equal(t, "x", f.Name)
	require.Equal(t, m.VertexCount(), f.Len())
	for i, p := range m.Positions {
		assert.Equal(t, p.X, f.Values[i])
	}
	require.NoError(t, m.CheckField(f))
}

func tetVolume(m *Mesh, tet [4]int) float64 {
	a := m.Positions[tet[0]]
	b := r3.Sub(m.Positions[tet[1]], a)
	c := r3.Sub(m.Positions[tet[2]], a)
	d := r3.Sub(m.Positions[tet[3]], a)
	return r3.Dot(b, r3.Cross(c, d)) / 6
}

func assertPositiveVolume(t *testing.T, m *Mesh) {
	t.Helper()
	for i, tet := range m.Tetrahedra {
		if v := math.Abs(tetVolume(m, tet)); v < 1e-12 {
			t.Fatalf("tetrahedron %d %v is degenerate", i, tet)
		}
	}
}

func totalVolume(m *Mesh) (vol float64) {
	for _, tet := range m.Tetrahedra {
		vol += math.Abs(tetVolume(m, tet))
	}
	return vol
}

// assertConforming checks every triangular face is shared by at most two tetrahedra.
func assertConforming(t *testing.T, m *Mesh) {
	t.Helper()
	faces := make(map[[3]int]int)
	for _, tet := range m.Tetrahedra {
		for skip := 0; skip < 4; skip++ {
			var f [3]int
			n := 0
			for i, v := range tet {
				if i != skip {
					f[n] = v
					n++
				}
			}
			sort3(&f)
			faces[f]++
		}
	}
	for f, n := range faces {
		if n > 2 {
			t.Fatalf("face %v shared by %d tetrahedra", f, n)
		}
	}
}

func sort3(f *[3]int) {
	if f[0] > f[1] {
		f[0], f[1] = f[1], f[0]
	}
	if f[1] > f[2] {
		f[1], f[2] = f[2], f[1]
	}
	if f[0] > f[1] {
		f[0], f[1] = f[1], f[0]
	}
}

func TestCornerOrdering(t *testing.T) {
	b := r3.Box{Min: r3.Vec{X: 1, Y: 2, Z: 3}, Max: r3.Vec{X: 2, Y: 4, Z: 6}}
	m, err := CubeMesh(b, 1, 1, 1)
	require.NoError(t, err)
	lat := bccLattice{div: [3]int{1, 1, 1}}
	corners := lat.cellCorners(0, 0, 0)
	want := d3.Box(b).Vertices()
	for n, c := range corners {
		assert.Equal(t, want[n], m.Positions[c], "corner %d", n)
	}
}
