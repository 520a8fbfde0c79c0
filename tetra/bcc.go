package tetra

import (
	"errors"
	"math"

	"github.com/soypat/isothresh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// BCC node indices. Follow the same ordering as d3.Box.Vertices.
const (
	i000 = iota
	ix00
	i0y0
	ixy0
	i00z
	ix0z
	i0yz
	ixyz
	nCorners
)

// BCCMesh constructs a body centered cubic lattice over the box b
// and tetrahedralizes it. The result is an isotropic mesh where every
// tetrahedron is formed by two adjacent cell centers and an edge of the
// face they share. Faces on the boundary of b are not meshed so only the
// hull of the cell centers, b shrunk by resolution/2, is guaranteed covered.
// Inspired by Tetrahedral Mesh Generation for Deformable Bodies
// Molino, Bridson, Fedkiw.
func BCCMesh(b r3.Box, resolution float64) (*Mesh, error) {
	if resolution <= 0 || math.IsNaN(resolution) {
		return nil, errors.New("resolution must be positive")
	}
	sz := d3.Box(b).Size()
	div := [3]int{
		int(math.Ceil(sz.X / resolution)),
		int(math.Ceil(sz.Y / resolution)),
		int(math.Ceil(sz.Z / resolution)),
	}
	if div[0] < 2 || div[1] < 2 || div[2] < 2 {
		return nil, errors.New("resolution too low: need at least 2 cells per axis")
	}
	lat := bccLattice{div: div, origin: b.Min, res: resolution}
	m := &Mesh{
		Positions:  make([]r3.Vec, 0, lat.nodeCount()),
		Tetrahedra: make([][4]int, 0, 12*div[0]*div[1]*div[2]),
	}
	for i := 0; i <= div[0]; i++ {
		for j := 0; j <= div[1]; j++ {
			for k := 0; k <= div[2]; k++ {
				m.Positions = append(m.Positions, lat.pos(i, j, k, 0))
			}
		}
	}
	lat.foreach(func(i, j, k int) {
		m.Positions = append(m.Positions, lat.pos(i, j, k, 0.5))
	})
	lat.foreach(func(i, j, k int) {
		m.Tetrahedra = append(m.Tetrahedra, lat.tetras(i, j, k)...)
	})
	return m, nil
}

type bccLattice struct {
	div    [3]int
	origin r3.Vec
	res    float64
}

func (l *bccLattice) nodeCount() int {
	return (l.div[0]+1)*(l.div[1]+1)*(l.div[2]+1) + l.div[0]*l.div[1]*l.div[2]
}

func (l *bccLattice) pos(i, j, k int, offset float64) r3.Vec {
	return r3.Vec{
		X: (float64(i)+offset)*l.res + l.origin.X,
		Y: (float64(j)+offset)*l.res + l.origin.Y,
		Z: (float64(k)+offset)*l.res + l.origin.Z,
	}
}

// corner returns the index of lattice corner (i,j,k).
func (l *bccLattice) corner(i, j, k int) int {
	return i*(l.div[1]+1)*(l.div[2]+1) + j*(l.div[2]+1) + k
}

// center returns the index of the center node of cell (i,j,k).
func (l *bccLattice) center(i, j, k int) int {
	ncorner := (l.div[0] + 1) * (l.div[1] + 1) * (l.div[2] + 1)
	return ncorner + i*l.div[1]*l.div[2] + j*l.div[2] + k
}

func (l *bccLattice) cellCorners(i, j, k int) (c [nCorners]int) {
	for n := range c {
		c[n] = l.corner(i+n&1, j+(n>>1)&1, k+(n>>2)&1)
	}
	return c
}

func (l *bccLattice) foreach(f func(i, j, k int)) {
	for i := 0; i < l.div[0]; i++ {
		for j := 0; j < l.div[1]; j++ {
			for k := 0; k < l.div[2]; k++ {
				f(i, j, k)
			}
		}
	}
}

// tetras meshes the octahedra formed between cell (i,j,k) and its
// neighbors on the minor sides.
func (l *bccLattice) tetras(i, j, k int) (tetras [][4]int) {
	c := l.cellCorners(i, j, k)
	nctr := l.center(i, j, k)
	// Start with nodes in z direction since nodes are indexed with z as minor
	// dimension so zm is likely close in memory.
	if k > 0 {
		zctr := l.center(i, j, k-1)
		tetras = append(tetras,
			[4]int{nctr, c[i000], c[ix00], zctr},
			[4]int{nctr, c[ix00], c[ixy0], zctr},
			[4]int{nctr, c[ixy0], c[i0y0], zctr},
			[4]int{nctr, c[i0y0], c[i000], zctr},
		)
	}
	if j > 0 {
		yctr := l.center(i, j-1, k)
		tetras = append(tetras,
			[4]int{nctr, c[ix00], c[i000], yctr},
			[4]int{nctr, c[ix0z], c[ix00], yctr},
			[4]int{nctr, c[i00z], c[ix0z], yctr},
			[4]int{nctr, c[i000], c[i00z], yctr},
		)
	}
	if i > 0 {
		xctr := l.center(i-1, j, k)
		tetras = append(tetras,
			[4]int{nctr, c[i000], c[i0y0], xctr},
			[4]int{nctr, c[i00z], c[i000], xctr},
			[4]int{nctr, c[i0yz], c[i00z], xctr},
			[4]int{nctr, c[i0y0], c[i0yz], xctr},
		)
	}
	return tetras
}

// kuhn lists the 6 tetrahedra of the Kuhn (Freudenthal) subdivision of a
// unit cube as corner indices following d3.Box.Vertices ordering. Each
// tetrahedron walks from corner 000 to corner xyz along one axis permutation,
// which makes the subdivision conforming between neighboring cubes.
var kuhn = [6][4]int{
	{i000, ix00, ixy0, ixyz},
	{i000, ix00, ix0z, ixyz},
	{i000, i0y0, ixy0, ixyz},
	{i000, i0y0, i0yz, ixyz},
	{i000, i00z, ix0z, ixyz},
	{i000, i00z, i0yz, ixyz},
}

// CubeMesh divides the box b into nx*ny*nz cubes and each cube into 6
// tetrahedra. Contrary to BCCMesh the whole box is meshed.
func CubeMesh(b r3.Box, nx, ny, nz int) (*Mesh, error) {
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, errors.New("need at least one cell per axis")
	}
	size := d3.Box(b).Size()
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, errors.New("box must have positive size")
	}
	step := r3.Vec{X: size.X / float64(nx), Y: size.Y / float64(ny), Z: size.Z / float64(nz)}
	lat := bccLattice{div: [3]int{nx, ny, nz}, origin: b.Min}
	m := &Mesh{
		Positions:  make([]r3.Vec, 0, (nx+1)*(ny+1)*(nz+1)),
		Tetrahedra: make([][4]int, 0, 6*nx*ny*nz),
	}
	for i := 0; i <= nx; i++ {
		for j := 0; j <= ny; j++ {
			for k := 0; k <= nz; k++ {
				m.Positions = append(m.Positions, r3.Vec{
					X: b.Min.X + float64(i)*step.X,
					Y: b.Min.Y + float64(j)*step.Y,
					Z: b.Min.Z + float64(k)*step.Z,
				})
			}
		}
	}
	lat.foreach(func(i, j, k int) {
		c := lat.cellCorners(i, j, k)
		for _, t := range kuhn {
			m.Tetrahedra = append(m.Tetrahedra, [4]int{c[t[0]], c[t[1]], c[t[2]], c[t[3]]})
		}
	})
	return m, nil
}
