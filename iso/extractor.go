package iso

import (
	"errors"
	"math/bits"
	"slices"

	"github.com/soypat/isothresh/internal/d3"
	"github.com/soypat/isothresh/tetra"
	"gonum.org/v1/gonum/spatial/r3"
)

// EqualIsBelow documents the classification policy for vertices whose value
// equals the isovalue exactly: they are classified as below the isovalue.
// A vertex is above only when its value is strictly greater than the isovalue.
// This keeps classification binary so no tetrahedron emits geometry twice.
const EqualIsBelow = true

// Config configures an Extractor. It is fixed at construction.
type Config struct {
	// Dynamic selects full recomputation on every call. Suited to fields that
	// change every frame. When false the extractor reuses the index buffer
	// and vertex layout of the previous surface if the set of cut edges
	// did not change and only rewrites vertex positions.
	Dynamic bool
}

// Stats counts how surfaces were produced by an Extractor.
type Stats struct {
	// Full is the amount of complete classification and edge deduplication passes.
	Full int
	// Reused is the amount of calls that only rewrote vertex positions.
	Reused int
}

// Extractor computes isosurfaces of a scalar field over a tetrahedral mesh.
// It borrows the mesh, which must not be modified during the extractor's lifetime.
// Extractor is not safe for concurrent use.
type Extractor struct {
	mesh    *tetra.Mesh
	field   tetra.Field
	bound   bool
	dynamic bool
	iso     float64
	surf    *Mesh
	stats   Stats

	// cuts are the contributing tetrahedra of the last classification.
	cuts []cut
	// Retained between calls when not dynamic.
	cached  bool
	pattern []cut
	edges   [][2]int
	edgeIdx map[[2]int]int
}

// cut is a tetrahedron with vertices on both sides of the isovalue.
type cut struct {
	tet int
	// above has bit n set if the tetrahedron's nth vertex is above the isovalue.
	above uint8
}

// NewExtractor returns an Extractor over mesh. The topology is validated
// eagerly and an error wrapping tetra.ErrInvalidTopology is returned if a
// tetrahedron references a non existing vertex.
func NewExtractor(mesh *tetra.Mesh, cfg Config) (*Extractor, error) {
	if mesh == nil {
		return nil, errors.New("nil mesh")
	}
	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	return &Extractor{
		mesh:    mesh,
		dynamic: cfg.Dynamic,
		surf:    &Mesh{},
	}, nil
}

// UpdateInput binds a new scalar field to the extractor without recomputing
// the surface. The next call to ComputeIsoSurface uses the new values.
// An error wrapping tetra.ErrDimensionMismatch is returned if the field length
// does not match the vertex count, in which case the previous field stays bound.
func (e *Extractor) UpdateInput(f tetra.Field) error {
	if err := e.mesh.CheckField(f); err != nil {
		return err
	}
	e.field = f
	e.bound = true
	return nil
}

// Field returns the currently bound field.
func (e *Extractor) Field() tetra.Field { return e.field }

// Mesh returns the last successfully computed surface. The returned mesh must
// be treated as read-only. When the extractor is not dynamic the same Mesh is
// updated in place by subsequent calls that reuse the vertex layout.
func (e *Extractor) Mesh() *Mesh { return e.surf }

// Isovalue returns the isovalue of the last successful extraction.
func (e *Extractor) Isovalue() float64 { return e.iso }

// Dynamic returns true if the extractor recomputes from scratch on every call.
func (e *Extractor) Dynamic() bool { return e.dynamic }

// Stats returns extraction counters.
func (e *Extractor) Stats() Stats { return e.stats }

// ComputeIsoSurface extracts the surface where the linearly interpolated field
// equals isovalue. On error the previously computed surface is left intact.
// Triangles are wound so their normals point towards increasing field values.
func (e *Extractor) ComputeIsoSurface(isovalue float64) (*Mesh, error) {
	if !e.bound {
		return nil, ErrNoField
	}
	if err := e.mesh.CheckField(e.field); err != nil {
		return nil, err
	}
	e.cuts = e.classify(e.cuts[:0], isovalue)
	if !e.dynamic && e.cached && slices.Equal(e.cuts, e.pattern) {
		if e.rewrite(isovalue) {
			e.iso = isovalue
			e.stats.Reused++
			return e.surf, nil
		}
	}
	surf, edges, edgeIdx := e.build(isovalue)
	e.surf = surf
	e.iso = isovalue
	e.stats.Full++
	if !e.dynamic {
		e.pattern = append(e.pattern[:0], e.cuts...)
		e.edges = edges
		e.edgeIdx = edgeIdx
		e.cached = true
	}
	return e.surf, nil
}

// classify appends the tetrahedra which straddle the isovalue to dst.
func (e *Extractor) classify(dst []cut, isovalue float64) []cut {
	values := e.field.Values
	for i, tet := range e.mesh.Tetrahedra {
		var above uint8
		for n, v := range tet {
			// Equal to isovalue is below, see EqualIsBelow.
			if values[v] > isovalue {
				above |= 1 << n
			}
		}
		if above != 0 && above != 0b1111 {
			dst = append(dst, cut{tet: i, above: above})
		}
	}
	return dst
}

// rewrite updates vertex positions in place over the cached cut edges.
func (e *Extractor) rewrite(isovalue float64) bool {
	verts := e.surf.Vertices
	if len(verts) != len(e.edges) {
		return false // Layout changed under us, rebuild.
	}
	for i, key := range e.edges {
		p, ok := e.crossing(key, isovalue)
		if !ok {
			return false
		}
		verts[i] = p
	}
	e.surf.Field = e.field.Name
	return true
}

// build performs a full extraction pass over e.cuts, deduplicating vertices
// by edge key.
func (e *Extractor) build(isovalue float64) (surf *Mesh, edges [][2]int, edgeIdx map[[2]int]int) {
	edgeIdx = e.edgeIdx
	if e.dynamic || edgeIdx == nil {
		edgeIdx = make(map[[2]int]int, len(e.edges))
	} else {
		clear(edgeIdx)
	}
	surf = &Mesh{
		Vertices:  make([]r3.Vec, 0, len(e.edges)),
		Triangles: make([][3]int, 0, 2*len(e.cuts)),
		Field:     e.field.Name,
	}
	values := e.field.Values
	for _, c := range e.cuts {
		tet := e.mesh.Tetrahedra[c.tet]
		tc := &cases[c.above]
		var keys [4][2]int
		degenerate := false
		for i, le := range tc.edges[:tc.n] {
			keys[i] = edgeKey(tet[le[0]], tet[le[1]])
			// Straddling edges never have equal values but guard anyway,
			// a zero difference can not be interpolated.
			degenerate = degenerate || values[keys[i][0]] == values[keys[i][1]]
		}
		if degenerate {
			continue
		}
		var poly [4]int
		for i, key := range keys[:tc.n] {
			idx, ok := edgeIdx[key]
			if !ok {
				p, _ := e.crossing(key, isovalue)
				idx = len(surf.Vertices)
				surf.Vertices = append(surf.Vertices, p)
				edges = append(edges, key)
				edgeIdx[key] = idx
			}
			poly[i] = idx
		}
		if e.flipped(tet, tc, c.above) {
			reverse(poly[:tc.n])
		}
		surf.Triangles = append(surf.Triangles, [3]int{poly[0], poly[1], poly[2]})
		if tc.n == 4 {
			surf.Triangles = append(surf.Triangles, [3]int{poly[0], poly[2], poly[3]})
		}
	}
	return surf, edges, edgeIdx
}

// crossing returns the point on edge where the field equals isovalue.
// Interpolation always starts at the lower vertex index so shared edges
// produce identical results regardless of the tetrahedron visiting them.
func (e *Extractor) crossing(edge [2]int, isovalue float64) (r3.Vec, bool) {
	va := e.field.Values[edge[0]]
	vb := e.field.Values[edge[1]]
	if va == vb {
		return r3.Vec{}, false
	}
	t := (isovalue - va) / (vb - va)
	return d3.Lerp(e.mesh.Positions[edge[0]], e.mesh.Positions[edge[1]], t), true
}

// flipped returns true if the polygon of case tc, in table order, has its
// normal pointing away from the tetrahedron's above vertices. The decision
// depends only on the mesh and the sign mask so cached index buffers stay
// valid across updates: it is taken on the section through the cut edges'
// midpoints, which never collapses even when field crossings land on
// tetrahedron vertices. The field is linear inside a tetrahedron so
// the direction from the below vertices' centroid to the above vertices'
// centroid has a positive component along the field gradient.
func (e *Extractor) flipped(tet [4]int, tc *tetCase, above uint8) bool {
	pos := e.mesh.Positions
	var mid [4]r3.Vec
	for i, le := range tc.edges[:tc.n] {
		mid[i] = d3.Lerp(pos[tet[le[0]]], pos[tet[le[1]]], 0.5)
	}
	var n r3.Vec
	for i := 0; i < tc.n; i++ {
		n = r3.Add(n, r3.Cross(mid[i], mid[(i+1)%tc.n]))
	}
	var ubuf, dbuf [3]r3.Vec
	up, down := d3.Set(ubuf[:0]), d3.Set(dbuf[:0])
	for i, v := range tet {
		if above&(1<<i) != 0 {
			up = append(up, pos[v])
		} else {
			down = append(down, pos[v])
		}
	}
	dir := r3.Sub(up.Centroid(), down.Centroid())
	return r3.Dot(n, dir) < 0
}

func edgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// tetCase lists the cut edges of a tetrahedron as local vertex pairs in
// polygon order for one above/below sign configuration.
type tetCase struct {
	n     int // 3 for a triangle, 4 for a quad, 0 if no surface.
	edges [4][2]int
}

// cases is indexed by the above bitmask. Of the 16 configurations the
// all-above and all-below ones produce no surface. The remaining 14 reduce
// to a single vertex separated from the other three (triangle) or two
// vertices separated from the other two (quad).
var cases = func() (c [16]tetCase) {
	for mask := 1; mask < 15; mask++ {
		var above, below []int
		for n := 0; n < 4; n++ {
			if mask&(1<<n) != 0 {
				above = append(above, n)
			} else {
				below = append(below, n)
			}
		}
		switch bits.OnesCount8(uint8(mask)) {
		case 1, 3:
			lone, others := above, below
			if len(above) == 3 {
				lone, others = below, above
			}
			c[mask].n = 3
			for i, o := range others {
				c[mask].edges[i] = [2]int{lone[0], o}
			}
		case 2:
			a, b := above[0], above[1]
			p, q := below[0], below[1]
			// Consecutive edges share a vertex so the quad is a cycle.
			c[mask].n = 4
			c[mask].edges = [4][2]int{{a, p}, {a, q}, {b, q}, {b, p}}
		}
	}
	return c
}()
