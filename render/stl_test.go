package render_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/isothresh/internal/d3"
	"github.com/soypat/isothresh/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// tetraSurface is the closed surface of a tetrahedron with outward normals.
var tetraSurface = []render.Triangle{
	{{}, {Y: 1}, {X: 1}},
	{{}, {X: 1}, {Z: 1}},
	{{}, {Z: 1}, {Y: 1}},
	{{X: 1}, {Y: 1}, {Z: 1}},
}

func TestSTLCreateWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tetra.stl")
	err := render.CreateSTL(path, tetraSurface)
	if err != nil {
		t.Fatal(err)
	}
	bfile, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	err = render.WriteSTL(&b, tetraSurface)
	if err != nil {
		t.Fatal(err)
	}
	if b.Len() != 84+50*len(tetraSurface) {
		t.Fatalf("unexpected STL length %d", b.Len())
	}
	if b.String() != string(bfile) {
		t.Fatal("WriteSTL and CreateSTL output mismatch")
	}
	got, err := render.ReadSTL(&b)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(tetraSurface) {
		t.Fatalf("read %d triangles, want %d", len(got), len(tetraSurface))
	}
	for i := range got {
		for j := range got[i] {
			if !d3.EqualWithin(got[i][j], tetraSurface[i][j], 1e-7) {
				t.Errorf("triangle %d vertex %d: got %v, want %v", i, j, got[i][j], tetraSurface[i][j])
			}
		}
	}
}

func TestSTLEmpty(t *testing.T) {
	var b bytes.Buffer
	if err := render.WriteSTL(&b, nil); err != nil {
		t.Fatal(err)
	}
	if b.Len() != 84 {
		t.Fatalf("empty STL has length %d", b.Len())
	}
	got, err := render.ReadSTL(&b)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatal("expected no triangles")
	}
}

func TestSTLDegenerate(t *testing.T) {
	// Isosurfaces may contain zero area triangles where the field equals the
	// isovalue at a vertex. They must survive a round trip.
	model := []render.Triangle{{{X: 1}, {X: 1}, {Y: 1}}}
	var b bytes.Buffer
	if err := render.WriteSTL(&b, model); err != nil {
		t.Fatal(err)
	}
	got, err := render.ReadSTL(&b)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || !got[0].Degenerate(0) {
		t.Fatalf("degenerate triangle not preserved: %v", got)
	}
}

func TestSTLReadErrors(t *testing.T) {
	var b bytes.Buffer
	if err := render.WriteSTL(&b, tetraSurface); err != nil {
		t.Fatal(err)
	}
	data := b.Bytes()
	_, err := render.ReadSTL(bytes.NewReader(data[:60]))
	if err == nil {
		t.Error("expected error for truncated header")
	}
	_, err = render.ReadSTL(bytes.NewReader(data[:84+70]))
	if err == nil {
		t.Error("expected error for truncated triangle")
	}

	// Flip the first triangle's stored normal.
	flipped := bytes.Clone(data)
	for i := 0; i < 3; i++ {
		off := 84 + 4*i
		f := math.Float32frombits(binary.LittleEndian.Uint32(flipped[off:]))
		binary.LittleEndian.PutUint32(flipped[off:], math.Float32bits(-f))
	}
	got, err := render.ReadSTL(bytes.NewReader(flipped))
	if err == nil {
		t.Error("expected normal mismatch error")
	}
	if len(got) != len(tetraSurface) {
		t.Error("triangles should be returned alongside normal mismatch")
	}

	// NaN vertex.
	nan := bytes.Clone(data)
	binary.LittleEndian.PutUint32(nan[84+12:], math.Float32bits(float32(math.NaN())))
	_, err = render.ReadSTL(bytes.NewReader(nan))
	if err == nil {
		t.Error("expected error for NaN vertex")
	}
}

func TestTriangle(t *testing.T) {
	tri := render.Triangle{{}, {X: 2}, {Y: 2}}
	if n := tri.Normal(); n != (r3.Vec{Z: 1}) {
		t.Errorf("normal %v", n)
	}
	if a := tri.Area(); a != 2 {
		t.Errorf("area %v", a)
	}
	if tri.Degenerate(1e-12) {
		t.Error("triangle is not degenerate")
	}
	bb := render.Bounds(tetraSurface)
	if bb.Min != (r3.Vec{}) || bb.Max != (r3.Vec{X: 1, Y: 1, Z: 1}) {
		t.Errorf("bounds %v", bb)
	}
}
