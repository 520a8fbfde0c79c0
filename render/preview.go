package render

import (
	"errors"
	"image"
	"image/png"
	"io"
	"math"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"gonum.org/v1/gonum/spatial/r3"
)

// View configures the camera used to render previews.
type View struct {
	// what position (point) to look at
	LookAt r3.Vec
	// which way is up (direction)
	Up r3.Vec
	// where the camera/eye located at (point)
	Eye    r3.Vec
	Far    float64
	Near   float64
	Width  int
	Height int
	// Colors of the surfaces and background as hex strings such as "#468966".
	Colors     []string
	Background string
}

// DefaultView is an isometric view of a model fit to a bi-unit cube.
var DefaultView = View{
	Up:         r3.Vec{Z: 1},
	Eye:        r3.Vec{X: 2.4, Y: 2.4, Z: 2.4},
	Near:       1,
	Far:        10,
	Width:      768,
	Height:     432,
	Colors:     []string{"#468966", "#B64926"},
	Background: "#FFF8E3",
}

// WritePNG renders the surfaces with a phong shader and writes
// the result to w as a PNG image. Each surface is drawn with its own color
// from view.Colors, cycling if there are more surfaces than colors.
// All surfaces are fit together in a bi-unit cube centered at the origin.
func WritePNG(w io.Writer, view View, surfaces ...[]Triangle) error {
	img, err := Preview(view, surfaces...)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// Preview renders the surfaces to an image. See WritePNG.
func Preview(view View, surfaces ...[]Triangle) (image.Image, error) {
	const (
		scale = 2  // supersampling
		fovy  = 30 // vertical field of view in degrees
	)
	if view.Width <= 0 || view.Height <= 0 {
		return nil, errors.New("preview dimensions must be positive")
	}
	if len(view.Colors) == 0 {
		view.Colors = DefaultView.Colors
	}
	var all []Triangle
	for _, s := range surfaces {
		all = append(all, s...)
	}
	if len(all) == 0 {
		return nil, errors.New("no triangles to preview")
	}
	// fit all surfaces in a bi-unit cube centered at the origin,
	// keeping their relative placement.
	fit := biUnitTransform(Bounds(all))

	var (
		eye    = fauxgl.V(view.Eye.X, view.Eye.Y, view.Eye.Z)          // camera position
		center = fauxgl.V(view.LookAt.X, view.LookAt.Y, view.LookAt.Z) // view center position
		up     = fauxgl.V(view.Up.X, view.Up.Y, view.Up.Z)             // up vector
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()                  // light direction
	)
	context := fauxgl.NewContext(view.Width*scale, view.Height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor(view.Background))
	aspect := float64(view.Width) / float64(view.Height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, view.Near, view.Far)
	for i, s := range surfaces {
		if len(s) == 0 {
			continue
		}
		mesh := toFauxgl(s)
		mesh.Transform(fit)
		shader := fauxgl.NewPhongShader(matrix, light, eye)
		shader.ObjectColor = fauxgl.HexColor(view.Colors[i%len(view.Colors)])
		context.Shader = shader
		context.DrawMesh(mesh)
	}
	// downsample image for antialiasing
	img := context.Image()
	return resize.Resize(uint(view.Width), uint(view.Height), img, resize.Bilinear), nil
}

func toFauxgl(model []Triangle) *fauxgl.Mesh {
	tris := make([]*fauxgl.Triangle, 0, len(model))
	for _, t := range model {
		if t.Normal() == (r3.Vec{}) {
			continue // fauxgl can not shade degenerate triangles.
		}
		tris = append(tris, fauxgl.NewTriangleForPoints(
			fauxgl.V(t[0].X, t[0].Y, t[0].Z),
			fauxgl.V(t[1].X, t[1].Y, t[1].Z),
			fauxgl.V(t[2].X, t[2].Y, t[2].Z),
		))
	}
	return fauxgl.NewTriangleMesh(tris)
}

// biUnitTransform returns the matrix that fits bb into a bi-unit cube
// centered at the origin.
func biUnitTransform(bb r3.Box) fauxgl.Matrix {
	box := fauxgl.Box{
		Min: fauxgl.V(bb.Min.X, bb.Min.Y, bb.Min.Z),
		Max: fauxgl.V(bb.Max.X, bb.Max.Y, bb.Max.Z),
	}
	target := fauxgl.Box{Min: fauxgl.V(-1, -1, -1), Max: fauxgl.V(1, 1, 1)}
	scale := target.Size().Div(box.Size()).MinComponent()
	if math.IsInf(scale, 0) || math.IsNaN(scale) {
		scale = 1 // Single point model.
	}
	extra := target.Size().Sub(box.Size().MulScalar(scale))
	return fauxgl.Identity().
		Translate(box.Min.Negate()).
		Scale(fauxgl.V(scale, scale, scale)).
		Translate(target.Min.Add(extra.MulScalar(0.5)))
}
