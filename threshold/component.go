package threshold

import (
	"github.com/soypat/isothresh/tetra"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	_ Source = (*Component)(nil)
	_ Host   = (*MeshHost)(nil)
)

// Component is a named scalar array that notifies listeners when its array is
// replaced. It implements Source.
type Component struct {
	name    string
	array   []float64
	changed signal[struct{}]
}

// NewComponent returns a Component holding array.
func NewComponent(name string, array []float64) *Component {
	return &Component{name: name, array: array}
}

// NewFieldComponent returns a Component holding the field's values.
func NewFieldComponent(f tetra.Field) *Component {
	return NewComponent(f.Name, f.Values)
}

// Name returns the component name.
func (c *Component) Name() string { return c.name }

// Array returns the current array. It must not be modified.
func (c *Component) Array() []float64 { return c.array }

// SetArray replaces the array and notifies listeners.
func (c *Component) SetArray(array []float64) {
	c.array = array
	c.changed.emit(struct{}{})
}

// OnArrayChange registers fn to be called after SetArray.
func (c *Component) OnArrayChange(fn func()) (unsubscribe func()) {
	return c.changed.subscribe(func(struct{}) { fn() })
}

// Subscribers returns the amount of live array change subscriptions.
func (c *Component) Subscribers() int { return c.changed.len() }

// MeshHost adapts a tetra.Mesh to the Host interface. A nil Tetrahedra
// slice in the mesh makes the host a surface mesh without tetrahedra.
type MeshHost struct {
	Mesh    *tetra.Mesh
	changed signal[struct{}]
}

// Vertices returns the mesh positions.
func (h *MeshHost) Vertices() []r3.Vec { return h.Mesh.Positions }

// TetrahedronIndices returns the mesh tetrahedra.
func (h *MeshHost) TetrahedronIndices() [][4]int { return h.Mesh.Tetrahedra }

// OnGeometryChange registers fn to be called on GeometryChange.
func (h *MeshHost) OnGeometryChange(fn func()) (unsubscribe func()) {
	return h.changed.subscribe(func(struct{}) { fn() })
}

// GeometryChange notifies listeners that the host geometry changed.
func (h *MeshHost) GeometryChange() { h.changed.emit(struct{}{}) }

// Subscribers returns the amount of live geometry change subscriptions.
func (h *MeshHost) Subscribers() int { return h.changed.len() }
