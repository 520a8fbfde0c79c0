package threshold

import "gonum.org/v1/gonum/spatial/r3"

// Event is a change notification emitted by a Controller. Events carry
// no payload, listeners read the current state back from the Controller.
type Event uint8

const (
	// GeometryChanged is emitted after one or both threshold surfaces were
	// recomputed, or forwarded from the host in passthrough mode.
	GeometryChanged Event = iota + 1
	// MaskChanged is emitted when the mask predicate changed: a bound or the
	// inclusivity. Shader consumers update uniforms or regenerate source.
	MaskChanged
)

func (e Event) String() string {
	switch e {
	case GeometryChanged:
		return "geometry-changed"
	case MaskChanged:
		return "mask-changed"
	}
	return "unknown-event"
}

// Host is the mesh object a threshold effect is attached to.
type Host interface {
	// Vertices returns the vertex positions of the host mesh.
	Vertices() []r3.Vec
	// TetrahedronIndices returns the tetrahedral decomposition of the host
	// mesh or nil if it has none, in which case no surfaces are extracted.
	TetrahedronIndices() [][4]int
	// OnGeometryChange registers fn to be called when the host geometry changes.
	OnGeometryChange(fn func()) (unsubscribe func())
}

// Source is a named scalar array sampled on the host vertices whose
// array may be replaced.
type Source interface {
	Name() string
	Array() []float64
	// OnArrayChange registers fn to be called after the array is replaced.
	OnArrayChange(fn func()) (unsubscribe func())
}

// signal is a list of listeners. Unsubscribing is safe during notification.
type signal[T any] struct {
	nextID    int
	listeners []listener[T]
}

type listener[T any] struct {
	id int
	fn func(T)
}

func (s *signal[T]) subscribe(fn func(T)) (unsubscribe func()) {
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener[T]{id: id, fn: fn})
	return func() {
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *signal[T]) emit(v T) {
	// Iterate over a snapshot so listeners may unsubscribe.
	for _, l := range s.listeners {
		l.fn(v)
	}
}

func (s *signal[T]) len() int { return len(s.listeners) }
