// Package threshold keeps a pair of isosurfaces at the lower and upper bounds
// of a threshold interval consistent with a changing scalar field, and
// provides the mask predicate that selects the region inside the interval.
package threshold

import (
	"errors"
	"io"
	"log/slog"

	"github.com/soypat/isothresh/iso"
	"github.com/soypat/isothresh/tetra"
)

// ErrReentrant is returned when the controller is mutated from within one of
// its own notifications.
var ErrReentrant = errors.New("threshold: re-entrant mutation from notification handler")

// Config is the construction time configuration of a Controller.
type Config struct {
	// Min and Max are the threshold interval bounds.
	Min, Max float64
	// Dynamic selects full surface recomputation on every update. Suited to
	// fields that change every frame.
	Dynamic bool
	// Inclusive selects a closed interval for the mask, open otherwise.
	Inclusive bool
	// Logger receives debug records of recomputations. Nil discards them.
	Logger *slog.Logger
}

// DefaultConfig returns the default threshold configuration: the closed
// interval [0, 1] with non-dynamic surfaces.
func DefaultConfig() Config {
	return Config{Min: 0, Max: 1, Inclusive: true}
}

// State is the observable threshold state.
type State struct {
	Min, Max  float64
	Inclusive bool
	Dynamic   bool
}

// Mode is the topology mode of a Controller, selected once at construction.
type Mode uint8

const (
	// WithTetrahedra controllers extract surfaces at both bounds.
	WithTetrahedra Mode = iota
	// Passthrough controllers have no tetrahedra to extract surfaces from
	// and forward the host's geometry changes.
	Passthrough
)

func (m Mode) String() string {
	if m == Passthrough {
		return "passthrough"
	}
	return "with-tetrahedra"
}

// Controller orchestrates the min and max bound surfaces of a threshold effect.
// It is not safe for concurrent use: all methods and notifications run
// synchronously on the caller's goroutine.
type Controller struct {
	host  Host
	mode  Mode
	state State
	log   *slog.Logger

	mesh *tetra.Mesh
	// lo extracts the surface at state.Min, hi at state.Max.
	lo, hi *iso.Extractor

	src       Source
	unsubSrc  func()
	unsubHost func()
	events    signal[Event]
	busy      bool
	lastErr   error
}

// NewController attaches a threshold to host using src as the thresholded
// scalar array. If the host has tetrahedra both surfaces are computed before
// returning. Otherwise the controller is in Passthrough mode and src may be nil.
func NewController(host Host, src Source, cfg Config) (*Controller, error) {
	if host == nil {
		return nil, errors.New("nil threshold host")
	}
	c := &Controller{
		host: host,
		src:  src,
		log:  cfg.Logger,
		state: State{
			Min:       cfg.Min,
			Max:       cfg.Max,
			Inclusive: cfg.Inclusive,
			Dynamic:   cfg.Dynamic,
		},
	}
	if c.log == nil {
		c.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	tets := host.TetrahedronIndices()
	if tets == nil {
		c.mode = Passthrough
		// There is no geometry specific to the threshold, forward the host's.
		c.unsubHost = host.OnGeometryChange(func() { c.events.emit(GeometryChanged) })
		return c, nil
	}
	if src == nil {
		return nil, errors.New("nil threshold source")
	}
	c.mode = WithTetrahedra
	c.mesh = &tetra.Mesh{Positions: host.Vertices(), Tetrahedra: tets}
	var err error
	ecfg := iso.Config{Dynamic: cfg.Dynamic}
	if c.lo, err = iso.NewExtractor(c.mesh, ecfg); err != nil {
		return nil, err
	}
	if c.hi, err = iso.NewExtractor(c.mesh, ecfg); err != nil {
		return nil, err
	}
	field := fieldOf(src)
	if err = c.lo.UpdateInput(field); err != nil {
		return nil, err
	}
	if err = c.hi.UpdateInput(field); err != nil {
		return nil, err
	}
	if err = c.recompute(c.lo, c.state.Min, "min"); err != nil {
		return nil, err
	}
	if err = c.recompute(c.hi, c.state.Max, "max"); err != nil {
		return nil, err
	}
	c.unsubSrc = src.OnArrayChange(c.onArrayChange)
	return c, nil
}

// Subscribe registers fn to receive controller events.
func (c *Controller) Subscribe(fn func(Event)) (unsubscribe func()) {
	return c.events.subscribe(fn)
}

// Mode returns the topology mode selected at construction.
func (c *Controller) Mode() Mode { return c.mode }

// State returns the current threshold state.
func (c *Controller) State() State { return c.state }

// Predicate returns the current mask predicate.
func (c *Controller) Predicate() Predicate {
	return Predicate{Min: c.state.Min, Max: c.state.Max, Inclusive: c.state.Inclusive}
}

// Source returns the current thresholded source.
func (c *Controller) Source() Source { return c.src }

// MinSurface returns the surface at the lower bound. Returns nil in Passthrough mode.
func (c *Controller) MinSurface() *iso.Mesh {
	if c.lo == nil {
		return nil
	}
	return c.lo.Mesh()
}

// MaxSurface returns the surface at the upper bound. Returns nil in Passthrough mode.
func (c *Controller) MaxSurface() *iso.Mesh {
	if c.hi == nil {
		return nil
	}
	return c.hi.Mesh()
}

// Extractors returns the lower and upper bound extractors. Both are nil in Passthrough mode.
func (c *Controller) Extractors() (lo, hi *iso.Extractor) { return c.lo, c.hi }

// Err returns the last error encountered while handling a source notification,
// which has no caller to return it to.
func (c *Controller) Err() error { return c.lastErr }

// SetMin sets the lower bound and recomputes its surface. The bound is
// stored even if recomputation fails, in which case the previous surface
// is kept and the error returned.
func (c *Controller) SetMin(v float64) error {
	if err := c.enter(); err != nil {
		return err
	}
	defer c.leave()
	c.state.Min = v
	return c.boundChanged(c.lo, v, "min")
}

// SetMax sets the upper bound and recomputes its surface. See SetMin.
func (c *Controller) SetMax(v float64) error {
	if err := c.enter(); err != nil {
		return err
	}
	defer c.leave()
	c.state.Max = v
	return c.boundChanged(c.hi, v, "max")
}

func (c *Controller) boundChanged(e *iso.Extractor, v float64, which string) error {
	if c.mode == Passthrough {
		c.events.emit(MaskChanged)
		return nil
	}
	err := c.recompute(e, v, which)
	if err == nil {
		c.events.emit(GeometryChanged)
	}
	c.events.emit(MaskChanged)
	return err
}

// SetInclusive sets the mask interval inclusivity. Surfaces always lie
// exactly at the bounds so no geometry is recomputed.
func (c *Controller) SetInclusive(inclusive bool) error {
	if err := c.enter(); err != nil {
		return err
	}
	defer c.leave()
	if c.state.Inclusive == inclusive {
		return nil
	}
	c.state.Inclusive = inclusive
	c.events.emit(MaskChanged)
	return nil
}

// OnFieldChanged rebinds the current source array to both extractors and
// recomputes both surfaces. It is called automatically when the source
// notifies an array change.
func (c *Controller) OnFieldChanged() error {
	if err := c.enter(); err != nil {
		return err
	}
	defer c.leave()
	if c.mode == Passthrough {
		return nil
	}
	return c.rebind(c.src)
}

// SetSource replaces the thresholded source. The subscription to the previous
// source is dropped and one to src established in the same call. If src's
// array does not match the mesh the controller is left unchanged.
func (c *Controller) SetSource(src Source) error {
	if src == nil {
		return errors.New("nil threshold source")
	}
	if err := c.enter(); err != nil {
		return err
	}
	defer c.leave()
	if c.mode == Passthrough {
		c.src = src
		c.events.emit(MaskChanged)
		return nil
	}
	if err := c.mesh.CheckField(fieldOf(src)); err != nil {
		return err
	}
	if c.unsubSrc != nil {
		c.unsubSrc()
	}
	c.src = src
	c.unsubSrc = src.OnArrayChange(c.onArrayChange)
	return c.rebind(src)
}

// Close drops the controller's subscriptions to its source and host.
func (c *Controller) Close() {
	if c.unsubSrc != nil {
		c.unsubSrc()
		c.unsubSrc = nil
	}
	if c.unsubHost != nil {
		c.unsubHost()
		c.unsubHost = nil
	}
}

func (c *Controller) onArrayChange() {
	err := c.OnFieldChanged()
	c.lastErr = err
	if err != nil {
		c.log.Warn("threshold field change", slog.String("field", c.src.Name()), slog.Any("err", err))
	}
}

// rebind binds src's array to both extractors and recomputes both surfaces.
func (c *Controller) rebind(src Source) error {
	field := fieldOf(src)
	// Check before binding so neither extractor is left with a different field.
	if err := c.mesh.CheckField(field); err != nil {
		return err
	}
	if err := errors.Join(c.lo.UpdateInput(field), c.hi.UpdateInput(field)); err != nil {
		return err
	}
	errLo := c.recompute(c.lo, c.state.Min, "min")
	errHi := c.recompute(c.hi, c.state.Max, "max")
	if errLo == nil || errHi == nil {
		c.events.emit(GeometryChanged)
	}
	return errors.Join(errLo, errHi)
}

func (c *Controller) recompute(e *iso.Extractor, isovalue float64, which string) error {
	surf, err := e.ComputeIsoSurface(isovalue)
	if err != nil {
		return err
	}
	stats := e.Stats()
	c.log.Debug("threshold surface",
		slog.String("bound", which),
		slog.Float64("isovalue", isovalue),
		slog.Int("triangles", surf.TriangleCount()),
		slog.Int("full", stats.Full),
		slog.Int("reused", stats.Reused),
	)
	return nil
}

func (c *Controller) enter() error {
	if c.busy {
		return ErrReentrant
	}
	c.busy = true
	return nil
}

func (c *Controller) leave() { c.busy = false }

func fieldOf(src Source) tetra.Field {
	return tetra.Field{Name: src.Name(), Values: src.Array()}
}
