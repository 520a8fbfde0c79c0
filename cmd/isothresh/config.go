package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/deadsy/sdfx/sdf"
	"github.com/pelletier/go-toml/v2"
	"github.com/soypat/isothresh/internal/d3"
	"github.com/soypat/isothresh/tetra"
	"github.com/soypat/isothresh/threshold"
	"gonum.org/v1/gonum/spatial/r3"
)

// config is the TOML configuration file layout. Command line flags
// override values read from file.
type config struct {
	LogLevel  string          `toml:"log_level"`
	Mesh      meshConfig      `toml:"mesh"`
	Field     fieldConfig     `toml:"field"`
	Threshold thresholdConfig `toml:"threshold"`
}

type meshConfig struct {
	// Kind is "bcc" for a body centered cubic lattice or "cube" for
	// cubes split into 6 tetrahedra each.
	Kind string `toml:"kind"`
	// Size is the side length of the meshed cube, centered at the origin.
	Size       float64 `toml:"size"`
	Resolution float64 `toml:"resolution"`
}

type fieldConfig struct {
	// Shape is the signed distance function sampled at mesh nodes: "sphere" or "box".
	Shape  string  `toml:"shape"`
	Radius float64 `toml:"radius"`
	// Side is the box side length.
	Side  float64 `toml:"side"`
	Round float64 `toml:"round"`
}

type thresholdConfig struct {
	Min       float64 `toml:"min"`
	Max       float64 `toml:"max"`
	Inclusive bool    `toml:"inclusive"`
	Dynamic   bool    `toml:"dynamic"`
}

func defaultConfig() config {
	tc := threshold.DefaultConfig()
	return config{
		LogLevel: "info",
		Mesh: meshConfig{
			Kind:       "bcc",
			Size:       2,
			Resolution: 0.05,
		},
		Field: fieldConfig{
			Shape:  "sphere",
			Radius: 0.6,
			Side:   1,
		},
		Threshold: thresholdConfig{
			Min:       -0.1,
			Max:       0.1,
			Inclusive: tc.Inclusive,
			Dynamic:   tc.Dynamic,
		},
	}
}

// loadConfig reads the TOML file at path over the defaults.
// An empty path returns the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	fp, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer fp.Close()
	dec := toml.NewDecoder(fp).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding %s: %w", path, err)
	}
	return cfg, nil
}

func (c config) controllerConfig(log *slog.Logger) threshold.Config {
	return threshold.Config{
		Min:       c.Threshold.Min,
		Max:       c.Threshold.Max,
		Inclusive: c.Threshold.Inclusive,
		Dynamic:   c.Threshold.Dynamic,
		Logger:    log,
	}
}

func (c config) logLevel() (slog.Level, error) {
	var lvl slog.Level
	err := lvl.UnmarshalText([]byte(c.LogLevel))
	return lvl, err
}

// mesh builds the tetrahedral mesh described by c.
func (c meshConfig) mesh() (*tetra.Mesh, error) {
	if c.Size <= 0 || c.Resolution <= 0 {
		return nil, errors.New("mesh size and resolution must be positive")
	}
	bb := r3.Box(d3.CenteredBox(r3.Vec{}, d3.Elem(c.Size)))
	switch strings.ToLower(c.Kind) {
	case "bcc":
		return tetra.BCCMesh(bb, c.Resolution)
	case "cube":
		n := int(c.Size/c.Resolution + 0.5)
		return tetra.CubeMesh(bb, n, n, n)
	}
	return nil, fmt.Errorf("unknown mesh kind %q", c.Kind)
}

// evaluator returns the signed distance function described by c.
func (c fieldConfig) evaluator() (tetra.Evaluator, error) {
	var (
		s   sdf.SDF3
		err error
	)
	switch strings.ToLower(c.Shape) {
	case "sphere":
		s, err = sdf.Sphere3D(c.Radius)
	case "box":
		s, err = sdf.Box3D(sdf.V3{X: c.Side, Y: c.Side, Z: c.Side}, c.Round)
	default:
		err = fmt.Errorf("unknown field shape %q", c.Shape)
	}
	if err != nil {
		return nil, err
	}
	return sdfField{s}, nil
}

// sdfField samples an sdfx signed distance function.
type sdfField struct {
	s sdf.SDF3
}

func (f sdfField) Evaluate(p r3.Vec) float64 {
	return f.s.Evaluate(sdf.V3{X: p.X, Y: p.Y, Z: p.Z})
}
