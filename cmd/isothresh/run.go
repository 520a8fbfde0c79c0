package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"

	"github.com/soypat/isothresh/iso"
	"github.com/soypat/isothresh/render"
	"github.com/soypat/isothresh/tetra"
	"github.com/soypat/isothresh/threshold"
)

// sample builds the configured mesh and samples the field over it.
func sample(cfg config, log *slog.Logger) (*tetra.Mesh, tetra.Field, error) {
	eval, err := cfg.Field.evaluator()
	if err != nil {
		return nil, tetra.Field{}, err
	}
	mesh, err := cfg.Mesh.mesh()
	if err != nil {
		return nil, tetra.Field{}, err
	}
	field := tetra.Sample(mesh, cfg.Field.Shape, eval)
	lo, hi := field.Range()
	log.Info("sampled field",
		slog.String("mesh", cfg.Mesh.Kind),
		slog.Int("vertices", mesh.VertexCount()),
		slog.Int("tetrahedra", len(mesh.Tetrahedra)),
		slog.String("field", field.Name),
		slog.Float64("min", lo),
		slog.Float64("max", hi),
	)
	return mesh, field, nil
}

func runExtract(cfg config, log *slog.Logger, prefix string, withPNG bool) error {
	mesh, field, err := sample(cfg, log)
	if err != nil {
		return err
	}
	host := &threshold.MeshHost{Mesh: mesh}
	ctl, err := threshold.NewController(host, threshold.NewFieldComponent(field), cfg.controllerConfig(log))
	if err != nil {
		return err
	}
	defer ctl.Close()
	log.Info("threshold", slog.String("mask", ctl.Predicate().String()))

	surfaces := []struct {
		name string
		surf *iso.Mesh
	}{
		{name: "min", surf: ctl.MinSurface()},
		{name: "max", surf: ctl.MaxSurface()},
	}
	var models [][]render.Triangle
	for _, s := range surfaces {
		model := s.surf.AppendTriangles(nil)
		path := fmt.Sprintf("%s_%s.stl", prefix, s.name)
		if err := render.CreateSTL(path, model); err != nil {
			return err
		}
		log.Info("wrote surface",
			slog.String("file", path),
			slog.Int("vertices", s.surf.VertexCount()),
			slog.Int("triangles", s.surf.TriangleCount()),
		)
		models = append(models, model)
	}
	if !withPNG {
		return nil
	}
	if len(models[0])+len(models[1]) == 0 {
		log.Warn("no surfaces within mesh, skipping preview")
		return nil
	}
	return writeFile(prefix+".png", func(w *bufio.Writer) error {
		return render.WritePNG(w, render.DefaultView, models...)
	})
}

func runHist(cfg config, log *slog.Logger, path string, bins int) error {
	_, field, err := sample(cfg, log)
	if err != nil {
		return err
	}
	p := cfg.controllerConfig(nil)
	h := render.Histogram{
		Title: field.Name + ": " + threshold.Predicate{Min: p.Min, Max: p.Max, Inclusive: p.Inclusive}.String(),
		Bins:  bins,
		Marks: []float64{p.Min, p.Max},
	}
	err = writeFile(path, func(w *bufio.Writer) error {
		return render.WriteHistogram(w, h, field.Values)
	})
	if err == nil {
		log.Info("wrote histogram", slog.String("file", path))
	}
	return err
}

func glslSource(cfg config, fnName string, uniforms bool) []byte {
	p := threshold.Predicate{
		Min:       cfg.Threshold.Min,
		Max:       cfg.Threshold.Max,
		Inclusive: cfg.Threshold.Inclusive,
	}
	if uniforms {
		return p.AppendGLSLUniform(nil, fnName, fnName+"Min", fnName+"Max")
	}
	return p.AppendGLSL(nil, fnName)
}

func writeFile(path string, write func(w *bufio.Writer) error) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(fp)
	err = write(w)
	if err == nil {
		err = w.Flush()
	}
	if cerr := fp.Close(); err == nil {
		err = cerr
	}
	return err
}
