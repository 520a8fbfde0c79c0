// Command isothresh extracts the bounding isosurfaces of a threshold interval
// over a signed distance field sampled on a tetrahedral mesh.
//
// Usage:
//
//	isothresh extract --config threshold.toml --out shell --png
//	isothresh hist --min -0.05 --max 0.05 --out hist.png
//	isothresh glsl --inclusive=false
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// flags holds command line values. Threshold flags only override the
// configuration file when set explicitly.
type flags struct {
	config    string
	out       string
	png       bool
	min, max  float64
	inclusive bool
	dynamic   bool
	bins      int
	fnName    string
	uniforms  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags
	root := &cobra.Command{
		Use:          "isothresh",
		Short:        "Threshold isosurface extraction over tetrahedral meshes",
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&f.config, "config", "c", "", "TOML configuration file")
	pf.Float64Var(&f.min, "min", 0, "lower threshold bound")
	pf.Float64Var(&f.max, "max", 0, "upper threshold bound")
	pf.BoolVar(&f.inclusive, "inclusive", true, "closed threshold interval")
	pf.BoolVar(&f.dynamic, "dynamic", false, "recompute surfaces from scratch on every update")

	extract := &cobra.Command{
		Use:   "extract",
		Short: "Write the min and max threshold surfaces as STL files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd, &f)
			if err != nil {
				return err
			}
			return runExtract(cfg, log, f.out, f.png)
		},
	}
	extract.Flags().StringVarP(&f.out, "out", "o", "threshold", "output file prefix")
	extract.Flags().BoolVar(&f.png, "png", false, "also write PNG previews")

	hist := &cobra.Command{
		Use:   "hist",
		Short: "Plot a histogram of the sampled field with the threshold bounds",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd, &f)
			if err != nil {
				return err
			}
			return runHist(cfg, log, f.out, f.bins)
		},
	}
	hist.Flags().StringVarP(&f.out, "out", "o", "hist.png", "output PNG file")
	hist.Flags().IntVar(&f.bins, "bins", 32, "histogram bins")

	glsl := &cobra.Command{
		Use:   "glsl",
		Short: "Print the GLSL threshold mask function",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(cmd, &f)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(glslSource(cfg, f.fnName, f.uniforms))
			return err
		},
	}
	glsl.Flags().StringVar(&f.fnName, "name", "thresholdMask", "GLSL function name")
	glsl.Flags().BoolVar(&f.uniforms, "uniforms", false, "read bounds from uniforms instead of literals")

	root.AddCommand(extract, hist, glsl)
	return root
}

// setup loads the configuration, applies flag overrides and creates the logger.
func setup(cmd *cobra.Command, f *flags) (config, *slog.Logger, error) {
	cfg, err := loadConfig(f.config)
	if err != nil {
		return cfg, nil, err
	}
	fs := cmd.Flags()
	if fs.Changed("min") {
		cfg.Threshold.Min = f.min
	}
	if fs.Changed("max") {
		cfg.Threshold.Max = f.max
	}
	if fs.Changed("inclusive") {
		cfg.Threshold.Inclusive = f.inclusive
	}
	if fs.Changed("dynamic") {
		cfg.Threshold.Dynamic = f.dynamic
	}
	lvl, err := cfg.logLevel()
	if err != nil {
		return cfg, nil, fmt.Errorf("log_level: %w", err)
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl}))
	return cfg, log, nil
}
