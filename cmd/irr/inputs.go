package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/rater-agreement/internal/chart"
	"github.com/banshee-data/rater-agreement/internal/coding"
	"github.com/banshee-data/rater-agreement/internal/config"
	"github.com/banshee-data/rater-agreement/internal/output"
	"github.com/banshee-data/rater-agreement/internal/sheet"
)

// inputFlags are shared by every analysis subcommand.
type inputFlags struct {
	Rater1 string
	Rater2 string
	Config string
	Out    string
}

func addInputFlags(fs *flag.FlagSet, defaultOut string) *inputFlags {
	in := &inputFlags{}
	fs.StringVar(&in.Rater1, "r1", "", "First rater's CSV export (required)")
	fs.StringVar(&in.Rater2, "r2", "", "Second rater's CSV export (required)")
	fs.StringVar(&in.Config, "config", "", "Analysis config file (.json, .yaml or .yml)")
	fs.StringVar(&in.Out, "out", defaultOut, "Output directory")
	return in
}

// inputs is everything an analysis needs after flag parsing.
type inputs struct {
	cfg *config.AnalysisConfig
	r1  coding.Coding
	r2  coding.Coding
	out *output.Dir
}

func (in *inputFlags) load(fs output.FileSystem) (*inputs, error) {
	if in.Rater1 == "" || in.Rater2 == "" {
		return nil, errors.New("both -r1 and -r2 are required")
	}

	cfg := config.DefaultAnalysisConfig()
	if in.Config != "" {
		loaded, err := config.Load(in.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	r1, err := sheet.Load(in.Rater1, cfg.SheetOptions(cfg.GetRater1Name()))
	if err != nil {
		return nil, fmt.Errorf("failed to load rater 1: %w", err)
	}
	r2, err := sheet.Load(in.Rater2, cfg.SheetOptions(cfg.GetRater2Name()))
	if err != nil {
		return nil, fmt.Errorf("failed to load rater 2: %w", err)
	}

	out, err := output.NewDir(fs, in.Out)
	if err != nil {
		return nil, err
	}
	return &inputs{cfg: cfg, r1: r1, r2: r2, out: out}, nil
}

// write stores one artifact under the output directory and logs its path.
func (in *inputs) write(name string, fn func(io.Writer) error) error {
	path, err := in.out.Write(name, fn)
	if err != nil {
		return err
	}
	log.Printf("Wrote %s", path)
	return nil
}

// writePlot renders p as a PNG. A chart with nothing on it is logged and
// skipped rather than failing the command.
func (in *inputs) writePlot(name string, p *plot.Plot, err error, width, height vg.Length) error {
	if errors.Is(err, chart.ErrNoData) {
		log.Printf("Skipping %s: %v", name, err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return in.write(name, func(w io.Writer) error { return chart.WritePNG(w, p, width, height) })
}

// writePanels renders plots side by side, dropping any that failed with
// ErrNoData.
func (in *inputs) writePanels(name string, plots []*plot.Plot, errs []error, width, height vg.Length) error {
	var kept []*plot.Plot
	for i, p := range plots {
		if errors.Is(errs[i], chart.ErrNoData) {
			continue
		}
		if errs[i] != nil {
			return fmt.Errorf("%s: %w", name, errs[i])
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		log.Printf("Skipping %s: %v", name, chart.ErrNoData)
		return nil
	}
	return in.write(name, func(w io.Writer) error { return chart.WritePanelsPNG(w, kept, width, height) })
}
