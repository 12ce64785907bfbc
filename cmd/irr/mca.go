package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/banshee-data/rater-agreement/internal/chart"
	"github.com/banshee-data/rater-agreement/internal/coding"
	"github.com/banshee-data/rater-agreement/internal/frequency"
	"github.com/banshee-data/rater-agreement/internal/mca"
	"github.com/banshee-data/rater-agreement/internal/output"
	"github.com/banshee-data/rater-agreement/internal/report"
)

func handleMCA(args []string) {
	fs := flag.NewFlagSet("mca", flag.ExitOnError)
	in := addInputFlags(fs, "out/mca")
	components := fs.Int("components", 0, "Number of components to keep (default from config)")
	fs.Parse(args)

	fatalIf(runMCA(in, *components, output.OSFileSystem{}, os.Stdout))
}

// runMCA fits a correspondence analysis to the merged sheets after
// bookkeeping, example, goal and presence columns are dropped.
func runMCA(flags *inputFlags, components int, fs output.FileSystem, stdout io.Writer) error {
	in, err := flags.load(fs)
	if err != nil {
		return err
	}
	if components <= 0 {
		components = in.cfg.GetMCAComponents()
	}

	merged := frequency.Merge(in.r1, in.r2)
	filter := in.cfg.GetLabelFilter()
	var kept []string
	for _, label := range mca.FilterLabels(merged.Labels(), in.cfg.GetMCADropSubstrings()) {
		if filter.Keep(label) {
			kept = append(kept, label)
		}
	}
	input := subset(merged, kept)
	if err := in.write("mca_input.csv", func(w io.Writer) error { return report.WriteCoding(w, input) }); err != nil {
		return err
	}

	res, err := mca.Fit(input, kept, components)
	if err != nil {
		return err
	}
	for _, item := range res.Skipped {
		log.Printf("mca: skipped %s (no values)", item)
	}

	steps := []struct {
		name string
		fn   func(io.Writer) error
	}{
		{"mca_loadings.csv", func(w io.Writer) error { return report.WriteLoadings(w, res) }},
		{"mca_row_scores.csv", func(w io.Writer) error { return report.WriteRowScores(w, res) }},
		{"mca_inertia.csv", func(w io.Writer) error { return report.WriteInertia(w, res) }},
	}
	for _, step := range steps {
		if err := in.write(step.name, step.fn); err != nil {
			return err
		}
	}
	p, err := chart.MCAScatter(res)
	if err := in.writePlot("mca_scatter.png", p, err, chart.DefaultWidth, chart.DefaultWidth); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "MCA: %d items, %d categories, %d components\n",
		len(res.Items), len(res.Categories), res.Components())
	for i, e := range res.Explained {
		fmt.Fprintf(stdout, "  component %d: eigenvalue %.4f, %.1f%% of inertia\n", i+1, res.Eigenvalues[i], 100*e)
	}
	return nil
}

// subset copies the given labels of c into a new coding.
func subset(c coding.Coding, labels []string) coding.Coding {
	b := coding.NewBuilder(c.Rater())
	for _, item := range c.Items() {
		for _, label := range labels {
			if v, ok := c.Value(item, label); ok {
				b.Set(item, label, v)
			}
		}
	}
	return b.Build()
}
