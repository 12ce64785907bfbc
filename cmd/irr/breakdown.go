package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/rater-agreement/internal/chart"
	"github.com/banshee-data/rater-agreement/internal/coding"
	"github.com/banshee-data/rater-agreement/internal/frequency"
	"github.com/banshee-data/rater-agreement/internal/output"
	"github.com/banshee-data/rater-agreement/internal/report"
)

func handleBreakdown(args []string) {
	fs := flag.NewFlagSet("breakdown", flag.ExitOnError)
	in := addInputFlags(fs, "out/breakdown")
	quiet := fs.Bool("quiet", false, "Do not print the presence tables")
	fs.Parse(args)

	fatalIf(runBreakdown(in, *quiet, output.OSFileSystem{}, os.Stdout))
}

// runBreakdown reports element presence and goal counts per source for
// each rater, with the two raters charted side by side.
func runBreakdown(flags *inputFlags, quiet bool, fs output.FileSystem, stdout io.Writer) error {
	in, err := flags.load(fs)
	if err != nil {
		return err
	}
	sources := in.cfg.GetSources()
	raters := []coding.Coding{in.r1, in.r2}

	presence := make([]*frequency.Presence, len(raters))
	for i, c := range raters {
		pr, err := frequency.ElementPresence(c, in.cfg.GetElementLabels(), sources)
		if err != nil {
			return err
		}
		presence[i] = pr
		name := fmt.Sprintf("elements_%s.csv", output.SanitizeFilename(c.Rater()))
		if err := in.write(name, func(w io.Writer) error { return report.WritePresence(w, pr) }); err != nil {
			return err
		}
	}
	plots, errs := make([]*plot.Plot, len(raters)), make([]error, len(raters))
	for i, pr := range presence {
		plots[i], errs[i] = chart.Presence(pr, fmt.Sprintf("Elements by source: %s", pr.Rater))
	}
	if err := in.writePanels("elements.png", plots, errs, chart.PanelWidth, chart.DefaultHeight); err != nil {
		return err
	}

	g1, err := frequency.GoalCounts(in.r1, in.cfg.GetGoalLabel(), sources)
	if err != nil {
		return err
	}
	g2, err := frequency.GoalCounts(in.r2, in.cfg.GetGoalLabel(), sources)
	if err != nil {
		return err
	}
	g1, g2 = frequency.AlignGoals(g1, g2)
	for i, g := range []*frequency.GoalTable{g1, g2} {
		name := fmt.Sprintf("goals_%s.csv", output.SanitizeFilename(g.Rater))
		if err := in.write(name, func(w io.Writer) error { return report.WriteGoals(w, g) }); err != nil {
			return err
		}
		plots[i], errs[i] = chart.Goals(g, fmt.Sprintf("Goals by source: %s", g.Rater))
	}
	if err := in.writePanels("goals.png", plots, errs, chart.PanelWidth, chart.DefaultHeight+vg.Inch); err != nil {
		return err
	}

	if quiet {
		return nil
	}
	for _, pr := range presence {
		if err := report.PrintPresence(stdout, pr); err != nil {
			return err
		}
	}
	return nil
}
