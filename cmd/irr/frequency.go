package main

import (
	"flag"
	"io"
	"os"
	"path/filepath"

	"github.com/banshee-data/rater-agreement/internal/chart"
	"github.com/banshee-data/rater-agreement/internal/frequency"
	"github.com/banshee-data/rater-agreement/internal/output"
	"github.com/banshee-data/rater-agreement/internal/report"
)

func handleFrequency(args []string) {
	fs := flag.NewFlagSet("frequency", flag.ExitOnError)
	in := addInputFlags(fs, "out/frequency")
	quiet := fs.Bool("quiet", false, "Do not print the averages table")
	fs.Parse(args)

	fatalIf(runFrequency(in, *quiet, output.OSFileSystem{}, os.Stdout))
}

// runFrequency merges both sheets, then tabulates rating counts per source.
func runFrequency(flags *inputFlags, quiet bool, fs output.FileSystem, stdout io.Writer) error {
	in, err := flags.load(fs)
	if err != nil {
		return err
	}

	merged := frequency.Merge(in.r1, in.r2)
	if err := in.write("merged.csv", func(w io.Writer) error { return report.WriteCoding(w, merged) }); err != nil {
		return err
	}

	tables := frequency.Frequencies(merged, in.cfg.GetSources(), in.cfg.GetRatingBins())
	for _, t := range tables {
		name := output.SanitizeFilename(t.Group) + ".csv"
		if err := in.write(filepath.Join("frequencies", name), func(w io.Writer) error {
			return report.WriteFrequencies(w, t)
		}); err != nil {
			return err
		}
		norm := frequency.Normalize(t)
		if err := in.write(filepath.Join("normalized", name), func(w io.Writer) error {
			return report.WriteFrequencies(w, norm)
		}); err != nil {
			return err
		}
	}

	avg := frequency.Averages(tables)
	if err := in.write("averages.csv", func(w io.Writer) error { return report.WriteAverages(w, avg) }); err != nil {
		return err
	}
	p, err := chart.Averages(avg)
	if err := in.writePlot("averages.png", p, err, chart.DefaultWidth, chart.DefaultHeight); err != nil {
		return err
	}

	filter := in.cfg.GetLabelFilter()
	for _, label := range avg.Labels {
		if !filter.Keep(label) {
			continue
		}
		p, err := chart.Distribution(label, tables)
		name := filepath.Join("row_distributions", output.SanitizeFilename(label)+".png")
		if err := in.writePlot(name, p, err, chart.DefaultWidth, chart.DefaultHeight); err != nil {
			return err
		}
	}

	if quiet {
		return nil
	}
	return report.PrintAverages(stdout, avg)
}
