package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/banshee-data/rater-agreement/internal/agreement"
	"github.com/banshee-data/rater-agreement/internal/chart"
	"github.com/banshee-data/rater-agreement/internal/coding"
	"github.com/banshee-data/rater-agreement/internal/output"
	"github.com/banshee-data/rater-agreement/internal/report"
	"github.com/banshee-data/rater-agreement/internal/store"
)

type scoreFlags struct {
	inputFlags
	DBPath string
	HTML   bool
	Quiet  bool
}

func handleScore(args []string) {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	in := addInputFlags(fs, "out")
	dbPath := fs.String("db", "", "Record the run in this SQLite database")
	html := fs.Bool("html", false, "Also write dashboard.html")
	quiet := fs.Bool("quiet", false, "Do not print score tables")
	fs.Parse(args)

	sf := &scoreFlags{inputFlags: *in, DBPath: *dbPath, HTML: *html, Quiet: *quiet}
	fatalIf(runScore(sf, output.OSFileSystem{}, os.Stdout))
}

// runScore scores every shared label. Unless ordinal labels are already
// scored with ICC3 they are scored a second time with it, and both are
// reported.
func runScore(sf *scoreFlags, fs output.FileSystem, stdout io.Writer) error {
	in, err := sf.load(fs)
	if err != nil {
		return err
	}

	opts, err := in.cfg.ScorerOptions()
	if err != nil {
		return err
	}
	scorer, err := agreement.NewScorer(opts)
	if err != nil {
		return err
	}
	res := scorer.Score(in.r1, in.r2)
	scores := res.Ordered()
	binary := report.OfKind(scores, coding.Binary)
	ordinal := report.OfKind(scores, coding.Ordinal)
	categorical := report.OfKind(scores, coding.Categorical)

	icc := ordinal
	stored := scores
	if opts.OrdinalMethod != agreement.MethodICC3 {
		iccOpts := opts
		iccOpts.OrdinalMethod = agreement.MethodICC3
		iccScorer, err := agreement.NewScorer(iccOpts)
		if err != nil {
			return err
		}
		icc = report.OfKind(iccScorer.Score(in.r1, in.r2).Ordered(), coding.Ordinal)
		stored = append(append([]agreement.LabelScore(nil), scores...), icc...)
	}

	steps := []struct {
		name string
		fn   func(io.Writer) error
	}{
		{"scores.csv", func(w io.Writer) error { return report.WriteScores(w, scores) }},
		{"elements_kappa.csv", func(w io.Writer) error { return report.WriteScores(w, binary) }},
		{"ordinal_kappa.csv", func(w io.Writer) error { return report.WriteScores(w, ordinal) }},
		{"ordinal_icc.csv", func(w io.Writer) error { return report.WriteICC(w, icc) }},
		{"crosstabs.csv", func(w io.Writer) error {
			return report.WriteCrosstabs(w, res.Rater1, res.Rater2, scores)
		}},
	}
	for _, step := range steps {
		if err := in.write(step.name, step.fn); err != nil {
			return err
		}
	}

	p, err := chart.Scores(fmt.Sprintf("Agreement: %s vs %s", res.Rater1, res.Rater2), scores)
	if err := in.writePlot("scores.png", p, err, chart.DefaultWidth, chart.DefaultHeight); err != nil {
		return err
	}

	if sf.HTML {
		err := in.write("dashboard.html", func(w io.Writer) error {
			return chart.RenderDashboard(w, res, chart.DashboardOptions{ICC: icc})
		})
		if err != nil {
			return err
		}
	}

	if sf.DBPath != "" {
		runID, err := recordRun(sf, in, stored)
		if err != nil {
			return err
		}
		log.Printf("Recorded run %s in %s", runID, sf.DBPath)
	}

	if sf.Quiet {
		return nil
	}
	sections := []struct {
		title  string
		scores []agreement.LabelScore
	}{
		{"Binary labels", binary},
		{"Ordinal labels", ordinal},
		{"Categorical labels", categorical},
	}
	if opts.OrdinalMethod != agreement.MethodICC3 {
		sections = append(sections, struct {
			title  string
			scores []agreement.LabelScore
		}{"Ordinal labels (ICC3)", icc})
	}
	for _, section := range sections {
		if err := report.PrintScores(stdout, section.title, section.scores); err != nil {
			return err
		}
	}
	fmt.Fprintln(stdout)
	return report.PrintSummary(stdout, res)
}

func recordRun(sf *scoreFlags, in *inputs, scores []agreement.LabelScore) (string, error) {
	st, err := store.NewStore(sf.DBPath)
	if err != nil {
		return "", err
	}
	defer st.Close()

	optsJSON, err := json.Marshal(in.cfg)
	if err != nil {
		return "", fmt.Errorf("failed to encode options: %w", err)
	}
	run := &store.Run{
		Rater1:      in.r1.Rater(),
		Rater2:      in.r2.Rater(),
		Input1:      sf.Rater1,
		Input2:      sf.Rater2,
		OptionsJSON: optsJSON,
	}
	if err := st.InsertRun(run, scores); err != nil {
		return "", err
	}
	return run.RunID, nil
}
