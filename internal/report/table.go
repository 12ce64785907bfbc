package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/banshee-data/rater-agreement/internal/agreement"
	"github.com/banshee-data/rater-agreement/internal/frequency"
)

func fixed(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.4f", v)
}

func writeRule(tw *tabwriter.Writer, n int) {
	sep := make([]string, n)
	for i := range sep {
		sep[i] = "---"
	}
	fmt.Fprintln(tw, strings.Join(sep, "\t"))
}

// PrintScores writes a titled table of label scores.
func PrintScores(w io.Writer, title string, scores []agreement.LabelScore) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "\n=== %s ===\n\n", title)
	if len(scores) == 0 {
		fmt.Fprintln(tw, "(no labels)")
		return tw.Flush()
	}

	header := []string{"Label", "Kind", "Method", "Score", "Items", "Status"}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	writeRule(tw, len(header))
	for _, s := range scores {
		status := string(s.Status)
		if s.Reason != "" {
			status += " (" + s.Reason + ")"
		}
		fmt.Fprintln(tw, strings.Join([]string{
			s.Label,
			s.Kind.String(),
			string(s.Method),
			fixed(s.Score),
			fmt.Sprintf("%d", s.Items),
			status,
		}, "\t"))
	}
	return tw.Flush()
}

// PrintSummary writes the status counts of a result on one line.
func PrintSummary(w io.Writer, res agreement.Result) error {
	sum := res.Summary()
	_, err := fmt.Fprintf(w, "%s vs %s: %d labels (%d ok, %d degenerate, %d not computable)\n",
		res.Rater1, res.Rater2, len(res.Labels),
		sum[agreement.StatusOK], sum[agreement.StatusDegenerate], sum[agreement.StatusNotComputable])
	return err
}

// PrintAverages writes the average rating table.
func PrintAverages(w io.Writer, a *frequency.AverageTable) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "\n=== Average rating per label ===\n\n")
	header := append([]string{"Label"}, a.Groups...)
	header = append(header, "Overall")
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	writeRule(tw, len(header))
	for i, label := range a.Labels {
		row := []string{label}
		for _, g := range a.Groups {
			row = append(row, fixed(a.Get(label, g)))
		}
		row = append(row, fixed(a.Overall[i]))
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// PrintPresence writes element percentages per source.
func PrintPresence(w io.Writer, p *frequency.Presence) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "\n=== %% of documents with element (%s) ===\n\n", p.Rater)
	header := append([]string{"Source"}, p.Elements...)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	writeRule(tw, len(header))
	for _, src := range p.Sources {
		row := []string{src}
		for _, e := range p.Elements {
			row = append(row, fmt.Sprintf("%.1f", p.Get(src, e)))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
