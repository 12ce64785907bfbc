// Package report renders agreement scores and descriptive analyses as CSV
// files and plain-text tables.
package report

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/banshee-data/rater-agreement/internal/agreement"
	"github.com/banshee-data/rater-agreement/internal/coding"
)

// FormatFloat renders v for CSV output; NaN becomes an empty cell.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	if math.IsInf(v, 1) {
		return "inf"
	}
	if math.IsInf(v, -1) {
		return "-inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// OfKind returns the scores whose label kind is kind, keeping order.
func OfKind(scores []agreement.LabelScore, kind coding.Kind) []agreement.LabelScore {
	var out []agreement.LabelScore
	for _, s := range scores {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// WithMethod returns the scores computed with method, keeping order.
func WithMethod(scores []agreement.LabelScore, method agreement.Method) []agreement.LabelScore {
	var out []agreement.LabelScore
	for _, s := range scores {
		if s.Method == method {
			out = append(out, s)
		}
	}
	return out
}

// writeAll writes rows through a csv.Writer and reports the first error.
func writeAll(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

var scoreHeader = []string{"label", "kind", "method", "weighting", "score", "items", "missing", "unparseable", "status", "reason"}

// WriteScores writes one row per label score.
func WriteScores(w io.Writer, scores []agreement.LabelScore) error {
	rows := [][]string{scoreHeader}
	for _, s := range scores {
		rows = append(rows, []string{
			s.Label,
			s.Kind.String(),
			string(s.Method),
			string(s.Weighting),
			FormatFloat(s.Score),
			strconv.Itoa(s.Items),
			strconv.Itoa(s.Missing),
			strconv.Itoa(s.Unparseable),
			string(s.Status),
			s.Reason,
		})
	}
	return writeAll(w, rows)
}

// WriteICC writes the ICC3 details of each score that has them. Labels
// scored some other way get a row with only the label and status.
func WriteICC(w io.Writer, scores []agreement.LabelScore) error {
	rows := [][]string{{"label", "icc3", "icc3k", "f", "df1", "df2", "p_value", "ci95_low", "ci95_high", "items", "status"}}
	for _, s := range scores {
		row := []string{s.Label, FormatFloat(s.Score), "", "", "", "", "", "", "", strconv.Itoa(s.Items), string(s.Status)}
		if r := s.ICC; r != nil {
			row = []string{
				s.Label,
				FormatFloat(r.ICC),
				FormatFloat(r.ICC3k),
				FormatFloat(r.F),
				FormatFloat(r.DF1),
				FormatFloat(r.DF2),
				FormatFloat(r.PValue),
				FormatFloat(r.CI95[0]),
				FormatFloat(r.CI95[1]),
				strconv.Itoa(s.Items),
				string(s.Status),
			}
		}
		rows = append(rows, row)
	}
	return writeAll(w, rows)
}

// WriteCrosstabs writes every cell of every crosstab in long form.
func WriteCrosstabs(w io.Writer, rater1, rater2 string, scores []agreement.LabelScore) error {
	if rater1 == "" {
		rater1 = "rater1"
	}
	if rater2 == "" {
		rater2 = "rater2"
	}
	rows := [][]string{{"label", rater1, rater2, "count", "agreement"}}
	for _, s := range scores {
		ct := s.Crosstab
		if ct == nil {
			continue
		}
		agree := FormatFloat(ct.Agreement())
		for _, a := range ct.Categories {
			for _, b := range ct.Categories {
				rows = append(rows, []string{s.Label, a, b, strconv.Itoa(ct.Count(a, b)), agree})
			}
		}
	}
	return writeAll(w, rows)
}

// WriteCoding writes c labels-by-items, the layout sheet.Read takes by
// default.
func WriteCoding(w io.Writer, c coding.Coding) error {
	items := c.Items()
	rows := [][]string{append([]string{"label"}, items...)}
	for _, label := range c.Labels() {
		row := []string{label}
		for _, item := range items {
			raw, _ := c.Value(item, label)
			row = append(row, coding.Canonical(raw))
		}
		rows = append(rows, row)
	}
	return writeAll(w, rows)
}
