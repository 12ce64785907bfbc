package report

import (
	"io"
	"strconv"

	"github.com/banshee-data/rater-agreement/internal/coding"
	"github.com/banshee-data/rater-agreement/internal/frequency"
	"github.com/banshee-data/rater-agreement/internal/mca"
)

// WriteFrequencies writes a frequency table with one column per bin.
func WriteFrequencies(w io.Writer, t *frequency.Table) error {
	header := []string{"label"}
	for _, b := range t.Bins {
		header = append(header, coding.FormatNumber(b))
	}
	rows := [][]string{header}
	for _, label := range t.Labels {
		row := []string{label}
		for _, v := range t.Row(label) {
			row = append(row, FormatFloat(v))
		}
		rows = append(rows, row)
	}
	return writeAll(w, rows)
}

// WriteAverages writes per-group averages and the Overall column.
func WriteAverages(w io.Writer, a *frequency.AverageTable) error {
	header := append([]string{"label"}, a.Groups...)
	header = append(header, "Overall")
	rows := [][]string{header}
	for i, label := range a.Labels {
		row := []string{label}
		for _, g := range a.Groups {
			row = append(row, FormatFloat(a.Get(label, g)))
		}
		row = append(row, FormatFloat(a.Overall[i]))
		rows = append(rows, row)
	}
	return writeAll(w, rows)
}

// WritePresence writes element percentages, one row per source.
func WritePresence(w io.Writer, p *frequency.Presence) error {
	rows := [][]string{append([]string{"source"}, p.Elements...)}
	for _, src := range p.Sources {
		row := []string{src}
		for _, e := range p.Elements {
			row = append(row, FormatFloat(p.Get(src, e)))
		}
		rows = append(rows, row)
	}
	return writeAll(w, rows)
}

// WriteGoals writes goal counts, one row per source.
func WriteGoals(w io.Writer, g *frequency.GoalTable) error {
	rows := [][]string{append([]string{"source"}, g.Goals...)}
	for _, src := range g.Sources {
		row := []string{src}
		for _, goal := range g.Goals {
			row = append(row, strconv.Itoa(g.Get(src, goal)))
		}
		rows = append(rows, row)
	}
	return writeAll(w, rows)
}

func componentHeader(first string, n int) []string {
	header := []string{first}
	for k := 0; k < n; k++ {
		header = append(header, strconv.Itoa(k))
	}
	return header
}

// WriteLoadings writes the column coordinates of an MCA fit.
func WriteLoadings(w io.Writer, res *mca.Result) error {
	rows := [][]string{componentHeader("category", res.Components())}
	for i, cat := range res.Categories {
		row := []string{cat}
		for k := 0; k < res.Components(); k++ {
			row = append(row, FormatFloat(res.ColCoords.At(i, k)))
		}
		rows = append(rows, row)
	}
	return writeAll(w, rows)
}

// WriteRowScores writes the row coordinates of an MCA fit.
func WriteRowScores(w io.Writer, res *mca.Result) error {
	rows := [][]string{componentHeader("item", res.Components())}
	for i, item := range res.Items {
		row := []string{item}
		for k := 0; k < res.Components(); k++ {
			row = append(row, FormatFloat(res.RowCoords.At(i, k)))
		}
		rows = append(rows, row)
	}
	return writeAll(w, rows)
}

// WriteInertia writes eigenvalues and explained inertia per component.
func WriteInertia(w io.Writer, res *mca.Result) error {
	rows := [][]string{{"component", "eigenvalue", "explained"}}
	for k, e := range res.Eigenvalues {
		rows = append(rows, []string{strconv.Itoa(k), FormatFloat(e), FormatFloat(res.Explained[k])})
	}
	return writeAll(w, rows)
}
