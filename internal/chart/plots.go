package chart

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/banshee-data/rater-agreement/internal/agreement"
	"github.com/banshee-data/rater-agreement/internal/frequency"
	"github.com/banshee-data/rater-agreement/internal/mca"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrNoData is returned when a chart would have nothing on it.
var ErrNoData = errors.New("nothing to plot")

func newPlot(title, x, y string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = x
	p.Y.Label.Text = y
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p
}

func slantLabels(p *plot.Plot) {
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
}

// zeroNaN replaces undefined values so bar charts accept them.
func zeroNaN(vs []float64) plotter.Values {
	out := make(plotter.Values, len(vs))
	for i, v := range vs {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[i] = v
		}
	}
	return out
}

// barWidth spreads n bars of a group across most of one nominal slot.
func barWidth(n int) vg.Length {
	if n < 1 {
		n = 1
	}
	return vg.Points(48 / float64(n))
}

// Distribution plots how often each rating was given to label, one line
// per source group.
func Distribution(label string, tables []*frequency.Table) (*plot.Plot, error) {
	p := newPlot("Scores for: "+label, "Rating", "Frequency")
	colors := palette(len(tables))
	plotted := 0
	for i, t := range tables {
		row := t.Row(label)
		if row == nil {
			continue
		}
		pts := make(plotter.XYs, len(row))
		for j, v := range row {
			pts[j] = plotter.XY{X: t.Bins[j], Y: v}
		}
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return nil, err
		}
		line.Color = colors[i]
		line.Width = vg.Points(1.5)
		points.GlyphStyle.Color = colors[i]
		points.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(line, points)
		p.Legend.Add(t.Group, line, points)
		plotted++
	}
	if plotted == 0 {
		return nil, fmt.Errorf("label %q: %w", label, ErrNoData)
	}
	p.Y.Min = 0
	return p, nil
}

// Averages plots the Overall average rating per label.
func Averages(a *frequency.AverageTable) (*plot.Plot, error) {
	if len(a.Labels) == 0 {
		return nil, ErrNoData
	}
	p := newPlot("Average Rating per Code Across All Guidelines", "", "Average Rating")
	bars, err := plotter.NewBarChart(zeroNaN(a.Overall), vg.Points(18))
	if err != nil {
		return nil, err
	}
	bars.Color = palette(1)[0]
	p.Add(bars)
	p.NominalX(a.Labels...)
	slantLabels(p)
	p.Y.Min = 0
	return p, nil
}

// Scores plots one bar per computable label score.
func Scores(title string, scores []agreement.LabelScore) (*plot.Plot, error) {
	var labels []string
	var values []float64
	for _, s := range scores {
		if !s.Computable() {
			continue
		}
		labels = append(labels, s.Label)
		values = append(values, s.Score)
	}
	if len(labels) == 0 {
		return nil, ErrNoData
	}
	p := newPlot(title, "", "Agreement")
	bars, err := plotter.NewBarChart(zeroNaN(values), vg.Points(18))
	if err != nil {
		return nil, err
	}
	bars.Color = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	p.Add(bars)
	p.NominalX(labels...)
	slantLabels(p)
	p.Y.Max = 1
	return p, nil
}

// Presence plots element percentages as grouped bars per source.
func Presence(pr *frequency.Presence, title string) (*plot.Plot, error) {
	if pr == nil || len(pr.Elements) == 0 {
		return nil, ErrNoData
	}
	if title == "" {
		title = pr.Rater + "'s Coding"
	}
	p := newPlot(title, "", "% of Documents")
	colors := palette(len(pr.Elements))
	w := barWidth(len(pr.Elements))
	for j, e := range pr.Elements {
		vs := make([]float64, len(pr.Sources))
		for i, src := range pr.Sources {
			vs[i] = pr.Get(src, e)
		}
		bars, err := plotter.NewBarChart(zeroNaN(vs), w)
		if err != nil {
			return nil, err
		}
		bars.Color = colors[j]
		bars.Offset = vg.Length(float64(j)-float64(len(pr.Elements)-1)/2) * w
		p.Add(bars)
		p.Legend.Add(e, bars)
	}
	p.NominalX(pr.Sources...)
	p.Y.Min, p.Y.Max = 0, 100
	return p, nil
}

// Goals plots goal counts as one stacked bar per source.
func Goals(g *frequency.GoalTable, title string) (*plot.Plot, error) {
	if g == nil || len(g.Goals) == 0 {
		return nil, ErrNoData
	}
	if title == "" {
		title = "Coder: " + g.Rater
	}
	p := newPlot(title, "", "Number of Documents")
	colors := palette(len(g.Goals))
	var below *plotter.BarChart
	for j, goal := range g.Goals {
		vs := make([]float64, len(g.Sources))
		for i, src := range g.Sources {
			vs[i] = float64(g.Get(src, goal))
		}
		bars, err := plotter.NewBarChart(zeroNaN(vs), vg.Points(30))
		if err != nil {
			return nil, err
		}
		bars.Color = colors[j]
		bars.LineStyle.Width = vg.Points(0.5)
		if below != nil {
			bars.StackOn(below)
		}
		p.Add(bars)
		p.Legend.Add(goal, bars)
		below = bars
	}
	p.NominalX(g.Sources...)
	p.Y.Min = 0
	return p, nil
}

// MCAScatter plots the first two row components, coloured by the first
// letter of each item ID.
func MCAScatter(res *mca.Result) (*plot.Plot, error) {
	if res == nil || res.Components() == 0 {
		return nil, ErrNoData
	}
	groups := make(map[string]plotter.XYs)
	for i, item := range res.Items {
		letter := "?"
		if item != "" {
			letter = strings.ToUpper(item[:1])
		}
		y := 0.0
		if res.Components() > 1 {
			y = res.RowCoords.At(i, 1)
		}
		groups[letter] = append(groups[letter], plotter.XY{X: res.RowCoords.At(i, 0), Y: y})
	}
	letters := make([]string, 0, len(groups))
	for l := range groups {
		letters = append(letters, l)
	}
	sort.Strings(letters)

	p := newPlot("Multiple correspondence analysis", "Component 1", "Component 2")
	colors := palette(len(letters))
	for i, l := range letters {
		s, err := plotter.NewScatter(groups[l])
		if err != nil {
			return nil, err
		}
		s.GlyphStyle.Color = colors[i]
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(3)
		p.Add(s)
		p.Legend.Add(l, s)
	}
	return p, nil
}
