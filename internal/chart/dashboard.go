package chart

import (
	"fmt"
	"io"
	"math"

	"github.com/banshee-data/rater-agreement/internal/agreement"
	"github.com/banshee-data/rater-agreement/internal/coding"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// DashboardOptions controls the HTML dashboard.
type DashboardOptions struct {
	Title string
	// AssetsHost overrides where the echarts scripts are loaded from.
	AssetsHost string
	// ICC adds a panel of ICC3 scores when non-empty.
	ICC []agreement.LabelScore
}

// RenderDashboard writes an HTML page with one bar chart per label kind,
// a status breakdown and, optionally, ICC3 scores.
func RenderDashboard(w io.Writer, res agreement.Result, o DashboardOptions) error {
	if o.Title == "" {
		o.Title = fmt.Sprintf("Inter-rater agreement: %s vs %s", res.Rater1, res.Rater2)
	}
	page := components.NewPage()
	page.PageTitle = o.Title
	if o.AssetsHost != "" {
		page.SetAssetsHost(o.AssetsHost)
	}

	scores := res.Ordered()
	for _, kind := range []coding.Kind{coding.Binary, coding.Ordinal, coding.Categorical} {
		var subset []agreement.LabelScore
		for _, s := range scores {
			if s.Kind == kind {
				subset = append(subset, s)
			}
		}
		if len(subset) == 0 {
			continue
		}
		page.AddCharts(scoreBar(fmt.Sprintf("%s labels", kind), subtitle(subset), subset, o.AssetsHost))
	}
	if len(o.ICC) > 0 {
		page.AddCharts(scoreBar("ICC3", subtitle(o.ICC), o.ICC, o.AssetsHost))
	}
	page.AddCharts(statusBar(res, o.AssetsHost))

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	return nil
}

func subtitle(scores []agreement.LabelScore) string {
	methods := map[agreement.Method]bool{}
	var list []string
	for _, s := range scores {
		if !methods[s.Method] {
			methods[s.Method] = true
			list = append(list, string(s.Method))
		}
	}
	return fmt.Sprintf("method=%v labels=%d", list, len(scores))
}

func scoreBar(title, sub string, scores []agreement.LabelScore, assets string) *charts.Bar {
	x := make([]string, 0, len(scores))
	y := make([]opts.BarData, 0, len(scores))
	for _, s := range scores {
		x = append(x, s.Label)
		var v interface{} = "-"
		if !math.IsNaN(s.Score) {
			v = math.Round(s.Score*10000) / 10000
		}
		y = append(y, opts.BarData{Name: string(s.Status), Value: v})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px", AssetsHost: assets}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: sub}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "score", Max: 1}),
	)
	bar.SetXAxis(x).
		AddSeries("score", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

func statusBar(res agreement.Result, assets string) *charts.Bar {
	sum := res.Summary()
	statuses := []agreement.Status{agreement.StatusOK, agreement.StatusDegenerate, agreement.StatusNotComputable}
	x := make([]string, len(statuses))
	y := make([]opts.BarData, len(statuses))
	for i, st := range statuses {
		x[i] = string(st)
		y[i] = opts.BarData{Value: sum[st]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "320px", AssetsHost: assets}),
		charts.WithTitleOpts(opts.Title{Title: "Label status", Subtitle: fmt.Sprintf("%d labels", len(res.Labels))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("labels", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}
