// Package charts renders projection and comparison PNGs.
package charts

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"Monexa/internal/domain/models"
)

var scenarioColors = map[string]drawing.Color{
	"conservative": drawing.ColorFromHex("16a34a"), // green-600
	"moderate":     drawing.ColorFromHex("2563eb"), // blue-600
	"aggressive":   drawing.ColorFromHex("dc2626"), // red-600
}

var palette = []drawing.Color{
	drawing.ColorFromHex("2563eb"),
	drawing.ColorFromHex("dc2626"),
	drawing.ColorFromHex("16a34a"),
	drawing.ColorFromHex("d97706"),
	drawing.ColorFromHex("7c3aed"),
	drawing.ColorFromHex("0891b2"),
	drawing.ColorFromHex("db2777"),
	drawing.ColorFromHex("4b5563"),
}

// RenderProjection renders one line per scenario over the month axis.
func RenderProjection(projections []models.ScenarioProjection) ([]byte, error) {
	if len(projections) == 0 {
		return nil, fmt.Errorf("no projections to render")
	}

	series := make([]chart.Series, 0, len(projections))
	for _, p := range projections {
		if len(p.Series) < 2 {
			return nil, fmt.Errorf("need at least 2 points for %s, got %d", p.Scenario.Label, len(p.Series))
		}
		xs := make([]float64, len(p.Series))
		ys := make([]float64, len(p.Series))
		for i, pt := range p.Series {
			xs[i] = float64(pt.Month)
			ys[i] = pt.Value
		}
		series = append(series, chart.ContinuousSeries{
			Name: fmt.Sprintf("%s (%.0f%%)", p.Scenario.Label, p.Scenario.AnnualRate*100),
			Style: chart.Style{
				StrokeColor: scenarioColors[p.Scenario.Label],
				StrokeWidth: 2,
			},
			XValues: xs,
			YValues: ys,
		})
	}

	graph := chart.Chart{
		Title:  "Investment Growth Projection",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Name: "Months",
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			Name: "Value",
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0fk", f/1000)
				}
				return ""
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	return render(&graph)
}

// RenderComparison renders normalized close series per symbol on a shared time axis.
func RenderComparison(series map[string][]models.SeriesPoint, base float64) ([]byte, error) {
	symbols := make([]string, 0, len(series))
	for s, pts := range series {
		if len(pts) >= 2 {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("need at least one series with 2 points")
	}
	sort.Strings(symbols)

	out := make([]chart.Series, 0, len(symbols))
	for i, s := range symbols {
		pts := series[s]
		xs := make([]time.Time, len(pts))
		ys := make([]float64, len(pts))
		for j, p := range pts {
			xs[j] = p.Date
			ys[j] = p.Value
		}
		out = append(out, chart.TimeSeries{
			Name: s,
			Style: chart.Style{
				StrokeColor: palette[i%len(palette)],
				StrokeWidth: 2,
			},
			XValues: xs,
			YValues: ys,
		})
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("Normalized Performance (base %.0f)", base),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Series: out,
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	return render(&graph)
}

func render(graph *chart.Chart) ([]byte, error) {
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
