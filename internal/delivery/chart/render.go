// Package chart renders the dashboard summaries as PNG images.
package chart

import (
	"bytes"
	"fmt"
	"math"

	"github.com/pichpich13/user-dashboard/internal/domain"
	gochart "github.com/wcharczuk/go-chart/v2"
)

const (
	densityPoints = 200
	chartHeight   = 512
	barWidth      = 60
	barSpacing    = 20
	minWidth      = 640
)

// ScoreDensity renders a filled kernel density curve of the scores
func ScoreDensity(scores []float64) ([]byte, error) {
	xs, ys := GaussianKDE(scores, densityPoints)
	if len(xs) == 0 {
		return nil, domain.ErrNoData
	}

	graph := gochart.Chart{
		Title:  "Ecoscore density per product",
		Height: chartHeight,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40},
		},
		XAxis: gochart.XAxis{Name: "Ecoscore"},
		YAxis: gochart.YAxis{
			Name: "Density",
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.4f", f)
				}
				return ""
			},
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    "density",
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeColor: gochart.ColorBlue,
					FillColor:   gochart.ColorBlue.WithAlpha(64),
				},
			},
		},
	}

	return render(graph)
}

// GradeCounts renders one bar per grade label
func GradeCounts(counts []domain.GradeCount) ([]byte, error) {
	bars := make([]gochart.Value, 0, len(counts))
	for _, c := range counts {
		bars = append(bars, gochart.Value{Label: c.Grade, Value: float64(c.Count)})
	}
	return barChart("Ecoscore grade count per product", bars)
}

// CategoryMeans renders the category summary rows in their given order
func CategoryMeans(rows []domain.CategoryMean) ([]byte, error) {
	bars := make([]gochart.Value, 0, len(rows))
	for _, row := range rows {
		bars = append(bars, gochart.Value{Label: row.Category, Value: row.MeanScore})
	}
	return barChart("Mean Ecoscore by product category", bars)
}

func barChart(title string, bars []gochart.Value) ([]byte, error) {
	if len(bars) == 0 {
		return nil, domain.ErrNoData
	}

	graph := gochart.BarChart{
		Title:  title,
		Height: chartHeight,
		Width:  barChartWidth(len(bars)),
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40},
		},
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		YAxis: gochart.YAxis{
			Range: valueRange(bars),
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render bar chart: %w", err)
	}
	return buf.Bytes(), nil
}

func render(graph gochart.Chart) ([]byte, error) {
	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf.Bytes(), nil
}

func barChartWidth(n int) int {
	width := 160 + n*(barWidth+barSpacing)
	if width < minWidth {
		return minWidth
	}
	return width
}

// valueRange always includes 0 and never collapses to a single value
func valueRange(bars []gochart.Value) *gochart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, b := range bars {
		lo = math.Min(lo, b.Value)
		hi = math.Max(hi, b.Value)
	}
	if hi == lo {
		hi = lo + 1
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi * 1.1}
}
