package charts

import (
	"bytes"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Bar colors of the performance chart.
var (
	colorNegative    = drawing.ColorFromHex("F44336")
	colorNonNegative = drawing.ColorFromHex("4CAF50")
)

// palette is the qualitative color cycle used for allocation slices,
// scatter categories and comparison lines.
var palette = []drawing.Color{
	drawing.ColorFromHex("636EFA"),
	drawing.ColorFromHex("EF553B"),
	drawing.ColorFromHex("00CC96"),
	drawing.ColorFromHex("AB63FA"),
	drawing.ColorFromHex("FFA15A"),
	drawing.ColorFromHex("19D3F3"),
	drawing.ColorFromHex("FF6692"),
	drawing.ColorFromHex("B6E880"),
}

func paletteColor(i int) drawing.Color {
	return palette[i%len(palette)]
}

// RenderAllocationPNG renders the allocation dataset as a donut chart.
func RenderAllocationPNG(slices []AllocationSlice) ([]byte, error) {
	if len(slices) == 0 {
		return nil, fmt.Errorf("no allocation slices to render")
	}

	values := make([]chart.Value, 0, len(slices))
	for i, s := range slices {
		if s.Value <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: s.Category,
			Value: s.Value,
			Style: chart.Style{FillColor: paletteColor(i)},
		})
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no positive allocation values to render")
	}

	graph := chart.DonutChart{
		Title:  "Portfolio Allocation",
		Width:  600,
		Height: 400,
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPerformancePNG renders the performance dataset as a bar chart,
// red for losses and green otherwise. Bars with an undefined return are
// drawn at zero height.
func RenderPerformancePNG(bars []PerformanceBar) ([]byte, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("no performance bars to render")
	}

	values := make([]chart.Value, 0, len(bars))
	for _, b := range bars {
		color := colorNonNegative
		if b.Sign == "negative" {
			color = colorNegative
		}
		value := b.ReturnPct
		if math.IsNaN(value) {
			value = 0
		}
		values = append(values, chart.Value{
			Label: b.AssetID,
			Value: value,
			Style: chart.Style{FillColor: color, StrokeColor: color},
		})
	}

	graph := chart.BarChart{
		Title:    "Performance by Asset",
		Width:    900,
		Height:   400,
		BarWidth: 40,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		Bars: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderRiskReturnPNG renders the risk/return dataset as a scatter,
// one series per category. Points with an undefined return or risk are
// skipped (the PNG cannot place them).
func RenderRiskReturnPNG(points []RiskReturnPoint) ([]byte, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("no risk/return points to render")
	}

	// Group by category, keeping first-seen order for stable colors.
	var categories []string
	grouped := make(map[string][]RiskReturnPoint)
	for _, p := range points {
		if math.IsNaN(p.Risk) || math.IsNaN(p.Return) {
			continue
		}
		if _, ok := grouped[p.Category]; !ok {
			categories = append(categories, p.Category)
		}
		grouped[p.Category] = append(grouped[p.Category], p)
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("no plottable risk/return points")
	}

	series := make([]chart.Series, 0, len(categories))
	for i, category := range categories {
		pts := grouped[category]
		xs := make([]float64, len(pts))
		ys := make([]float64, len(pts))
		for j, p := range pts {
			xs[j] = p.Risk
			ys[j] = p.Return
		}
		series = append(series, chart.ContinuousSeries{
			Name: category,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    6,
				DotColor:    paletteColor(i),
			},
			XValues: xs,
			YValues: ys,
		})
	}

	graph := chart.Chart{
		Title:  "Risk vs Return",
		Width:  900,
		Height: 500,
		XAxis:  chart.XAxis{Name: "Risk"},
		YAxis:  chart.YAxis{Name: "Return %"},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderHistoricalPNG renders the historical comparison dataset as one
// line per asset, percentage change from period start on the Y axis.
func RenderHistoricalPNG(series []HistoricalSeries) ([]byte, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("no historical series to render")
	}

	chartSeries := make([]chart.Series, 0, len(series))
	for i, s := range series {
		if len(s.Points) < 2 {
			continue
		}
		ts := chart.TimeSeries{
			Name: s.AssetID,
			Style: chart.Style{
				StrokeColor: paletteColor(i),
				StrokeWidth: 2,
			},
		}
		for _, p := range s.Points {
			ts.XValues = append(ts.XValues, p.Time)
			ts.YValues = append(ts.YValues, p.PctChange)
		}
		chartSeries = append(chartSeries, ts)
	}
	if len(chartSeries) == 0 {
		return nil, fmt.Errorf("no series with enough points to render")
	}

	graph := chart.Chart{
		Title:  "Historical Performance (% change)",
		Width:  900,
		Height: 450,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.1f%%", f)
				}
				return ""
			},
		},
		Series: chartSeries,
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
