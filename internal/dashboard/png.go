package dashboard

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"tradesim/internal/domain"
)

// RenderHistoryPNG renders one symbol's price history as a PNG line
// chart. Points are expected oldest first; dated points are plotted on a
// time axis, undated ones fall back to their index.
func RenderHistoryPNG(symbol string, points []domain.PricePoint, width, height int) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(points))
	}

	dates := make([]time.Time, len(points))
	dated := true
	for i, p := range points {
		t, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			dated = false
			break
		}
		dates[i] = t
	}

	xValues := make([]float64, len(points))
	yValues := make([]float64, len(points))
	for i, p := range points {
		if dated {
			xValues[i] = chart.TimeToFloat64(dates[i])
		} else {
			xValues[i] = float64(i)
		}
		yValues[i] = p.Value()
	}

	trend := drawing.ColorFromHex("16a34a") // green-600
	if yValues[len(yValues)-1] < yValues[0] {
		trend = drawing.ColorFromHex("dc2626") // red-600
	}

	series := chart.ContinuousSeries{
		Name: symbol,
		Style: chart.Style{
			StrokeColor: trend,
			StrokeWidth: 2.0,
			FillColor:   trend.WithAlpha(32),
		},
		XValues: xValues,
		YValues: yValues,
	}

	graph := chart.Chart{
		Title:  symbol + " close",
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.2f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{series},
	}
	if dated {
		graph.XAxis = chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return chart.TimeFromFloat64(f).Format("Jan 02")
				}
				return ""
			},
		}
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
