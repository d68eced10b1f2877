package dashboard

import (
	"fmt"
	"strings"
)

// Viewport describes the drawing surface a sparkline is fitted into.
// The vertical band available to data runs from PaddingTop down to
// Height-PaddingBottom.
type Viewport struct {
	Width         float64
	Height        float64
	PaddingTop    float64
	PaddingBottom float64
}

// Point is one chart coordinate in screen space.
type Point struct {
	X float64
	Y float64
}

// Sparkline is the geometry of one price series fitted to a viewport:
// a stroke polyline plus a closed fill polygon, and the trend sign for
// color selection.
type Sparkline struct {
	Points   []Point
	Area     []Point
	Positive bool
}

// Empty reports the insufficient-data sentinel. Callers render a
// placeholder instead of a chart.
func (s Sparkline) Empty() bool { return len(s.Points) == 0 }

// RenderSparkline maps a price sequence onto the viewport. It needs at
// least two prices; anything shorter yields the empty sentinel, never an
// error. X runs linearly across [0, width]; Y is min-max normalized into
// the padded band and inverted so the highest price sits highest on
// screen. A flat series draws a mid-band line. A tie between first and
// last price counts as positive.
func RenderSparkline(prices []float64, vp Viewport) Sparkline {
	if len(prices) < 2 {
		return Sparkline{}
	}

	min, max := prices[0], prices[0]
	for _, p := range prices[1:] {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	rng := max - min
	if rng == 0 {
		// Center the flat series in the band.
		rng = 1
		min -= 0.5
	}

	band := vp.Height - vp.PaddingTop - vp.PaddingBottom
	baseline := vp.Height - vp.PaddingBottom
	n := len(prices)

	points := make([]Point, n)
	for i, p := range prices {
		points[i] = Point{
			X: float64(i) / float64(n-1) * vp.Width,
			Y: vp.PaddingTop + (1-(p-min)/rng)*band,
		}
	}

	// Close the fill polygon along the baseline.
	area := make([]Point, 0, n+2)
	area = append(area, points...)
	area = append(area,
		Point{X: points[n-1].X, Y: baseline},
		Point{X: points[0].X, Y: baseline},
	)

	return Sparkline{
		Points:   points,
		Area:     area,
		Positive: prices[n-1] >= prices[0],
	}
}

// PolylinePoints renders the stroke points as an SVG-style "x,y x,y"
// attribute string.
func (s Sparkline) PolylinePoints() string { return joinPoints(s.Points) }

// AreaPoints renders the closed fill polygon the same way.
func (s Sparkline) AreaPoints() string { return joinPoints(s.Area) }

func joinPoints(pts []Point) string {
	var b strings.Builder
	for i, p := range pts {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%.2f,%.2f", p.X, p.Y)
	}
	return b.String()
}
