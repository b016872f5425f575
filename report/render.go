package report

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/borolytics/borolytics/analytics"
	"github.com/borolytics/borolytics/trend"
)

// ============================================================================
// RENDER — ChartData to PNG bytes
// ============================================================================
// Bar charts put one bar per group with the labels on a nominal axis. Line
// charts plot against numeric labels when all labels parse (years, hours),
// falling back to a nominal axis otherwise. The yearly chart can overlay
// the fitted trend line.
// ============================================================================

const (
	chartWidth  = 7 * vg.Inch
	chartHeight = 4 * vg.Inch
)

// RenderPNG draws a chart into PNG bytes.
func RenderPNG(c analytics.ChartData) ([]byte, error) {
	return renderPNG(c, nil)
}

// RenderTrendPNG draws a line chart with the fitted line overlaid.
func RenderTrendPNG(c analytics.ChartData, fit *trend.Fit) ([]byte, error) {
	return renderPNG(c, fit)
}

func renderPNG(c analytics.ChartData, fit *trend.Fit) ([]byte, error) {
	if c.Empty() {
		return nil, fmt.Errorf("report: chart %q has no data", c.Title)
	}

	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Y.Min = 0
	p.Add(plotter.NewGrid())

	fill := parseHexColor(c.Color)

	switch c.Kind {
	case analytics.ChartLine:
		if err := addLine(p, c, fill, fit); err != nil {
			return nil, err
		}
	default:
		if err := addBars(p, c, fill); err != nil {
			return nil, err
		}
	}

	wt, err := p.WriterTo(chartWidth, chartHeight, "png")
	if err != nil {
		return nil, fmt.Errorf("report: failed to render %q: %w", c.Title, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("report: failed to encode %q: %w", c.Title, err)
	}
	return buf.Bytes(), nil
}

func addBars(p *plot.Plot, c analytics.ChartData, fill color.Color) error {
	bars, err := plotter.NewBarChart(plotter.Values(c.Values), vg.Points(28))
	if err != nil {
		return fmt.Errorf("report: bar chart %q: %w", c.Title, err)
	}
	bars.LineStyle.Width = 0
	bars.Color = fill
	p.Add(bars)
	p.NominalX(c.Labels...)
	rotateLongLabels(p, c.Labels)
	return nil
}

func addLine(p *plot.Plot, c analytics.ChartData, stroke color.Color, fit *trend.Fit) error {
	xs, numeric := numericLabels(c.Labels)

	pts := make(plotter.XYs, len(c.Values))
	for i, v := range c.Values {
		x := float64(i)
		if numeric {
			x = xs[i]
		}
		pts[i].X = x
		pts[i].Y = v
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("report: line chart %q: %w", c.Title, err)
	}
	line.Color = stroke
	line.Width = vg.Points(1.5)
	points.Color = stroke
	points.Radius = vg.Points(2.5)
	p.Add(line, points)

	if !numeric {
		p.NominalX(c.Labels...)
	}

	if fit != nil && numeric {
		fn := plotter.NewFunction(fit.Predict)
		fn.Color = color.RGBA{R: 0x6B, G: 0x72, B: 0x80, A: 0xFF}
		fn.Width = vg.Points(1)
		fn.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(fn)
		p.Legend.Add("fitted trend", fn)
		p.Legend.Top = true
	}

	return nil
}

// numericLabels parses labels as floats. Reports false if any fails.
func numericLabels(labels []string) ([]float64, bool) {
	xs := make([]float64, len(labels))
	for i, l := range labels {
		v, err := strconv.ParseFloat(strings.TrimSpace(l), 64)
		if err != nil {
			return nil, false
		}
		xs[i] = v
	}
	return xs, true
}

// rotateLongLabels tilts the x tick labels when any is long enough to
// collide with its neighbors.
func rotateLongLabels(p *plot.Plot, labels []string) {
	long := false
	for _, l := range labels {
		if len(l) > 10 {
			long = true
			break
		}
	}
	if !long {
		return
	}
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
}

// parseHexColor reads "#RRGGBB". Anything else falls back to the first
// palette color.
func parseHexColor(s string) color.RGBA {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 6 {
		if v, err := strconv.ParseUint(s, 16, 32); err == nil {
			return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}
		}
	}
	return color.RGBA{R: 0x4F, G: 0x46, B: 0xE5, A: 0xFF}
}
