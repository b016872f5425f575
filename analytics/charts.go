package analytics

// ============================================================================
// CHART BUILDER — Produces render-ready ChartData from a Result
// ============================================================================
// ChartData is renderer-agnostic: labels, values, axis titles, one series
// color. The report package turns it into PNG bytes.
// ============================================================================

// ChartKind selects the mark type.
type ChartKind int

const (
	ChartBar  ChartKind = iota // one bar per group
	ChartLine                  // line with a point per group
)

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// PaletteColor returns the i-th palette color, wrapping around.
func PaletteColor(i int) string {
	if i < 0 {
		i = -i
	}
	return defaultColors[i%len(defaultColors)]
}

// ChartData defines how to render a single-series chart.
type ChartData struct {
	Kind   ChartKind
	Title  string
	XLabel string
	YLabel string
	Labels []string
	Values []float64
	Color  string // hex, e.g. "#4F46E5"
}

// Empty reports whether there is nothing to draw.
func (c ChartData) Empty() bool {
	return len(c.Values) == 0
}

// BarChart builds a bar chart over a count result, one bar per group.
func BarChart(title, xLabel, yLabel string, r Result) ChartData {
	return buildChart(ChartBar, title, xLabel, yLabel, r, 0)
}

// LineChart builds a line+point chart over a count result, typically an
// ordered series such as counts per year.
func LineChart(title, xLabel, yLabel string, r Result) ChartData {
	return buildChart(ChartLine, title, xLabel, yLabel, r, 1)
}

func buildChart(kind ChartKind, title, xLabel, yLabel string, r Result, colorIndex int) ChartData {
	c := ChartData{
		Kind:   kind,
		Title:  title,
		XLabel: xLabel,
		YLabel: yLabel,
		Color:  PaletteColor(colorIndex),
	}
	for _, g := range r.Groups {
		c.Labels = append(c.Labels, g.Label)
		c.Values = append(c.Values, float64(g.Count))
	}
	return c
}
