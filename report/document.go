package report

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/borolytics/borolytics/analytics"
	"github.com/borolytics/borolytics/dataset"
	"github.com/borolytics/borolytics/trend"
)

// ============================================================================
// DOCUMENT — Aggregations, fit, charts and prose assembled for rendering
// ============================================================================
// Build runs the fixed set of aggregations over the cleaned table, fits the
// yearly trend, renders every chart to an inline PNG, and resolves the
// narrative templates. The result renders with Render.
// ============================================================================

// Document is the assembled report.
type Document struct {
	Title       string
	GeneratedAt time.Time
	SourceURL   string
	Rows        int
	Span        string
	Intro       []string
	Sections    []Section
}

// Section is one heading of the document.
type Section struct {
	ID    string
	Title string
	Prose []string
	Chart *Figure
	Table *analytics.TableData
}

// Figure is an inline chart image.
type Figure struct {
	Alt string
	Src template.URL
}

const pngPrefix = "data:image/png;base64,"

// PNG decodes the embedded image back to raw bytes.
func (f *Figure) PNG() ([]byte, error) {
	src := string(f.Src)
	if !strings.HasPrefix(src, pngPrefix) {
		return nil, fmt.Errorf("report: figure %q is not an inline png", f.Alt)
	}
	return base64.StdEncoding.DecodeString(src[len(pngPrefix):])
}

// Params configures document assembly.
type Params struct {
	Title     string
	SourceURL string
	Stats     dataset.CleanStats
	Now       time.Time // zero means time.Now()
}

// Build assembles the report document from a cleaned table.
func Build(tbl *dataset.Table, p Params) (*Document, error) {
	if p.Title == "" {
		p.Title = "NYPD Shooting Incidents"
	}
	if p.Now.IsZero() {
		p.Now = time.Now()
	}

	view := tbl.View()

	borough := analytics.CountBy(view, "boro", analytics.WithSort(analytics.SortLabelAsc))
	yearly := analytics.CountBy(view, dataset.DerivedYear, analytics.WithSort(analytics.SortNumericAsc))
	hours := analytics.CountBy(view, dataset.DerivedHour, analytics.WithSort(analytics.SortNumericAsc))
	perpRace := analytics.CountBy(view, "perp_race", analytics.WithSort(analytics.SortCountDesc))
	vicRace := analytics.CountBy(view, "vic_race", analytics.WithSort(analytics.SortCountDesc))
	murders := analytics.RatioBy(view, "boro",
		analytics.Filters{"statistical_murder_flag": {"true"}},
		analytics.WithSort(analytics.SortLabelAsc))

	fit, fitErr := fitYearly(yearly)
	if fitErr != nil {
		logrus.WithField("reason", fitErr).Warn("yearly trend fit skipped")
	}

	spanStart, spanEnd := span(yearly)

	vars := analytics.Merge(
		analytics.Vars("boro", borough),
		analytics.Vars("year", yearly),
		analytics.Vars("perp", perpRace),
		analytics.Vars("vic", vicRace),
		map[string]string{
			"rows":               analytics.FormatInt(tbl.Nrow()),
			"span_start":         spanStart,
			"span_end":           spanEnd,
			"peak_hour":          hourLabel(topLabel(hours)),
			"quiet_hour":         hourLabel(bottomLabel(hours)),
			"murder_share":       analytics.FormatShare(murders.Share),
			"perp_unknown_share": analytics.FormatShare(unknownShare(perpRace)),
			"cat_count":          strconv.Itoa(len(dataset.CategoricalColumns())),
			"dropped_count":      strconv.Itoa(len(p.Stats.DroppedColumns)),
			"filled_total":       analytics.FormatInt(p.Stats.FilledTotal()),
			"malformed_dates":    analytics.FormatInt(p.Stats.MalformedDates),
			"malformed_times":    analytics.FormatInt(p.Stats.MalformedTimes),
		},
		fitVars(fit),
		murderVars(murders),
	)

	doc := &Document{
		Title:       p.Title,
		GeneratedAt: p.Now,
		SourceURL:   p.SourceURL,
		Rows:        tbl.Nrow(),
		Span:        spanStart + " to " + spanEnd,
		Intro: resolveAll(vars,
			"This report summarizes {rows} shooting incidents recorded by the New York City Police Department from {span_start} through {span_end}.",
			"The source is the city's open data portal; each row is one shooting incident, including incidents without an arrest.",
			"All figures are plain counts over the cleaned extract. Nothing is adjusted for population or for changes in reporting practice.",
		),
	}

	boroughChart := analytics.BarChart("Shooting incidents by borough", "Borough", "Incidents", borough)
	yearlyChart := analytics.LineChart("Shooting incidents per year", "Year", "Incidents", yearly)
	hoursChart := analytics.LineChart("Incidents by hour of day", "Hour", "Incidents", hours)
	hoursChart.Color = analytics.PaletteColor(2)
	raceChart := analytics.BarChart("Incidents by perpetrator race", "Perpetrator race", "Incidents", perpRace)
	raceChart.Color = analytics.PaletteColor(3)

	sections := []sectionSpec{
		{
			id:    "cleaning",
			title: "Data and cleaning",
			prose: cleaningProse(p.Stats),
			table: cleaningTable(p.Stats),
		},
		{
			id:    "borough",
			title: "Incidents by borough",
			prose: []string{
				"{boro_top} accounts for the largest share of incidents, {boro_top_count} of {boro_total} ({boro_top_share}).",
				"{boro_low} recorded the fewest at {boro_low_count}.",
			},
			chart: &boroughChart,
			table: tablePtr(analytics.CountTable("Incidents by borough", "Borough", borough)),
		},
		{
			id:    "trend",
			title: "Yearly trend",
			prose: trendProse(fit),
			chart: &yearlyChart,
			fit:   fit,
			table: fitTable(fit),
		},
		{
			id:    "hours",
			title: "Time of day",
			prose: []string{
				"Shootings concentrate after dark. The peak hour is {peak_hour} and the quietest is {quiet_hour}.",
			},
			chart: &hoursChart,
		},
		{
			id:    "perpetrators",
			title: "Perpetrator demographics",
			prose: []string{
				"{perp_top} is the most frequent recorded perpetrator race description, at {perp_top_share} of incidents.",
				"Pooling the null cells with the recorded UNKNOWN level, the perpetrator race is effectively unknown for {perp_unknown_share} of incidents, so this breakdown describes what the department recorded, not who shoots.",
			},
			chart: &raceChart,
			table: tablePtr(analytics.CountTable("Incidents by perpetrator race", "Perpetrator race", perpRace)),
		},
		{
			id:    "victims",
			title: "Victim demographics",
			prose: []string{
				"{vic_top} victims account for {vic_top_share} of incidents; victim attributes are far more complete than perpetrator attributes.",
			},
			table: tablePtr(analytics.CountTable("Incidents by victim race", "Victim race", vicRace)),
		},
		{
			id:    "murders",
			title: "Fatal outcomes",
			prose: []string{
				"{murder_share} of recorded shootings were classified as murders.",
				"{murder_top} has the highest fatal share at {murder_top_share}; the spread across boroughs is narrow.",
			},
			table: tablePtr(analytics.RatioTable("Fatal share by borough", "Borough", "Murders", murders)),
		},
		{
			id:    "limitations",
			title: "Bias and limitations",
			prose: []string{
				"These figures count incidents as recorded by the department. Changes in reporting practice shift counts without any change in underlying violence.",
				"Perpetrator attributes are unknown for a large share of incidents, and the unknowns are unlikely to be distributed evenly, so conclusions about perpetrator demographics inherit that bias.",
				"Counts are not normalized by population. Borough comparisons reflect size as much as risk.",
				"Group aggregates say nothing about individuals; reading them as individual propensities is an ecological fallacy.",
			},
		},
		{
			id:    "appendix",
			title: "Appendix: cleaned schema",
			prose: []string{
				"Columns of the cleaned table. Categorical columns list the size of their observed level set, including the Unknown sentinel where it was filled.",
			},
			table: columnsTable(tbl),
		},
	}

	for _, s := range sections {
		sec := Section{
			ID:    s.id,
			Title: s.title,
			Prose: resolveAll(vars, s.prose...),
			Table: s.table,
		}
		if s.chart != nil {
			fig, err := renderFigure(*s.chart, s.fit)
			if err != nil {
				return nil, err
			}
			sec.Chart = fig
		}
		doc.Sections = append(doc.Sections, sec)
	}

	logrus.WithFields(logrus.Fields{
		"sections": len(doc.Sections),
		"rows":     doc.Rows,
		"span":     doc.Span,
	}).Debug("assembled report document")

	return doc, nil
}

type sectionSpec struct {
	id    string
	title string
	prose []string
	chart *analytics.ChartData
	fit   *trend.Fit
	table *analytics.TableData
}

// ============================================================================
// SECTION HELPERS
// ============================================================================

func renderFigure(c analytics.ChartData, fit *trend.Fit) (*Figure, error) {
	png, err := RenderTrendPNG(c, fit)
	if err != nil {
		return nil, err
	}
	b64 := base64.StdEncoding.EncodeToString(png)
	return &Figure{
		Alt: c.Title,
		Src: template.URL(pngPrefix + b64),
	}, nil
}

func fitYearly(yearly analytics.Result) (*trend.Fit, error) {
	xs := make([]float64, 0, len(yearly.Groups))
	ys := make([]float64, 0, len(yearly.Groups))
	for _, g := range yearly.Groups {
		year, err := strconv.Atoi(g.Label)
		if err != nil {
			continue
		}
		xs = append(xs, float64(year))
		ys = append(ys, float64(g.Count))
	}
	return trend.FitLinear(xs, ys)
}

func trendProse(fit *trend.Fit) []string {
	if fit == nil {
		return []string{
			"The extract covers too few distinct years to fit a meaningful trend.",
		}
	}
	prose := []string{
		"A least squares fit of annual counts on calendar year estimates a slope of {slope} incidents per year, a {direction} trend with standard error {slope_se}.",
		"The slope's two-sided p-value is {p_value}; the fit explains {r2} of the year-to-year variance.",
	}
	if fit.Significant(0.05) {
		prose = append(prose, "At the 5% level the trend is statistically distinguishable from flat.")
	} else {
		prose = append(prose, "At the 5% level the trend is not statistically distinguishable from flat.")
	}
	return prose
}

func fitVars(fit *trend.Fit) map[string]string {
	if fit == nil {
		return nil
	}
	return map[string]string{
		"slope":     fmt.Sprintf("%+.2f", fit.Slope),
		"slope_se":  fmt.Sprintf("%.2f", fit.SlopeStderr),
		"p_value":   formatP(fit.SlopeP),
		"r2":        fmt.Sprintf("%.0f%%", fit.R2*100),
		"direction": fit.Direction(),
	}
}

func murderVars(r analytics.RatioResult) map[string]string {
	if len(r.Rows) == 0 {
		return nil
	}
	top := r.Rows[0]
	for _, row := range r.Rows[1:] {
		if row.Share > top.Share {
			top = row
		}
	}
	return map[string]string{
		"murder_top":       top.Label,
		"murder_top_share": analytics.FormatShare(top.Share),
	}
}

func cleaningProse(stats dataset.CleanStats) []string {
	prose := []string{
		"Cleaning renamed the columns, parsed the date and time columns, cast {cat_count} columns to categorical levels, dropped {dropped_count} columns with no analytical value here, and filled missing perpetrator attributes with the explicit level \"" + dataset.Unknown + "\".",
		"{filled_total} perpetrator cells were null in the source and now read \"" + dataset.Unknown + "\".",
	}
	if stats.MalformedDates > 0 || stats.MalformedTimes > 0 {
		prose = append(prose,
			"{malformed_dates} date cells and {malformed_times} time cells did not parse and were treated as missing.")
	} else {
		prose = append(prose, "Every date and time cell parsed cleanly.")
	}
	prose = append(prose, "Cleaning preserved the row count: {rows} rows in, {rows} rows out.")
	return prose
}

func cleaningTable(stats dataset.CleanStats) *analytics.TableData {
	rows := make([][]string, 0, len(stats.FilledUnknown))
	for _, name := range dataset.FilledColumns() {
		rows = append(rows, []string{
			dataset.DisplayName(name),
			analytics.FormatInt(stats.FilledUnknown[name]),
		})
	}
	return tablePtr(analytics.TableData{
		Title: "Cells filled with " + dataset.Unknown,
		Columns: []analytics.TableColumn{
			{Key: "column", Label: "Column", Align: "left"},
			{Key: "filled", Label: "Cells filled", Align: "right"},
		},
		Rows: rows,
	})
}

func fitTable(fit *trend.Fit) *analytics.TableData {
	if fit == nil {
		return nil
	}
	return tablePtr(analytics.TableData{
		Title: "Least squares summary",
		Columns: []analytics.TableColumn{
			{Key: "term", Label: "Term", Align: "left"},
			{Key: "estimate", Label: "Estimate", Align: "right"},
			{Key: "stderr", Label: "Std. error", Align: "right"},
			{Key: "t", Label: "t", Align: "right"},
			{Key: "p", Label: "p", Align: "right"},
		},
		Rows: [][]string{
			{"year", fmt.Sprintf("%.2f", fit.Slope), fmt.Sprintf("%.2f", fit.SlopeStderr),
				fmt.Sprintf("%.2f", fit.SlopeT), formatP(fit.SlopeP)},
			{"intercept", fmt.Sprintf("%.1f", fit.Intercept), fmt.Sprintf("%.1f", fit.InterceptStderr),
				fmt.Sprintf("%.2f", fit.InterceptT), formatP(fit.InterceptP)},
		},
		Summary: &analytics.Summary{
			Label: fmt.Sprintf("R² = %.3f, residual SE = %.1f, n = %d years",
				fit.R2, fit.ResidualSE, fit.N),
		},
	})
}

func columnsTable(tbl *dataset.Table) *analytics.TableData {
	rows := make([][]string, 0, len(tbl.Columns()))
	for _, name := range tbl.Columns() {
		levels := ""
		if n := len(tbl.Levels(name)); n > 0 {
			levels = strconv.Itoa(n)
		}
		rows = append(rows, []string{name, dataset.DisplayName(name), kindWord(name), levels})
	}
	return tablePtr(analytics.TableData{
		Title: "Cleaned columns",
		Columns: []analytics.TableColumn{
			{Key: "name", Label: "Column", Align: "left"},
			{Key: "display", Label: "Label", Align: "left"},
			{Key: "kind", Label: "Kind", Align: "left"},
			{Key: "levels", Label: "Levels", Align: "right"},
		},
		Rows: rows,
	})
}

func kindWord(name string) string {
	if name == dataset.DerivedYear || name == dataset.DerivedHour {
		return "derived"
	}
	if c, ok := dataset.Lookup(name); ok {
		return c.Kind.String()
	}
	return ""
}

// ============================================================================
// SMALL HELPERS
// ============================================================================

func resolveAll(vars map[string]string, templates ...string) []string {
	out := make([]string, 0, len(templates))
	for _, t := range templates {
		out = append(out, analytics.Resolve(t, vars))
	}
	return out
}

func tablePtr(t analytics.TableData) *analytics.TableData {
	return &t
}

func span(yearly analytics.Result) (string, string) {
	if len(yearly.Groups) == 0 {
		return "the start", "the end of the recorded period"
	}
	return yearly.Groups[0].Label, yearly.Groups[len(yearly.Groups)-1].Label
}

func topLabel(r analytics.Result) string {
	if g, ok := r.Top(); ok {
		return g.Label
	}
	return ""
}

func bottomLabel(r analytics.Result) string {
	if g, ok := r.Bottom(); ok {
		return g.Label
	}
	return ""
}

// hourLabel turns "23" into "23:00". Non-numeric labels pass through.
func hourLabel(label string) string {
	h, err := strconv.Atoi(label)
	if err != nil {
		return label
	}
	return fmt.Sprintf("%02d:00", h)
}

// unknownShare pools the shares of all levels spelled like "unknown".
func unknownShare(r analytics.Result) float64 {
	total := 0.0
	for _, g := range r.Groups {
		if strings.EqualFold(g.Label, dataset.Unknown) {
			total += g.Share
		}
	}
	return total
}

func formatP(p float64) string {
	if p < 0.001 {
		return "< 0.001"
	}
	return fmt.Sprintf("%.3f", p)
}
