package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/sirupsen/logrus"
)

// ============================================================================
// CLEAN — Fixed transformation of the raw frame into the analysis table
// ============================================================================
// Steps, in order:
//   a. validate the header row, keep declared columns, snake_case the names
//   b. parse occur_date (month/day/year) to ISO text, derive occur_year
//   c. parse occur_time (HH:MM:SS), derive occur_hour
//   d. cast the categorical columns to string level sets
//   e. drop the identifier and location description columns
//   f. replace nulls in the perpetrator columns with the Unknown sentinel
//
// Row count is preserved: cleaning transforms and drops columns, never rows.
// Malformed date or time cells become null; they are counted and logged, not
// fatal, since the live extract grows daily and one bad row should not take
// the report down.
// ============================================================================

// Layouts of the portal's date and time text.
const (
	dateLayout = "01/02/2006"
	timeLayout = "15:04:05"
	isoLayout  = "2006-01-02"
)

// CleanStats accounts for what cleaning changed.
type CleanStats struct {
	Rows           int
	MalformedDates int
	MalformedTimes int
	FilledUnknown  map[string]int // cleaned column name → cells filled
	DroppedColumns []string
}

// FilledTotal returns the number of cells replaced with the Unknown sentinel.
func (s CleanStats) FilledTotal() int {
	total := 0
	for _, n := range s.FilledUnknown {
		total += n
	}
	return total
}

// Clean runs the fixed cleaning pipeline over a loaded frame.
func Clean(df dataframe.DataFrame) (*Table, CleanStats, error) {
	stats := CleanStats{
		FilledUnknown: make(map[string]int),
	}

	// a. header validation + canonical names
	actual, err := ValidateHeaders(df.Names())
	if err != nil {
		return nil, stats, err
	}
	if len(df.Names()) > len(actual) {
		keep := make(map[string]bool, len(actual))
		for _, name := range actual {
			keep[name] = true
		}
		var extras []string
		for _, name := range df.Names() {
			if !keep[name] {
				extras = append(extras, name)
			}
		}
		logrus.WithField("columns", strings.Join(extras, ", ")).Warn("ignoring undeclared columns")
	}
	df = df.Select(actual)
	if df.Err != nil {
		return nil, stats, fmt.Errorf("failed to select declared columns: %w", df.Err)
	}
	canon := make([]string, len(Columns))
	for i, c := range Columns {
		canon[i] = c.Name
	}
	if err := df.SetNames(canon...); err != nil {
		return nil, stats, fmt.Errorf("failed to rename columns: %w", err)
	}
	stats.Rows = df.Nrow()

	// b. dates
	df, stats.MalformedDates = parseDates(df)

	// c. times
	df, stats.MalformedTimes = parseTimes(df)

	// d. categorical cast
	for _, name := range CategoricalColumns() {
		df = df.Mutate(series.New(df.Col(name).Records(), series.String, name))
		if df.Err != nil {
			return nil, stats, fmt.Errorf("failed to cast %s: %w", name, df.Err)
		}
	}

	// e. drops
	stats.DroppedColumns = DroppedColumns()
	df = df.Drop(stats.DroppedColumns)
	if df.Err != nil {
		return nil, stats, fmt.Errorf("failed to drop columns: %w", df.Err)
	}

	// f. sentinel fill
	for _, name := range FilledColumns() {
		recs := df.Col(name).Records()
		filled := 0
		for i, v := range recs {
			if v == "NaN" {
				recs[i] = Unknown
				filled++
			}
		}
		df = df.Mutate(series.New(recs, series.String, name))
		if df.Err != nil {
			return nil, stats, fmt.Errorf("failed to fill %s: %w", name, df.Err)
		}
		stats.FilledUnknown[name] = filled
	}

	if stats.MalformedDates > 0 || stats.MalformedTimes > 0 {
		logrus.WithFields(logrus.Fields{
			"malformed_dates": stats.MalformedDates,
			"malformed_times": stats.MalformedTimes,
		}).Warn("malformed date/time cells nulled")
	}
	logrus.WithFields(logrus.Fields{
		"rows":           stats.Rows,
		"columns":        df.Ncol(),
		"filled_unknown": stats.FilledTotal(),
	}).Info("cleaned dataset")

	return newTable(df), stats, nil
}

// parseDates rewrites occur_date as ISO text and appends occur_year.
// Unparseable cells null both.
func parseDates(df dataframe.DataFrame) (dataframe.DataFrame, int) {
	raw := df.Col("occur_date").Records()
	iso := make([]string, len(raw))
	years := make([]string, len(raw))
	malformed := 0

	for i, cell := range raw {
		if cell == "NaN" {
			iso[i], years[i] = "NaN", "NaN"
			continue
		}
		t, err := time.Parse(dateLayout, strings.TrimSpace(cell))
		if err != nil {
			malformed++
			iso[i], years[i] = "NaN", "NaN"
			continue
		}
		iso[i] = t.Format(isoLayout)
		years[i] = strconv.Itoa(t.Year())
	}

	df = df.Mutate(series.New(iso, series.String, "occur_date"))
	df = df.Mutate(series.New(years, series.Int, DerivedYear))
	return df, malformed
}

// parseTimes normalizes occur_time and appends occur_hour.
// Unparseable cells null both.
func parseTimes(df dataframe.DataFrame) (dataframe.DataFrame, int) {
	raw := df.Col("occur_time").Records()
	norm := make([]string, len(raw))
	hours := make([]string, len(raw))
	malformed := 0

	for i, cell := range raw {
		if cell == "NaN" {
			norm[i], hours[i] = "NaN", "NaN"
			continue
		}
		t, err := time.Parse(timeLayout, strings.TrimSpace(cell))
		if err != nil {
			malformed++
			norm[i], hours[i] = "NaN", "NaN"
			continue
		}
		norm[i] = t.Format(timeLayout)
		hours[i] = strconv.Itoa(t.Hour())
	}

	df = df.Mutate(series.New(norm, series.String, "occur_time"))
	df = df.Mutate(series.New(hours, series.Int, DerivedHour))
	return df, malformed
}
