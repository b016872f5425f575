package dataset

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ============================================================================
// SOURCE SCHEMA — Declared shape of the NYPD shooting incident extract
// ============================================================================
// The feed publishes a fixed 21-column layout, so nothing is inferred from
// samples: the header row is validated against this table and the run aborts
// on drift. Extra columns the portal may append later are tolerated and
// ignored; a missing declared column is fatal.
// ============================================================================

// Kind classifies how a source column is treated during cleaning.
type Kind int

const (
	KindText        Kind = iota // free text, left as-is
	KindDate                    // month/day/year text, parsed
	KindTime                    // HH:MM:SS text, parsed
	KindCategorical             // finite level set after casting
	KindNumeric                 // codes and coordinates, left typed
)

// String returns the lowercase kind word used in the report appendix.
func (k Kind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindCategorical:
		return "categorical"
	case KindNumeric:
		return "numeric"
	default:
		return "text"
	}
}

// Unknown is the sentinel level substituted for missing categorical values.
const Unknown = "Unknown"

// Column describes one column of the source extract.
type Column struct {
	Source  string // header as published by the portal
	Name    string // snake_case name after cleaning
	Display string
	Kind    Kind
	Drop    bool // removed from the cleaned table
	Fill    bool // nulls replaced with the Unknown sentinel
}

// Columns is the declared source schema, in published order.
var Columns = []Column{
	{Source: "INCIDENT_KEY", Name: "incident_key", Display: "Incident Key", Kind: KindNumeric, Drop: true},
	{Source: "OCCUR_DATE", Name: "occur_date", Display: "Occurrence Date", Kind: KindDate},
	{Source: "OCCUR_TIME", Name: "occur_time", Display: "Occurrence Time", Kind: KindTime},
	{Source: "BORO", Name: "boro", Display: "Borough", Kind: KindCategorical},
	{Source: "LOC_OF_OCCUR_DESC", Name: "loc_of_occur_desc", Display: "Location of Occurrence", Kind: KindText, Drop: true},
	{Source: "PRECINCT", Name: "precinct", Display: "Precinct", Kind: KindNumeric},
	{Source: "JURISDICTION_CODE", Name: "jurisdiction_code", Display: "Jurisdiction Code", Kind: KindCategorical},
	{Source: "LOC_CLASSFCTN_DESC", Name: "loc_classfctn_desc", Display: "Location Classification", Kind: KindText, Drop: true},
	{Source: "LOCATION_DESC", Name: "location_desc", Display: "Location Description", Kind: KindText, Drop: true},
	{Source: "STATISTICAL_MURDER_FLAG", Name: "statistical_murder_flag", Display: "Statistical Murder Flag", Kind: KindCategorical},
	{Source: "PERP_AGE_GROUP", Name: "perp_age_group", Display: "Perpetrator Age Group", Kind: KindCategorical, Fill: true},
	{Source: "PERP_SEX", Name: "perp_sex", Display: "Perpetrator Sex", Kind: KindCategorical, Fill: true},
	{Source: "PERP_RACE", Name: "perp_race", Display: "Perpetrator Race", Kind: KindCategorical, Fill: true},
	{Source: "VIC_AGE_GROUP", Name: "vic_age_group", Display: "Victim Age Group", Kind: KindCategorical},
	{Source: "VIC_SEX", Name: "vic_sex", Display: "Victim Sex", Kind: KindCategorical},
	{Source: "VIC_RACE", Name: "vic_race", Display: "Victim Race", Kind: KindCategorical},
	{Source: "X_COORD_CD", Name: "x_coord_cd", Display: "X Coordinate", Kind: KindNumeric},
	{Source: "Y_COORD_CD", Name: "y_coord_cd", Display: "Y Coordinate", Kind: KindNumeric},
	{Source: "Latitude", Name: "latitude", Display: "Latitude", Kind: KindNumeric},
	{Source: "Longitude", Name: "longitude", Display: "Longitude", Kind: KindNumeric},
	{Source: "Lon_Lat", Name: "lon_lat", Display: "Point", Kind: KindText},
}

// Columns derived during cleaning. Not part of the source schema.
const (
	DerivedYear = "occur_year"
	DerivedHour = "occur_hour"
)

// ErrSchemaDrift reports a header row that no longer matches the declared schema.
var ErrSchemaDrift = errors.New("dataset: source schema drift")

// ExpectedHeaders returns the declared source headers in published order.
func ExpectedHeaders() []string {
	headers := make([]string, len(Columns))
	for i, c := range Columns {
		headers[i] = c.Source
	}
	return headers
}

// CategoricalColumns returns the cleaned names of the columns cast to
// categorical, in schema order.
func CategoricalColumns() []string {
	var names []string
	for _, c := range Columns {
		if c.Kind == KindCategorical && !c.Drop {
			names = append(names, c.Name)
		}
	}
	return names
}

// FilledColumns returns the cleaned names of the columns whose nulls are
// replaced with the Unknown sentinel.
func FilledColumns() []string {
	var names []string
	for _, c := range Columns {
		if c.Fill {
			names = append(names, c.Name)
		}
	}
	return names
}

// DroppedColumns returns the cleaned names of the columns removed during
// cleaning.
func DroppedColumns() []string {
	var names []string
	for _, c := range Columns {
		if c.Drop {
			names = append(names, c.Name)
		}
	}
	return names
}

// Lookup returns the declared column with the given cleaned name.
func Lookup(name string) (Column, bool) {
	for _, c := range Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// DisplayName returns the human label for a cleaned column name.
// Derived and unknown columns fall back to a generated label.
func DisplayName(name string) string {
	if c, ok := Lookup(name); ok {
		return c.Display
	}
	switch name {
	case DerivedYear:
		return "Year"
	case DerivedHour:
		return "Hour of Day"
	}
	return toDisplayName(name)
}

// ValidateHeaders checks a header row against the declared schema.
// Headers are matched after snake_casing, so case and spacing variants of the
// published names are accepted. Returns the actual header spelling for each
// declared column, in schema order.
func ValidateHeaders(headers []string) ([]string, error) {
	byName := make(map[string]string, len(headers))
	for _, h := range headers {
		byName[toSnakeCase(strings.TrimSpace(h))] = h
	}

	actual := make([]string, 0, len(Columns))
	var missing []string
	for _, c := range Columns {
		h, ok := byName[c.Name]
		if !ok {
			missing = append(missing, c.Source)
			continue
		}
		actual = append(actual, h)
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing column(s) %s", ErrSchemaDrift, strings.Join(missing, ", "))
	}
	return actual, nil
}

// ============================================================================
// STRING UTILITIES
// ============================================================================

// toSnakeCase converts "Column Name", "columnName" or "Lon_Lat" → lower snake.
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) && i > 0 {
			prev := rune(s[i-1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				result.WriteRune('_')
			}
		}
		result.WriteRune(r)
	}

	s = result.String()
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "__", "_")
	s = strings.Trim(s, "_")
	return s
}

// toDisplayName converts "vic_age_group" → "Vic Age Group".
func toDisplayName(s string) string {
	if strings.Contains(s, " ") {
		return strings.TrimSpace(s)
	}

	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")

	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}
