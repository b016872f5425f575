package analytics

import (
	"fmt"
)

// ============================================================================
// TABLE BUILDER — Produces TableData from count and ratio results
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string
	Columns []TableColumn
	Rows    [][]string
	Summary *Summary
}

// TableColumn defines a table column.
type TableColumn struct {
	Key   string
	Label string
	Align string // "left", "right"
}

// Summary provides a totals row for a table.
type Summary struct {
	Label  string
	Values map[string]string // column key → formatted value
}

// CountTable renders a count result as (group, count, share) rows.
func CountTable(title, groupLabel string, r Result) TableData {
	columns := []TableColumn{
		{Key: "group", Label: groupLabel, Align: "left"},
		{Key: "count", Label: "Incidents", Align: "right"},
		{Key: "share", Label: "Share", Align: "right"},
	}

	rows := make([][]string, 0, len(r.Groups))
	for _, g := range r.Groups {
		rows = append(rows, []string{
			g.Label,
			FormatInt(g.Count),
			FormatShare(g.Share),
		})
	}

	return TableData{
		Title:   title,
		Columns: columns,
		Rows:    rows,
		Summary: &Summary{
			Label: fmt.Sprintf("Total (%d groups)", len(r.Groups)),
			Values: map[string]string{
				"count": FormatInt(r.Total),
			},
		},
	}
}

// RatioTable renders a ratio result as (group, total, matched, share) rows.
func RatioTable(title, groupLabel, matchedLabel string, r RatioResult) TableData {
	columns := []TableColumn{
		{Key: "group", Label: groupLabel, Align: "left"},
		{Key: "total", Label: "Incidents", Align: "right"},
		{Key: "matched", Label: matchedLabel, Align: "right"},
		{Key: "share", Label: "Share", Align: "right"},
	}

	rows := make([][]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, []string{
			row.Label,
			FormatInt(row.Total),
			FormatInt(row.Matched),
			FormatShare(row.Share),
		})
	}

	return TableData{
		Title:   title,
		Columns: columns,
		Rows:    rows,
		Summary: &Summary{
			Label: "Citywide",
			Values: map[string]string{
				"total":   FormatInt(r.Total),
				"matched": FormatInt(r.Matched),
				"share":   FormatShare(r.Share),
			},
		},
	}
}
