package dataset

import (
	"github.com/go-gota/gota/dataframe"

	"github.com/borolytics/borolytics/analytics"
)

// ============================================================================
// TABLE — Cleaned dataset, addressable by column name
// ============================================================================
// Columns are materialized once as string cells (nulls become the empty
// string) so grouping and filtering never re-render the frame. Categorical
// columns carry their level set in first-encounter order.
// ============================================================================

// Table is the cleaned dataset.
type Table struct {
	df     dataframe.DataFrame
	order  []string
	cols   map[string][]string
	levels map[string][]string
}

func newTable(df dataframe.DataFrame) *Table {
	t := &Table{
		df:     df,
		cols:   make(map[string][]string),
		levels: make(map[string][]string),
	}
	for _, name := range df.Names() {
		t.order = append(t.order, name)
		recs := df.Col(name).Records()
		for i, v := range recs {
			if v == "NaN" {
				recs[i] = ""
			}
		}
		t.cols[name] = recs
	}
	for _, name := range CategoricalColumns() {
		t.levels[name] = encounterLevels(t.cols[name])
	}
	return t
}

// Nrow returns the number of rows.
func (t *Table) Nrow() int {
	return t.df.Nrow()
}

// Columns returns the column names in table order.
func (t *Table) Columns() []string {
	return t.order
}

// Has reports whether the table carries the named column.
func (t *Table) Has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Col returns the cells of a column. Nulls are the empty string.
// The slice is shared; callers must not modify it.
func (t *Table) Col(name string) []string {
	return t.cols[name]
}

// Cell returns one cell, or the empty string when the column is unknown.
func (t *Table) Cell(row int, name string) string {
	col, ok := t.cols[name]
	if !ok || row < 0 || row >= len(col) {
		return ""
	}
	return col[row]
}

// Levels returns a categorical column's level set in first-encounter order.
// Nil for non-categorical columns.
func (t *Table) Levels(name string) []string {
	return t.levels[name]
}

// Frame exposes the underlying typed frame.
func (t *Table) Frame() dataframe.DataFrame {
	return t.df
}

// View adapts the table for the analytics engine.
func (t *Table) View() analytics.View {
	return tableView{t}
}

type tableView struct {
	t *Table
}

func (v tableView) Len() int {
	return v.t.Nrow()
}

func (v tableView) Cell(row int, column string) string {
	return v.t.Cell(row, column)
}

// encounterLevels collects the distinct non-null values of a column in
// first-encounter order.
func encounterLevels(cells []string) []string {
	seen := make(map[string]bool)
	var levels []string
	for _, v := range cells {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		levels = append(levels, v)
	}
	return levels
}
