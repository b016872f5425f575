package analytics

import (
	"strings"
)

// ============================================================================
// FILTERS — Column-based row filtering via View
// ============================================================================
// Single pass: checks all column constraints per row in one loop.
// Returns a subView (index list into the parent), no data copy.
// ============================================================================

// Apply returns a view of the rows matching all filters.
// Columns are AND-combined; values within a column are OR-combined; matching
// is case-insensitive. An empty filter returns the original view.
func Apply(view View, filters Filters) View {
	sets := lowerSets(filters)
	if len(sets) == 0 {
		return view
	}

	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if matchesSets(view, i, sets) {
			indices = append(indices, i)
		}
	}

	return NewSubView(view, indices)
}

// lowerSets pre-builds lowercase lookup sets per filtered column.
func lowerSets(filters Filters) map[string]map[string]bool {
	if filters.IsEmpty() {
		return nil
	}
	sets := make(map[string]map[string]bool)
	for column, allowed := range filters {
		if len(allowed) == 0 {
			continue
		}
		set := make(map[string]bool, len(allowed))
		for _, v := range allowed {
			set[strings.ToLower(v)] = true
		}
		sets[column] = set
	}
	return sets
}

// matchesSets reports whether row i passes every column set.
func matchesSets(view View, i int, sets map[string]map[string]bool) bool {
	for column, set := range sets {
		if !set[strings.ToLower(view.Cell(i, column))] {
			return false
		}
	}
	return true
}
