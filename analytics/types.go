package analytics

// ============================================================================
// ANALYTICS TYPES — Deterministic counting over the cleaned dataset
// ============================================================================
// Group/Result come out of CountBy, RatioRow/RatioResult out of RatioBy.
// Builders convert these into ChartData and TableData for the report.
// ============================================================================

// Group is one (label, count) pair of an aggregation.
type Group struct {
	Label string
	Count int
	Share float64 // fraction of counted rows, set after sorting
}

// Result is the output of CountBy: ordered groups plus accounting.
// Total counts the rows that landed in a group; Missing counts rows whose
// key cell was null and no missing bucket was configured.
type Result struct {
	Column  string
	Groups  []Group
	Total   int
	Missing int
}

// Labels returns the group labels in result order.
func (r Result) Labels() []string {
	labels := make([]string, len(r.Groups))
	for i, g := range r.Groups {
		labels[i] = g.Label
	}
	return labels
}

// Counts returns the group counts in result order.
func (r Result) Counts() []int {
	counts := make([]int, len(r.Groups))
	for i, g := range r.Groups {
		counts[i] = g.Count
	}
	return counts
}

// Top returns the group with the highest count. Ties go to the earlier group.
func (r Result) Top() (Group, bool) {
	if len(r.Groups) == 0 {
		return Group{}, false
	}
	top := r.Groups[0]
	for _, g := range r.Groups[1:] {
		if g.Count > top.Count {
			top = g
		}
	}
	return top, true
}

// Bottom returns the group with the lowest count. Ties go to the earlier group.
func (r Result) Bottom() (Group, bool) {
	if len(r.Groups) == 0 {
		return Group{}, false
	}
	low := r.Groups[0]
	for _, g := range r.Groups[1:] {
		if g.Count < low.Count {
			low = g
		}
	}
	return low, true
}

// RatioRow is one group of a RatioBy: how many of the group's rows matched
// the numerator filters.
type RatioRow struct {
	Label   string
	Total   int
	Matched int
	Share   float64 // Matched / Total for this group
}

// RatioResult is the output of RatioBy, with an overall row across groups.
type RatioResult struct {
	Column  string
	Rows    []RatioRow
	Total   int
	Matched int
	Share   float64
}

// Filters restrict a view to matching rows.
// Keys are column names, values are allowed cell values. Values within a
// column are OR-combined, columns are AND-combined, matching is
// case-insensitive. Empty means no restriction.
type Filters map[string][]string

// Has reports whether a filter is set for the column.
func (f Filters) Has(column string) bool {
	if f == nil {
		return false
	}
	vals, ok := f[column]
	return ok && len(vals) > 0
}

// IsEmpty reports whether no filter is set at all.
func (f Filters) IsEmpty() bool {
	for _, vals := range f {
		if len(vals) > 0 {
			return false
		}
	}
	return true
}
