package analytics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ============================================================================
// AGGREGATORS — Group counting and ordering via View
// ============================================================================
// Groups form in first-encounter order, then sort, then limit. Sorting is
// stable, so ties keep encounter order whatever the mode.
// Pipeline: group → count → sort → limit.
// ============================================================================

// SortMode selects the group ordering of a Result.
type SortMode int

const (
	SortEncounter  SortMode = iota // first-encounter order of the key
	SortCountDesc                  // highest count first
	SortCountAsc                   // lowest count first
	SortLabelAsc                   // case-insensitive label order
	SortNumericAsc                 // labels parsed as integers (years, hours)
)

// CountBy groups rows by one column and counts them.
func CountBy(view View, column string, opts ...Option) Result {
	cfg := applyOptions(opts)
	result := Result{Column: column}
	if view.Len() == 0 {
		return result
	}

	counts := make(map[string]int)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key := view.Cell(i, column)
		if key == "" {
			if cfg.MissingLabel == "" {
				result.Missing++
				continue
			}
			key = cfg.MissingLabel
		}
		if _, exists := counts[key]; !exists {
			order = append(order, key)
		}
		counts[key]++
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{Label: key, Count: counts[key]})
		result.Total += counts[key]
	}

	sortGroups(groups, cfg.Sort)

	if cfg.Limit > 0 && len(groups) > cfg.Limit {
		groups = groups[:cfg.Limit]
	}

	if result.Total > 0 {
		for i := range groups {
			groups[i].Share = float64(groups[i].Count) / float64(result.Total)
		}
	}

	result.Groups = groups
	return result
}

// RatioBy groups rows by one column and reports, per group, the share of
// rows matching the numerator filters. The denominator is the whole group.
func RatioBy(view View, column string, numerator Filters, opts ...Option) RatioResult {
	cfg := applyOptions(opts)
	result := RatioResult{Column: column}
	if view.Len() == 0 {
		return result
	}

	totals := make(map[string]int)
	matched := make(map[string]int)
	order := make([]string, 0)

	sets := lowerSets(numerator)

	for i := 0; i < view.Len(); i++ {
		key := view.Cell(i, column)
		if key == "" {
			if cfg.MissingLabel == "" {
				continue
			}
			key = cfg.MissingLabel
		}
		if _, exists := totals[key]; !exists {
			order = append(order, key)
		}
		totals[key]++
		if matchesSets(view, i, sets) {
			matched[key]++
		}
	}

	rows := make([]RatioRow, 0, len(order))
	for _, key := range order {
		row := RatioRow{Label: key, Total: totals[key], Matched: matched[key]}
		if row.Total > 0 {
			row.Share = float64(row.Matched) / float64(row.Total)
		}
		rows = append(rows, row)
		result.Total += row.Total
		result.Matched += row.Matched
	}

	sortRatioRows(rows, cfg.Sort)

	if cfg.Limit > 0 && len(rows) > cfg.Limit {
		rows = rows[:cfg.Limit]
	}

	if result.Total > 0 {
		result.Share = float64(result.Matched) / float64(result.Total)
	}

	result.Rows = rows
	return result
}

// ============================================================================
// SORTING
// ============================================================================

func sortGroups(groups []Group, mode SortMode) {
	switch mode {
	case SortCountDesc:
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Count > groups[j].Count })
	case SortCountAsc:
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Count < groups[j].Count })
	case SortLabelAsc:
		sort.SliceStable(groups, func(i, j int) bool {
			return strings.ToLower(groups[i].Label) < strings.ToLower(groups[j].Label)
		})
	case SortNumericAsc:
		sort.SliceStable(groups, func(i, j int) bool {
			return numericLabel(groups[i].Label) < numericLabel(groups[j].Label)
		})
	default:
		// preserve grouping order
	}
}

func sortRatioRows(rows []RatioRow, mode SortMode) {
	switch mode {
	case SortCountDesc:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Total > rows[j].Total })
	case SortCountAsc:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Total < rows[j].Total })
	case SortLabelAsc:
		sort.SliceStable(rows, func(i, j int) bool {
			return strings.ToLower(rows[i].Label) < strings.ToLower(rows[j].Label)
		})
	case SortNumericAsc:
		sort.SliceStable(rows, func(i, j int) bool {
			return numericLabel(rows[i].Label) < numericLabel(rows[j].Label)
		})
	default:
	}
}

// numericLabel parses a label as an integer for ordering. Labels that do not
// parse sort first.
func numericLabel(label string) int {
	n, err := strconv.Atoi(strings.TrimSpace(label))
	if err != nil {
		return -1 << 31
	}
	return n
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}

// FormatShare formats a fraction as a percentage with one decimal.
func FormatShare(share float64) string {
	return fmt.Sprintf("%.1f%%", share*100)
}
