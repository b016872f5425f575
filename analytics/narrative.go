package analytics

import (
	"regexp"
	"strconv"
	"strings"
)

// ============================================================================
// NARRATIVE — Placeholder resolution for report prose
// ============================================================================
// Report sentences are templates with {placeholder} slots. Vars derives the
// slot values from a result; Resolve substitutes them and strips anything
// left unresolved so a missing value never leaks braces into the document.
// ============================================================================

// Vars derives placeholder values from a count result, keyed under prefix:
// {prefix_top}, {prefix_top_count}, {prefix_top_share}, {prefix_low},
// {prefix_low_count}, {prefix_groups}, {prefix_total}.
func Vars(prefix string, r Result) map[string]string {
	vars := make(map[string]string)
	vars[prefix+"_groups"] = strconv.Itoa(len(r.Groups))
	vars[prefix+"_total"] = FormatInt(r.Total)

	if top, ok := r.Top(); ok {
		vars[prefix+"_top"] = top.Label
		vars[prefix+"_top_count"] = FormatInt(top.Count)
		vars[prefix+"_top_share"] = FormatShare(top.Share)
	}
	if low, ok := r.Bottom(); ok {
		vars[prefix+"_low"] = low.Label
		vars[prefix+"_low_count"] = FormatInt(low.Count)
		vars[prefix+"_low_share"] = FormatShare(low.Share)
	}
	return vars
}

// Merge combines variable maps. Later maps win on key collisions.
func Merge(maps ...map[string]string) map[string]string {
	merged := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			merged[k] = v
		}
	}
	return merged
}

// Resolve substitutes {name} slots in template from vars.
func Resolve(template string, vars map[string]string) string {
	result := template
	for name, value := range vars {
		result = strings.ReplaceAll(result, "{"+name+"}", value)
	}
	return stripUnresolved(result)
}

var placeholderRegex = regexp.MustCompile(`\{[a-z0-9_]+\}`)

// stripUnresolved removes leftover placeholders. If stripping would empty the
// text, the original is returned so the defect stays visible.
func stripUnresolved(text string) string {
	cleaned := placeholderRegex.ReplaceAllString(text, "")
	cleaned = strings.ReplaceAll(cleaned, "  ", " ")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return text
	}
	return cleaned
}
