package domain

import "strings"

// FilterGroups narrows groups by a free-text search term and a category.
// A group matches when the term is empty or a case-insensitive substring of
// its name or description, and the category is empty, "All", or an exact
// match. Pure and order-preserving; safe to call on every keystroke.
func FilterGroups(groups []*Group, searchTerm, category string) []*Group {
	term := strings.ToLower(strings.TrimSpace(searchTerm))
	matchAll := category == "" || category == "All"

	out := make([]*Group, 0, len(groups))
	for _, g := range groups {
		if term != "" &&
			!strings.Contains(strings.ToLower(g.Name), term) &&
			!strings.Contains(strings.ToLower(g.Description), term) {
			continue
		}
		if !matchAll && g.Category != category {
			continue
		}
		out = append(out, g)
	}
	return out
}
