package tabs

import (
	"strings"

	"github.com/fretless/tabstash/internal/models"
)

// Filter returns the subsequence of collection whose title or artist
// contains query as a case-insensitive substring.
//
// The query is trimmed and lower-cased first; an empty query returns the
// collection unchanged. Order is preserved from the source; the result is
// never re-sorted. Pure: the input slice is not modified.
func Filter(collection []models.Tab, query string) []models.Tab {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return collection
	}

	var filtered []models.Tab
	for _, tab := range collection {
		if strings.Contains(strings.ToLower(tab.Title), query) ||
			strings.Contains(strings.ToLower(tab.Artist), query) {
			filtered = append(filtered, tab)
		}
	}
	return filtered
}
