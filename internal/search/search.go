// Package search filters and ranks catalog items on the client.
package search

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/mmcdole/gamedeck/internal/domain"
)

var folder = cases.Fold()

// IsBlank reports whether query has no searchable characters
func IsBlank(query string) bool {
	return strings.TrimSpace(query) == ""
}

// Contains reports whether name contains query, ignoring case.
func Contains(name, query string) bool {
	return strings.Contains(folder.String(name), folder.String(query))
}

// Filter returns the items whose name contains query, preserving order.
// A blank query returns items unchanged. The result never aliases a
// filtered-down backing array, so callers may publish it directly.
func Filter(items []domain.Item, query string) []domain.Item {
	if IsBlank(query) {
		return items
	}

	q := folder.String(query)
	filtered := make([]domain.Item, 0, len(items))
	for _, it := range items {
		if strings.Contains(folder.String(it.Name), q) {
			filtered = append(filtered, it)
		}
	}
	return filtered
}
