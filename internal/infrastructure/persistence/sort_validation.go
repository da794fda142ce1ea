package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

// sortColumns whitelists the columns a listing may be ordered by. Anything
// else, including injection attempts, falls back to the fallback column.
type sortColumns struct {
	allowed  map[string]struct{}
	fallback string
}

func newSortColumns(fallback string, columns ...string) sortColumns {
	s := sortColumns{allowed: make(map[string]struct{}, len(columns)+1), fallback: fallback}
	s.allowed[fallback] = struct{}{}
	for _, c := range columns {
		s.allowed[c] = struct{}{}
	}
	return s
}

// orderHistorySort orders a session's order history. Newest placed first
// unless the caller asks otherwise.
var orderHistorySort = newSortColumns("placed_at",
	"id", "order_number", "status", "total", "created_at", "updated_at")

// column returns field when whitelisted, else the fallback
func (s sortColumns) column(field string) string {
	field = strings.TrimSpace(field)
	if _, ok := s.allowed[field]; ok {
		return field
	}
	return s.fallback
}

// orderBy builds the ORDER BY clause. Only "asc" in any case sorts
// ascending; every other direction sorts descending.
func (s sortColumns) orderBy(field, dir string) clause.OrderByColumn {
	return clause.OrderByColumn{
		Column: clause.Column{Name: s.column(field)},
		Desc:   !strings.EqualFold(strings.TrimSpace(dir), "asc"),
	}
}
