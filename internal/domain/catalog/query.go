package catalog

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the catalog ordering
type SortKey string

// Sort keys
const (
	SortNameAsc   SortKey = "name_asc"
	SortNameDesc  SortKey = "name_desc"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
)

// AllCategories is the category filter value that matches every item
const AllCategories = "all"

// IsValid reports whether k is a known sort key
func (k SortKey) IsValid() bool {
	switch k {
	case SortNameAsc, SortNameDesc, SortPriceAsc, SortPriceDesc:
		return true
	}
	return false
}

// ParseSortKey maps s to a SortKey, defaulting to name ascending
func ParseSortKey(s string) SortKey {
	k := SortKey(s)
	if k.IsValid() {
		return k
	}
	return SortNameAsc
}

// Query holds the catalog view's filter and sort inputs
type Query struct {
	Search   string
	Category string
	Sort     SortKey
}

// Filter returns the items matching q in the order q selects.
// It is pure: items is never modified and equal inputs always produce
// equal output. Ties keep their original list order.
func Filter(items []Medicine, q Query) []Medicine {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(q.Search))

	result := make([]Medicine, 0, len(items))
	for _, item := range items {
		if needle != "" && !strings.Contains(fold.String(item.Name), needle) {
			continue
		}
		if q.Category != "" && q.Category != AllCategories && item.Category != q.Category {
			continue
		}
		result = append(result, item)
	}

	slices.SortStableFunc(result, comparator(ParseSortKey(string(q.Sort))))
	return result
}

func comparator(key SortKey) func(a, b Medicine) int {
	switch key {
	case SortNameDesc:
		byName := nameComparator()
		return func(a, b Medicine) int { return byName(b, a) }
	case SortPriceAsc:
		return func(a, b Medicine) int { return a.Price.Amount().Cmp(b.Price.Amount()) }
	case SortPriceDesc:
		return func(a, b Medicine) int { return b.Price.Amount().Cmp(a.Price.Amount()) }
	default:
		return nameComparator()
	}
}

// nameComparator orders names the way a reader expects (locale-aware,
// case-insensitive). A Collator is not safe for concurrent use, so each
// Filter call builds its own.
func nameComparator() func(a, b Medicine) int {
	c := collate.New(language.English, collate.IgnoreCase)
	return func(a, b Medicine) int {
		return c.CompareString(a.Name, b.Name)
	}
}

// Categories returns AllCategories followed by each distinct category in
// list order.
func Categories(items []Medicine) []string {
	out := []string{AllCategories}
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.Category]; ok {
			continue
		}
		seen[item.Category] = struct{}{}
		out = append(out, item.Category)
	}
	return out
}
