package catalog

import (
	"net/url"
	"strconv"
	"strings"
	"unicode"
)

type ListQuery struct {
	Filter Filter
	// Page and Limit are zero when absent or unparsable.
	Page  int
	Limit int
}

func ParseListQuery(v url.Values) ListQuery {
	page, _ := leadingInt(v.Get("page"))
	limit, _ := leadingInt(v.Get("limit"))

	return ListQuery{
		Filter: Filter{
			Category: v.Get("category"),
			Search:   v.Get("search"),
		},
		Page:  page,
		Limit: limit,
	}
}

// Resolve fills in defaults once the filtered total is known: page 1 and an
// unpaginated limit.
func (q ListQuery) Resolve(total int) (page, limit int) {
	page, limit = q.Page, q.Limit
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = total
	}
	return page, limit
}

// leadingInt parses an optionally signed run of decimal digits at the start of s,
// ignoring leading whitespace and anything after the digits. "12abc" is 12.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Paginate returns the 1-based page of items. Ranges that fall outside items,
// including any with a negative start, yield an empty slice.
func Paginate(items []Product, page, limit int) []Product {
	if page < 1 || limit < 1 || page-1 > len(items)/limit {
		return []Product{}
	}

	start := (page - 1) * limit
	if start >= len(items) {
		return []Product{}
	}

	end := len(items)
	if limit < end-start {
		end = start + limit
	}
	return items[start:end]
}
