package listutil

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// ListParams carries paging, sorting and filtering parsed from a query string.
type ListParams struct {
	Page    int               // 1-indexed page number
	PerPage int               // rows per page
	Sort    string            // one of the caller's allowed sort keys, or ""
	Search  string            // free-text search from ?q=
	Filters map[string]string // exact-match filters (e.g. gender=female)
}

// PageInfo carries pagination metadata returned alongside a page of rows.
type PageInfo struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// DefaultPerPage is the default number of rows per page.
const DefaultPerPage = 20

// PerPageOptions are the allowed rows-per-page values.
var PerPageOptions = []int{10, 20, 50, 100, 200}

// ParseListParams reads page, per_page, sort, q and the named filters.
// PRE: allowedSort and filterKeys list the keys the caller understands
// POST: Page >= 1, PerPage is one of PerPageOptions, Sort is allowed or "",
// Filters holds only recognised non-empty keys
func ParseListParams(q url.Values, allowedSort []string, filterKeys []string) ListParams {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if !slices.Contains(PerPageOptions, perPage) {
		perPage = DefaultPerPage
	}
	sort := q.Get("sort")
	if !slices.Contains(allowedSort, sort) {
		sort = ""
	}

	lp := ListParams{
		Page:    page,
		PerPage: perPage,
		Sort:    sort,
		Search:  strings.TrimSpace(q.Get("q")),
		Filters: make(map[string]string),
	}
	for _, key := range filterKeys {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			lp.Filters[key] = v
		}
	}
	return lp
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0
// POST: TotalPages >= 1; Page clamped to [1, TotalPages]
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	page = max(1, min(page, totalPages))
	return PageInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// Offset returns the SQL OFFSET for the current page.
// POST: Returns (Page-1) * PerPage
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}
