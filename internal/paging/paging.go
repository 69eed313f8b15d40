// Package paging computes pager state, page-link windows and sort links for
// list views. Everything here is pure; callers supply the request path and
// query so the helpers stay independent of the HTTP framework.
package paging

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DirectionAsc  = "asc"
	DirectionDesc = "desc"
)

// Pager describes where the current page sits within the result set.
type Pager struct {
	TotalRows   int64 `json:"total_rows"`
	PageSize    int   `json:"page_size"`
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	HasPrevious bool  `json:"has_previous"`
	HasNext     bool  `json:"has_next"`
	// Previous and Next are 0 when there is no such page.
	Previous int `json:"previous"`
	Next     int `json:"next"`
	// First and Last are 0 for an empty result.
	First int `json:"first"`
	Last  int `json:"last"`
}

func (p Pager) AtFirst() bool { return !p.HasPrevious }
func (p Pager) AtLast() bool  { return !p.HasNext }

// Paginate derives pager state. pageSize <= 0 yields zero pages.
func Paginate(totalRows int64, pageSize, currentPage int) Pager {
	p := Pager{TotalRows: totalRows, PageSize: pageSize, CurrentPage: currentPage}
	if pageSize > 0 && totalRows > 0 {
		size := int64(pageSize)
		p.TotalPages = int((totalRows + size - 1) / size)
	}
	p.HasPrevious = currentPage > 1
	p.HasNext = currentPage < p.TotalPages
	if p.HasPrevious {
		p.Previous = currentPage - 1
	}
	if p.HasNext {
		p.Next = currentPage + 1
	}
	if p.TotalPages > 0 {
		p.First = 1
		p.Last = p.TotalPages
	}
	return p
}

// LinkRange returns the inclusive window [start, end] of page numbers to
// render. All pages are shown when they fit in maxLinks; otherwise the window
// is maxLinks wide, centered on currentPage and shifted to stay inside
// [1, totalPages]. An empty result gives (0, 0).
func LinkRange(totalPages, currentPage, maxLinks int) (start, end int) {
	if totalPages <= 0 {
		return 0, 0
	}
	if maxLinks < 1 {
		maxLinks = 1
	}
	if totalPages <= maxLinks {
		return 1, totalPages
	}

	if currentPage < 1 {
		currentPage = 1
	} else if currentPage > totalPages {
		currentPage = totalPages
	}

	start = currentPage - maxLinks/2
	if start < 1 {
		start = 1
	}
	end = start + maxLinks - 1
	if end > totalPages {
		end = totalPages
		start = end - maxLinks + 1
	}
	return start, end
}

// NormalizeDirection lower-cases dir and falls back to asc for anything
// other than asc/desc.
func NormalizeDirection(dir string) string {
	if strings.EqualFold(strings.TrimSpace(dir), DirectionDesc) {
		return DirectionDesc
	}
	return DirectionAsc
}

// ToggleSortDirection returns the direction a sort link for requestedColumn
// should carry. Clicking the column already sorted on flips the direction;
// any other column keeps the current one.
func ToggleSortDirection(currentColumn, requestedColumn, currentDirection string) string {
	dir := NormalizeDirection(currentDirection)
	if !strings.EqualFold(currentColumn, requestedColumn) {
		return dir
	}
	if dir == DirectionAsc {
		return DirectionDesc
	}
	return DirectionAsc
}

// PageLink is one clickable page number.
type PageLink struct {
	Page    int    `json:"page"`
	URL     string `json:"url"`
	Current bool   `json:"current"`
}

// PageLinks builds links for the LinkRange window around pager.CurrentPage.
// Existing query parameters are kept; page and size are replaced.
func PageLinks(path string, query url.Values, pager Pager, maxLinks int) []PageLink {
	start, end := LinkRange(pager.TotalPages, pager.CurrentPage, maxLinks)
	if start == 0 {
		return []PageLink{}
	}
	links := make([]PageLink, 0, end-start+1)
	for p := start; p <= end; p++ {
		links = append(links, PageLink{
			Page:    p,
			URL:     PageURL(path, query, p, pager.PageSize),
			Current: p == pager.CurrentPage,
		})
	}
	return links
}

// PageURL rebuilds path?query with page and size set.
func PageURL(path string, query url.Values, page, size int) string {
	q := without(query, "page", "size")
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	return path + "?" + q.Encode()
}

// SortLinkProps is what a column header needs to render itself.
type SortLinkProps struct {
	URL       string `json:"url"`
	Column    string `json:"column"`
	Order     string `json:"order"`
	Direction string `json:"direction"`
	// Active is true when the list is currently sorted on Column.
	Active bool `json:"active"`
}

// SortLink builds the header link for column from the current request query,
// which carries the active sort in "order" and "direction" (defaults id/asc).
func SortLink(path string, query url.Values, column string) SortLinkProps {
	order := strings.ToLower(query.Get("order"))
	if order == "" {
		order = "id"
	}
	direction := NormalizeDirection(query.Get("direction"))
	column = strings.ToLower(column)

	q := without(query, "order", "direction")
	q.Set("order", column)
	q.Set("direction", ToggleSortDirection(order, column, direction))

	return SortLinkProps{
		URL:       path + "?" + q.Encode(),
		Column:    column,
		Order:     order,
		Direction: direction,
		Active:    order == column,
	}
}

// without copies query dropping keys case-insensitively.
func without(query url.Values, keys ...string) url.Values {
	out := url.Values{}
	for k, vs := range query {
		skip := false
		for _, drop := range keys {
			if strings.EqualFold(k, drop) {
				skip = true
				break
			}
		}
		if !skip {
			out[k] = append([]string(nil), vs...)
		}
	}
	return out
}
