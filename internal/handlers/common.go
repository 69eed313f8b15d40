package handlers

import (
	"strconv"

	"usertemplate/backend/internal/models"
	"usertemplate/backend/internal/paging"
	"usertemplate/backend/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage = 1
	// MaxPageLinks is how many page numbers a list response links to.
	MaxPageLinks = 10
)

// sortableColumns are offered as sort links on user listings.
var sortableColumns = []string{"id", "name", "email"}

// PaginatedResponse is the envelope of every paged listing.
type PaginatedResponse[T any] struct {
	Items      []T                             `json:"items"`
	TotalItems int64                           `json:"total_items"`
	TotalPages int                             `json:"total_pages"`
	Page       int                             `json:"page"`
	PageSize   int                             `json:"page_size"`
	OrderBy    string                          `json:"order_by"`
	Direction  string                          `json:"direction"`
	Pager      paging.Pager                    `json:"pager"`
	Links      []paging.PageLink               `json:"links"`
	SortLinks  map[string]paging.SortLinkProps `json:"sort_links"`
}

// GetPageQuery reads page, size, order and direction from the query string.
// Range checks happen in the service.
func GetPageQuery(c *gin.Context) services.PageQuery {
	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(DefaultPage)))
	if err != nil {
		page = DefaultPage
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(services.DefaultPageSize)))
	if err != nil {
		size = services.DefaultPageSize
	}
	return services.PageQuery{
		Page:      page,
		Size:      size,
		OrderBy:   c.Query("order"),
		Direction: c.Query("direction"),
	}
}

func newPaginatedResponse[T any](c *gin.Context, p *models.Paged[T]) PaginatedResponse[T] {
	path := c.Request.URL.Path
	query := c.Request.URL.Query()
	// links reflect the effective sort, not what the client typed
	query.Set("order", p.OrderBy)
	query.Set("direction", p.Direction)

	pager := paging.Paginate(p.TotalRows, p.PageSize, p.CurrentPage)
	sortLinks := make(map[string]paging.SortLinkProps, len(sortableColumns))
	for _, col := range sortableColumns {
		sortLinks[col] = paging.SortLink(path, query, col)
	}

	items := p.Data
	if items == nil {
		items = []T{}
	}
	return PaginatedResponse[T]{
		Items:      items,
		TotalItems: p.TotalRows,
		TotalPages: p.TotalPages(),
		Page:       p.CurrentPage,
		PageSize:   p.PageSize,
		OrderBy:    p.OrderBy,
		Direction:  p.Direction,
		Pager:      pager,
		Links:      paging.PageLinks(path, query, pager, MaxPageLinks),
		SortLinks:  sortLinks,
	}
}
