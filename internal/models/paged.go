package models

// Paged holds one page of rows plus the information needed to render a pager.
type Paged[T any] struct {
	Data        []T    `json:"data"`
	TotalRows   int64  `json:"total_rows"`
	CurrentPage int    `json:"current_page"`
	PageSize    int    `json:"page_size"`
	OrderBy     string `json:"order_by"`
	Direction   string `json:"direction"`
}

// TotalPages is ceil(TotalRows/PageSize), or 0 when PageSize is not positive.
func (p *Paged[T]) TotalPages() int {
	if p.PageSize <= 0 || p.TotalRows <= 0 {
		return 0
	}
	size := int64(p.PageSize)
	return int((p.TotalRows + size - 1) / size)
}
