package domain

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination is bound from ?page and ?pageSize.
type Pagination struct {
	Page     int `form:"page"`
	PageSize int `form:"pageSize"`
}

// Normalize clamps page and page size into their valid ranges.
func (p *Pagination) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

// Offset returns the row offset for the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}
