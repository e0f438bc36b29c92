package repo

import "gorm.io/gorm"

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

type Pagination struct {
	Page    int
	PerPage int
}

func (p *Pagination) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
}

func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Page is the paginated envelope nested under "data" in list responses.
type Page[T any] struct {
	Data        []T   `json:"data"`
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	From        int   `json:"from"`
	To          int   `json:"to"`
}

// ListPage counts the filtered query, then fetches one page ordered newest
// first. The count runs before offset/limit so Total reflects the full
// filtered set.
func ListPage[T any](query *gorm.DB, p Pagination) (*Page[T], error) {
	p.Normalize()

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []T
	if err := query.
		Order("created_at DESC").
		Offset(p.Offset()).
		Limit(p.PerPage).
		Find(&items).Error; err != nil {
		return nil, err
	}

	lastPage := int(total) / p.PerPage
	if int(total)%p.PerPage > 0 {
		lastPage++
	}
	if lastPage < 1 {
		lastPage = 1
	}

	from, to := 0, 0
	if len(items) > 0 {
		from = p.Offset() + 1
		to = p.Offset() + len(items)
	}

	return &Page[T]{
		Data:        items,
		CurrentPage: p.Page,
		LastPage:    lastPage,
		PerPage:     p.PerPage,
		Total:       total,
		From:        from,
		To:          to,
	}, nil
}
