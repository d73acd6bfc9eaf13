package pagination

const (
	// DefaultPerPage is the standard page size when per_page is not provided.
	DefaultPerPage = 25
	// MaxPerPage caps how many rows any list query can request.
	MaxPerPage = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page    int
	PerPage int
}

// Meta is the pagination block list responses carry alongside items.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
}

// Normalize clamps the raw inputs into a valid page and per_page pair.
func Normalize(p Params) Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset returns the row offset for the normalized params.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// MetaFor derives the response metadata for a total row count.
func MetaFor(p Params, total int64) Meta {
	pages := int(total) / p.PerPage
	if int(total)%p.PerPage != 0 {
		pages++
	}
	return Meta{
		Total:      total,
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: pages,
	}
}
