package pagination

import "errors"

var (
	ErrInvalidPage     = errors.New("invalid_page")
	ErrInvalidPageSize = errors.New("invalid_page_size")
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 200
)

// Pagination carries one-based page navigation parameters.
type Pagination struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"page_size" json:"page_size"`
}

// Validate rejects non-positive page parameters. Zero values are allowed so
// callers can apply defaults first via Normalize.
func (p Pagination) Validate() error {
	if p.Page <= 0 {
		return ErrInvalidPage
	}
	if p.PageSize <= 0 {
		return ErrInvalidPageSize
	}
	if p.PageSize > MaxPageSize {
		return ErrInvalidPageSize
	}
	return nil
}

// Normalize fills unset fields with defaults. It does not repair negative
// values; those still fail Validate.
func (p Pagination) Normalize() Pagination {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = DefaultPageSize
	}
	return p
}

// Offset returns the number of records preceding the requested page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Slice returns the [start, end) bounds of the requested page over a
// collection of n items. Pages beyond the end yield an empty range.
func (p Pagination) Slice(n int) (int, int) {
	start := p.Offset()
	if start > n {
		start = n
	}
	end := start + p.PageSize
	if end > n {
		end = n
	}
	return start, end
}

// KeysetQuery carries id-cursor pagination parameters for append-only
// listings.
type KeysetQuery struct {
	PageSize    int   `form:"page_size" json:"page_size"`
	LastFetchID int64 `form:"last_fetch_id" json:"last_fetch_id"`
}

// Normalize applies defaults and clamps the page size.
func (q KeysetQuery) Normalize() KeysetQuery {
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if q.LastFetchID < 0 {
		q.LastFetchID = 0
	}
	return q
}
