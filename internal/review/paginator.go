package review

import (
	"errors"
	"fmt"
)

// Direction moves the paginator.
type Direction int

// Stay re-renders the current page; it is how a threshold change forces
// the subsets to be recomputed.
const (
	Previous Direction = -1
	Stay     Direction = 0
	Next     Direction = 1
)

var (
	ErrNoGroups         = errors.New("no match groups to page through")
	ErrInvalidDirection = errors.New("direction must be -1, 0 or 1")
)

// Paginator walks the match groups cyclically. There is no terminal page.
type Paginator struct {
	page  int
	total int
}

// NewPaginator starts on page 0 of total pages.
func NewPaginator(total int) (*Paginator, error) {
	if total <= 0 {
		return nil, ErrNoGroups
	}
	return &Paginator{total: total}, nil
}

// Advance moves by direction and wraps at both ends.
func (p *Paginator) Advance(direction Direction) (int, error) {
	switch direction {
	case Previous, Stay, Next:
	default:
		return p.page, fmt.Errorf("%w: got %d", ErrInvalidDirection, direction)
	}

	page := p.page + int(direction)
	if page >= p.total {
		page = 0
	}
	if page < 0 {
		page = p.total - 1
	}
	p.page = page
	return page, nil
}

// Page is the current 0-based page.
func (p *Paginator) Page() int { return p.page }

// Total is the number of pages.
func (p *Paginator) Total() int { return p.total }
