package review

import (
	"errors"
	"fmt"

	"github.com/stwalsh4118/hotelmatch/internal/geo"
	"github.com/stwalsh4118/hotelmatch/internal/models"
)

// Mode selects how subsets are laid out for the reviewer.
type Mode string

const (
	// ModeMatch expands the matched property per source and aggregates
	// the surrounding hotels.
	ModeMatch Mode = "match"
	// ModeSurround expands the surrounding hotels per source and
	// aggregates the matched property.
	ModeSurround Mode = "surround"
)

// ErrNoDistanceSteps is returned when a session has no threshold to cycle.
var ErrNoDistanceSteps = errors.New("at least one distance step is required")

// Options configure a new Session.
type Options struct {
	Calculator geo.Calculator
	// DistanceSteps are the surrounding thresholds in meters, cycled in order.
	DistanceSteps []int
	StepIndex     int
	Mode          Mode
}

// Session is the reviewer's state over one day's table. It is not safe for
// concurrent use; callers serialize actions.
type Session struct {
	table       *Table
	pager       *Paginator
	calc        geo.Calculator
	steps       []int
	stepIndex   int
	mode        Mode
	geobox      string
	anchor      models.HotelRecord
	matched     []models.AnnotatedRecord
	surrounding []models.AnnotatedRecord
}

// NewSession opens the table on page 0 and computes the first subsets.
func NewSession(table *Table, opts Options) (*Session, error) {
	if len(opts.DistanceSteps) == 0 {
		return nil, ErrNoDistanceSteps
	}
	pager, err := NewPaginator(table.GroupCount())
	if err != nil {
		return nil, err
	}

	mode := opts.Mode
	if mode == "" {
		mode = ModeMatch
	}
	if mode != ModeMatch && mode != ModeSurround {
		return nil, fmt.Errorf("unknown display mode %q", mode)
	}

	stepIndex := opts.StepIndex
	if stepIndex < 0 || stepIndex >= len(opts.DistanceSteps) {
		return nil, fmt.Errorf("distance step index %d out of range [0, %d)", stepIndex, len(opts.DistanceSteps))
	}

	calc := opts.Calculator
	if calc == nil {
		calc = geo.LegacyDistance
	}

	steps := make([]int, len(opts.DistanceSteps))
	copy(steps, opts.DistanceSteps)

	s := &Session{
		table:     table,
		pager:     pager,
		calc:      calc,
		steps:     steps,
		stepIndex: stepIndex,
		mode:      mode,
	}
	if err := s.recompute(); err != nil {
		return nil, err
	}
	return s, nil
}

// Advance pages by direction and recomputes the subsets.
func (s *Session) Advance(direction Direction) error {
	if _, err := s.pager.Advance(direction); err != nil {
		return err
	}
	return s.recompute()
}

// GoTo jumps to a page directly.
func (s *Session) GoTo(page int) error {
	if page < 0 || page >= s.pager.Total() {
		return fmt.Errorf("page %d out of range [0, %d)", page, s.pager.Total())
	}
	s.pager.page = page
	return s.recompute()
}

// CycleDistance moves to the next surrounding threshold, wrapping to the
// first, and recomputes the current page.
func (s *Session) CycleDistance() error {
	s.stepIndex++
	if s.stepIndex >= len(s.steps) {
		s.stepIndex = 0
	}
	return s.Advance(Stay)
}

// ToggleMode flips between match and surround. Subsets are unchanged.
func (s *Session) ToggleMode() {
	if s.mode == ModeMatch {
		s.mode = ModeSurround
		return
	}
	s.mode = ModeMatch
}

func (s *Session) recompute() error {
	geobox, ok := s.table.Geobox(s.pager.Page())
	if !ok {
		return ErrEmptyGroup
	}
	group := s.table.Group(geobox)

	anchor, err := Anchor(group)
	if err != nil {
		return fmt.Errorf("geobox %s: %w", geobox, err)
	}

	same, others := SplitByProperty(group, anchor.QL2ID)
	ref := anchor.Point()

	s.geobox = geobox
	s.anchor = anchor
	s.matched = geo.Filter(same, ref, geo.Unlimited, s.calc)
	s.surrounding = geo.Filter(others, ref, s.MaxDistance(), s.calc)
	return nil
}

// Day is the loaded day key.
func (s *Session) Day() string { return s.table.Day() }

// Page is the current 0-based page.
func (s *Session) Page() int { return s.pager.Page() }

// Total is the number of match groups.
func (s *Session) Total() int { return s.pager.Total() }

// Geobox is the geobox of the current page.
func (s *Session) Geobox() string { return s.geobox }

// Anchor is the property that triggered the current match.
func (s *Session) Anchor() models.HotelRecord { return s.anchor }

// MaxDistance is the current surrounding threshold in meters.
func (s *Session) MaxDistance() int { return s.steps[s.stepIndex] }

// StepIndex is the position of MaxDistance in the step list.
func (s *Session) StepIndex() int { return s.stepIndex }

// Mode is the current display mode.
func (s *Session) Mode() Mode { return s.mode }

// Matched returns the anchor's own listings, annotated with distances.
func (s *Session) Matched() []models.AnnotatedRecord { return s.matched }

// Surrounding returns the other hotels of the geobox within MaxDistance.
func (s *Session) Surrounding() []models.AnnotatedRecord { return s.surrounding }

// Table returns the loaded table.
func (s *Session) Table() *Table { return s.table }
