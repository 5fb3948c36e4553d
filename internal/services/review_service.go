package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/stwalsh4118/hotelmatch/internal/geo"
	"github.com/stwalsh4118/hotelmatch/internal/logger"
	"github.com/stwalsh4118/hotelmatch/internal/observability"
	"github.com/stwalsh4118/hotelmatch/internal/repository"
	"github.com/stwalsh4118/hotelmatch/internal/review"
	"github.com/stwalsh4118/hotelmatch/internal/subsets"
)

// DefaultLoadTimeout bounds one warehouse load.
const DefaultLoadTimeout = 30 * time.Second

// Service-level errors
var (
	ErrNoData     = errors.New("no match data available")
	ErrNotStarted = errors.New("review session not started")
)

// ReviewOptions configure the sessions a ReviewService opens.
type ReviewOptions struct {
	Catalog       *subsets.Catalog
	Calculator    geo.Calculator
	DistanceSteps []int
	InitialStep   int
	InitialMode   review.Mode
	LoadTimeout   time.Duration
}

// GroupSummary describes one page of the loaded day.
type GroupSummary struct {
	Page    int    `json:"page"`
	Geobox  string `json:"geobox"`
	Records int    `json:"records"`
	Anchor  string `json:"anchor"`
}

// Status reports what the service has loaded.
type Status struct {
	Ready    bool      `json:"ready"`
	Day      string    `json:"day,omitempty"`
	Groups   int       `json:"groups"`
	Records  int       `json:"records"`
	Rejected int       `json:"rejected"`
	LoadedAt time.Time `json:"loaded_at,omitempty"`
}

// ReviewService owns the reviewer's session. Every method is safe for
// concurrent use; actions are applied one at a time.
type ReviewService interface {
	// Start loads the latest day and opens a session on its first page.
	// Returns ErrNoData when the warehouse has nothing to review.
	Start(ctx context.Context) error

	// Reload re-queries the latest day. On failure the previous session
	// stays in place.
	Reload(ctx context.Context) error

	View() (review.View, error)
	Advance(direction review.Direction) (review.View, error)
	Next() (review.View, error)
	Previous() (review.View, error)
	GoTo(page int) (review.View, error)
	CycleDistance() (review.View, error)
	ToggleMode() (review.View, error)

	// Groups lists the day's match groups in page order.
	Groups() ([]GroupSummary, error)

	Status() Status
}

// invalidator is implemented by repositories that memoize results.
type invalidator interface {
	Invalidate(ctx context.Context) error
}

type reviewService struct {
	repo repository.MatchRepository
	opts ReviewOptions
	log  *logger.Logger

	mu       sync.Mutex
	session  *review.Session
	rejected int
	loadedAt time.Time
}

// NewReviewService creates a ReviewService. Start must be called before
// any action.
func NewReviewService(repo repository.MatchRepository, opts ReviewOptions, log *logger.Logger) ReviewService {
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = DefaultLoadTimeout
	}
	if opts.InitialMode == "" {
		opts.InitialMode = review.ModeMatch
	}
	if opts.Catalog == nil {
		// every site falls into Others
		opts.Catalog, _ = subsets.NewCatalog(nil)
	}
	return &reviewService{
		repo: repo,
		opts: opts,
		log:  log,
	}
}

func (s *reviewService) Start(ctx context.Context) error {
	err := s.load(ctx)
	observability.ObserveAction("start", err)
	return err
}

func (s *reviewService) Reload(ctx context.Context) error {
	err := s.load(ctx)
	observability.ObserveAction("reload", err)
	return err
}

func (s *reviewService) load(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.LoadTimeout)
	defer cancel()

	if inv, ok := s.repo.(invalidator); ok {
		if err := inv.Invalidate(ctx); err != nil {
			s.log.Warn("Failed to invalidate cached latest day", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	day, err := s.repo.LatestDay(ctx)
	if err != nil {
		s.log.Error("Latest day lookup failed", err, nil)
		day = ""
	}
	if day == "" {
		return fmt.Errorf("%w: warehouse has no ql2_day", ErrNoData)
	}

	load, err := s.repo.HotelsForDay(ctx, day)
	if err != nil {
		s.log.Error("Hotel load failed", err, map[string]interface{}{"day": day})
		load = repository.HotelLoad{}
	}
	for _, rej := range load.Rejected {
		observability.ObserveRejectedRow(rej.Column)
		s.log.Warn("Rejected warehouse row", map[string]interface{}{
			"day":    day,
			"row":    rej.Row,
			"column": rej.Column,
			"reason": rej.Reason,
		})
	}
	if len(load.Records) == 0 {
		return fmt.Errorf("%w: no hotels for %s", ErrNoData, day)
	}

	records := load.Records
	s.opts.Catalog.Annotate(records)
	for i := range records {
		records[i].AutomatchFlag = records[i].AutoMatched()
	}

	session, err := review.NewSession(review.NewTable(day, records), review.Options{
		Calculator:    s.opts.Calculator,
		DistanceSteps: s.opts.DistanceSteps,
		StepIndex:     s.opts.InitialStep,
		Mode:          s.opts.InitialMode,
	})
	if err != nil {
		return fmt.Errorf("failed to open session for %s: %w", day, err)
	}

	s.mu.Lock()
	s.session = session
	s.rejected = len(load.Rejected)
	s.loadedAt = time.Now()
	s.mu.Unlock()

	observability.SetMatchGroups(session.Total())
	s.log.Info("Review session started", map[string]interface{}{
		"day":      day,
		"groups":   session.Total(),
		"records":  len(records),
		"rejected": len(load.Rejected),
	})
	return nil
}

// act runs fn against the session under the lock and returns the new view.
func (s *reviewService) act(name string, fn func(*review.Session) error) (review.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		observability.ObserveAction(name, ErrNotStarted)
		return review.View{}, ErrNotStarted
	}
	if fn != nil {
		if err := fn(s.session); err != nil {
			observability.ObserveAction(name, err)
			s.log.Warn("Review action failed", map[string]interface{}{
				"action": name,
				"page":   s.session.Page(),
				"error":  err.Error(),
			})
			return review.View{}, err
		}
	}
	observability.ObserveAction(name, nil)
	return review.BuildView(s.session, s.opts.Catalog), nil
}

func (s *reviewService) View() (review.View, error) {
	return s.act("view", nil)
}

func (s *reviewService) Advance(direction review.Direction) (review.View, error) {
	return s.act("advance", func(sess *review.Session) error {
		return sess.Advance(direction)
	})
}

func (s *reviewService) Next() (review.View, error) {
	return s.act("next", func(sess *review.Session) error {
		return sess.Advance(review.Next)
	})
}

func (s *reviewService) Previous() (review.View, error) {
	return s.act("previous", func(sess *review.Session) error {
		return sess.Advance(review.Previous)
	})
}

func (s *reviewService) GoTo(page int) (review.View, error) {
	return s.act("goto", func(sess *review.Session) error {
		return sess.GoTo(page)
	})
}

func (s *reviewService) CycleDistance() (review.View, error) {
	return s.act("cycle_distance", func(sess *review.Session) error {
		return sess.CycleDistance()
	})
}

func (s *reviewService) ToggleMode() (review.View, error) {
	return s.act("toggle_mode", func(sess *review.Session) error {
		sess.ToggleMode()
		return nil
	})
}

func (s *reviewService) Groups() ([]GroupSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, ErrNotStarted
	}

	table := s.session.Table()
	groups := make([]GroupSummary, 0, table.GroupCount())
	for page, geobox := range table.Geoboxes() {
		records := table.Group(geobox)
		summary := GroupSummary{Page: page, Geobox: geobox, Records: len(records)}
		if anchor, err := review.Anchor(records); err == nil {
			summary.Anchor = anchor.HotelName
		}
		groups = append(groups, summary)
	}
	return groups, nil
}

func (s *reviewService) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return Status{}
	}
	table := s.session.Table()
	return Status{
		Ready:    true,
		Day:      table.Day(),
		Groups:   table.GroupCount(),
		Records:  table.Len(),
		Rejected: s.rejected,
		LoadedAt: s.loadedAt,
	}
}
