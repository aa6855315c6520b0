// Package schedule decides which venue is crawled next and when it comes due
// again.
package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/jonesrussell/eventcrawl/internal/database"
	"github.com/jonesrussell/eventcrawl/internal/domain"
	"github.com/jonesrussell/eventcrawl/internal/logger"
)

// DefaultInterval is how long a venue waits between crawls. Failed crawls are
// not retried sooner, so a persistently broken venue cannot monopolize the
// queue.
const DefaultInterval = 7 * 24 * time.Hour

// Scheduler applies the crawl cadence policy on top of the status repository.
type Scheduler struct {
	statuses *database.CrawlStatusRepository
	interval time.Duration
	log      logger.Interface
}

// New creates a scheduler. A non-positive interval falls back to
// DefaultInterval.
func New(statuses *database.CrawlStatusRepository, interval time.Duration, log logger.Interface) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{statuses: statuses, interval: interval, log: log}
}

// PickNext selects the active venue with the earliest overdue crawl time.
// Returns (nil, nil) when nothing is due; that is a normal outcome, not an
// error.
func (s *Scheduler) PickNext(ctx context.Context) (*domain.CrawlTarget, error) {
	target, err := s.statuses.NextDue(ctx)
	if err != nil {
		if errors.Is(err, database.ErrNoVenueDue) {
			return nil, nil
		}
		return nil, err
	}
	return target, nil
}

// Reschedule pushes the venue's next crawl one interval into the future.
// Must run after every crawl attempt, successful or not.
func (s *Scheduler) Reschedule(ctx context.Context, venueID string) error {
	next := time.Now().Add(s.interval)
	if err := s.statuses.Reschedule(ctx, venueID, next); err != nil {
		return err
	}
	s.log.Debug("Venue rescheduled", "venue_id", venueID, "next_crawl_at", next)
	return nil
}

// Track registers a freshly discovered venue: active and due immediately.
func (s *Scheduler) Track(ctx context.Context, venueID string) error {
	return s.statuses.Ensure(ctx, venueID)
}

// SetActive flips a venue in or out of the scheduling rotation.
func (s *Scheduler) SetActive(ctx context.Context, venueID string, active bool) error {
	return s.statuses.SetActive(ctx, venueID, active)
}

// QueueDepth reports how many venues are currently due.
func (s *Scheduler) QueueDepth(ctx context.Context) (int, error) {
	return s.statuses.QueueDepth(ctx)
}
