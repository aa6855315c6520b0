package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/eventcrawl/internal/domain"
)

// ErrNoVenueDue is returned when NextDue finds no active venue whose next
// crawl time has passed. Callers should check with errors.Is().
var ErrNoVenueDue = errors.New("no venue due for crawling")

// CrawlStatusRepository handles database operations for per-venue crawl
// schedules.
type CrawlStatusRepository struct {
	db *sqlx.DB
}

// NewCrawlStatusRepository creates a new crawl status repository.
func NewCrawlStatusRepository(db *sqlx.DB) *CrawlStatusRepository {
	return &CrawlStatusRepository{db: db}
}

// NextDue selects the active venue with the earliest overdue next crawl time.
// Concurrent pickers skip rows another transaction already claimed. Returns
// ErrNoVenueDue when nothing is due.
func (r *CrawlStatusRepository) NextDue(ctx context.Context) (*domain.CrawlTarget, error) {
	query := `
		SELECT s.venue_id, p.external_id, p.name
		FROM venue_crawling_status s
		JOIN pages p ON p.id = s.venue_id
		WHERE s.is_active AND s.next_crawl_at <= NOW()
		ORDER BY s.next_crawl_at ASC
		LIMIT 1
		FOR UPDATE OF s SKIP LOCKED
	`

	var target domain.CrawlTarget
	if err := r.db.GetContext(ctx, &target, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoVenueDue
		}
		return nil, fmt.Errorf("failed to select next due venue: %w", err)
	}

	return &target, nil
}

// Reschedule records a crawl attempt: last crawled now, next crawl at the
// given time. Called after every attempt regardless of outcome.
func (r *CrawlStatusRepository) Reschedule(ctx context.Context, venueID string, nextCrawlAt time.Time) error {
	query := `
		UPDATE venue_crawling_status
		SET last_crawled_at = NOW(), next_crawl_at = $2
		WHERE venue_id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, venueID, nextCrawlAt); err != nil {
		return fmt.Errorf("failed to reschedule venue %s: %w", venueID, err)
	}
	return nil
}

// Ensure creates the crawl status row for a freshly discovered venue: active
// and due immediately. Existing rows are left untouched.
func (r *CrawlStatusRepository) Ensure(ctx context.Context, venueID string) error {
	query := `
		INSERT INTO venue_crawling_status (venue_id, is_active, next_crawl_at)
		VALUES ($1, TRUE, NOW())
		ON CONFLICT (venue_id) DO NOTHING
	`

	if _, err := r.db.ExecContext(ctx, query, venueID); err != nil {
		return fmt.Errorf("failed to ensure crawl status for venue %s: %w", venueID, err)
	}
	return nil
}

// SetActive flips a venue's active flag. Inactive venues are never selected
// by NextDue.
func (r *CrawlStatusRepository) SetActive(ctx context.Context, venueID string, active bool) error {
	query := `UPDATE venue_crawling_status SET is_active = $2 WHERE venue_id = $1`

	if _, err := r.db.ExecContext(ctx, query, venueID, active); err != nil {
		return fmt.Errorf("failed to set active=%t for venue %s: %w", active, venueID, err)
	}
	return nil
}

// QueueDepth counts active venues currently due. Used by the post-crawl
// summary report.
func (r *CrawlStatusRepository) QueueDepth(ctx context.Context) (int, error) {
	query := `
		SELECT COUNT(*) FROM venue_crawling_status
		WHERE is_active AND next_crawl_at <= NOW()
	`

	var depth int
	if err := r.db.GetContext(ctx, &depth, query); err != nil {
		return 0, fmt.Errorf("failed to count due venues: %w", err)
	}
	return depth, nil
}
