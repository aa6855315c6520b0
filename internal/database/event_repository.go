package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/eventcrawl/internal/domain"
)

// EventRepository handles database operations for events and their link
// tables.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Upsert inserts or updates an event keyed by external id. The inserted flag
// distinguishes a true insert from an update of an existing row; link rows
// are only created for true inserts.
func (r *EventRepository) Upsert(ctx context.Context, event *domain.Event) (string, bool, error) {
	query := `
		INSERT INTO events (
			id, external_id, name, description, visual, tickets_url,
			start_date, end_date, event_type, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (external_id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			visual = EXCLUDED.visual,
			tickets_url = EXCLUDED.tickets_url,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			event_type = EXCLUDED.event_type,
			updated_at = NOW()
		RETURNING id, (xmax = 0) AS inserted
	`

	var result struct {
		ID       string `db:"id"`
		Inserted bool   `db:"inserted"`
	}
	err := r.db.GetContext(ctx, &result, query,
		event.ID, event.ExternalID, event.Name, event.Description, event.Visual,
		event.TicketsURL, event.StartTime, event.EndTime, event.EventType, event.PostedAt,
	)
	if err != nil {
		return "", false, fmt.Errorf("failed to upsert event %s: %w", event.ExternalID, err)
	}

	return result.ID, result.Inserted, nil
}

// LinkVenue creates the event-venue link row. Returns true when a new row was
// created, false when the pair already existed.
func (r *EventRepository) LinkVenue(ctx context.Context, eventID, venueID string) (bool, error) {
	return r.link(ctx,
		`INSERT INTO event_venue (event_id, venue_id) VALUES ($1, $2)
		 ON CONFLICT (event_id, venue_id) DO NOTHING`,
		eventID, venueID)
}

// LinkArtist creates the event-artist link row.
func (r *EventRepository) LinkArtist(ctx context.Context, eventID, artistID string) (bool, error) {
	return r.link(ctx,
		`INSERT INTO event_artist (event_id, artist_id) VALUES ($1, $2)
		 ON CONFLICT (event_id, artist_id) DO NOTHING`,
		eventID, artistID)
}

// LinkPromoter creates the event-promoter link row.
func (r *EventRepository) LinkPromoter(ctx context.Context, eventID, promoterID string) (bool, error) {
	return r.link(ctx,
		`INSERT INTO event_promoter (event_id, promoter_id) VALUES ($1, $2)
		 ON CONFLICT (event_id, promoter_id) DO NOTHING`,
		eventID, promoterID)
}

func (r *EventRepository) link(ctx context.Context, query, eventID, pageID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, query, eventID, pageID)
	if err != nil {
		return false, fmt.Errorf("failed to link event %s to page %s: %w", eventID, pageID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read link result for event %s: %w", eventID, err)
	}
	return affected > 0, nil
}
