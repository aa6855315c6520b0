package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/eventcrawl/internal/domain"
)

// MixRepository handles database operations for audio tracks.
type MixRepository struct {
	db *sqlx.DB
}

// NewMixRepository creates a new mix repository.
func NewMixRepository(db *sqlx.DB) *MixRepository {
	return &MixRepository{db: db}
}

// Upsert inserts or updates a mix keyed by track id. Exactly one owner
// foreign key is set according to ownerType; the other two are nulled so a
// track never belongs to more than one page.
func (r *MixRepository) Upsert(ctx context.Context, mix *domain.Mix, ownerType, ownerID string) error {
	var venueID, artistID, promoterID *string
	switch ownerType {
	case domain.PageTypeVenue:
		venueID = &ownerID
	case domain.PageTypeArtist:
		artistID = &ownerID
	case domain.PageTypePromoter:
		promoterID = &ownerID
	default:
		return fmt.Errorf("invalid mix owner type %q", ownerType)
	}

	query := `
		INSERT INTO mixes (track_id, name, url, cover_image, venue_id, artist_id, promoter_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (track_id) DO UPDATE SET
			name = EXCLUDED.name,
			url = EXCLUDED.url,
			cover_image = EXCLUDED.cover_image,
			venue_id = EXCLUDED.venue_id,
			artist_id = EXCLUDED.artist_id,
			promoter_id = EXCLUDED.promoter_id
	`

	_, err := r.db.ExecContext(ctx, query,
		mix.TrackID, mix.Title, mix.StreamURL, mix.ArtworkURL,
		venueID, artistID, promoterID,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert mix %s: %w", mix.TrackID, err)
	}
	return nil
}
