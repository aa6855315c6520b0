package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/eventcrawl/internal/domain"
)

// PageRepository handles database operations for pages and their per-type
// detail rows.
type PageRepository struct {
	db *sqlx.DB
}

// NewPageRepository creates a new page repository.
func NewPageRepository(db *sqlx.DB) *PageRepository {
	return &PageRepository{db: db}
}

// Upsert inserts or updates a page keyed by external id. The internal id is
// only honored on first insert; on conflict the existing row's id is kept and
// returned. Mutable fields are last-write-wins. The inserted flag reports
// whether this call created the row.
func (r *PageRepository) Upsert(ctx context.Context, page *domain.Page) (string, bool, error) {
	query := `
		INSERT INTO pages (
			id, external_id, handle, name, page_type, bio,
			profile_picture, cover_picture, home_city_id,
			website, instagram, facebook, twitter, bandcamp, discogs, soundcloud
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (external_id) DO UPDATE SET
			handle = EXCLUDED.handle,
			name = EXCLUDED.name,
			bio = EXCLUDED.bio,
			profile_picture = EXCLUDED.profile_picture,
			cover_picture = EXCLUDED.cover_picture,
			home_city_id = COALESCE(EXCLUDED.home_city_id, pages.home_city_id),
			website = EXCLUDED.website,
			instagram = EXCLUDED.instagram,
			facebook = EXCLUDED.facebook,
			twitter = EXCLUDED.twitter,
			bandcamp = EXCLUDED.bandcamp,
			discogs = EXCLUDED.discogs,
			soundcloud = EXCLUDED.soundcloud,
			updated_at = NOW()
		RETURNING id, (xmax = 0) AS inserted
	`

	var result struct {
		ID       string `db:"id"`
		Inserted bool   `db:"inserted"`
	}
	err := r.db.GetContext(ctx, &result, query,
		page.ID, page.ExternalID, page.Handle, page.Name, page.PageType, page.Bio,
		page.ProfilePicture, page.CoverPicture, page.HomeCityID,
		page.Website, page.Instagram, page.Facebook, page.Twitter,
		page.Bandcamp, page.Discogs, page.Soundcloud,
	)
	if err != nil {
		return "", false, fmt.Errorf("failed to upsert page %s: %w", page.ExternalID, err)
	}

	return result.ID, result.Inserted, nil
}

// UpsertVenueDetail inserts or updates the venue detail row keyed 1:1 by page
// id.
func (r *PageRepository) UpsertVenueDetail(ctx context.Context, pageID string, latitude, longitude *float64, capacity int) error {
	query := `
		INSERT INTO venues (id, latitude, longitude, capacity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			capacity = EXCLUDED.capacity
	`

	if _, err := r.db.ExecContext(ctx, query, pageID, latitude, longitude, capacity); err != nil {
		return fmt.Errorf("failed to upsert venue detail %s: %w", pageID, err)
	}
	return nil
}

// UpsertArtistDetail inserts or updates the artist detail row keyed 1:1 by
// page id.
func (r *PageRepository) UpsertArtistDetail(ctx context.Context, pageID string, soundcloudUserID *string) error {
	query := `
		INSERT INTO artists (id, soundcloud_user_id)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET
			soundcloud_user_id = COALESCE(EXCLUDED.soundcloud_user_id, artists.soundcloud_user_id)
	`

	if _, err := r.db.ExecContext(ctx, query, pageID, soundcloudUserID); err != nil {
		return fmt.Errorf("failed to upsert artist detail %s: %w", pageID, err)
	}
	return nil
}

// Delete removes a page row. Used as the compensating action when a detail
// row cannot be written after a brand-new page insert.
func (r *PageRepository) Delete(ctx context.Context, pageID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pages WHERE id = $1`, pageID); err != nil {
		return fmt.Errorf("failed to delete page %s: %w", pageID, err)
	}
	return nil
}

// VenueIDsByCity maps external id to page id for every venue page homed in
// the given city.
func (r *PageRepository) VenueIDsByCity(ctx context.Context, cityID string) (map[string]string, error) {
	query := `
		SELECT id, external_id FROM pages
		WHERE home_city_id = $1 AND page_type = $2
	`

	var rows []struct {
		ID         string `db:"id"`
		ExternalID string `db:"external_id"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, cityID, domain.PageTypeVenue); err != nil {
		return nil, fmt.Errorf("failed to list venues for city %s: %w", cityID, err)
	}

	venues := make(map[string]string, len(rows))
	for _, row := range rows {
		venues[row.ExternalID] = row.ID
	}
	return venues, nil
}
