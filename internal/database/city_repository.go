package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/eventcrawl/internal/domain"
)

// CityRepository handles database lookups against the cities table.
type CityRepository struct {
	db *sqlx.DB
}

// NewCityRepository creates a new city repository.
func NewCityRepository(db *sqlx.DB) *CityRepository {
	return &CityRepository{db: db}
}

// IDByName returns the city id for a name, or nil when the city is unknown.
// Unknown cities are not an error; venues simply persist without a home city.
func (r *CityRepository) IDByName(ctx context.Context, name string) (*string, error) {
	if name == "" {
		return nil, nil
	}

	var id string
	err := r.db.GetContext(ctx, &id, `SELECT id FROM cities WHERE name = $1`, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up city %q: %w", name, err)
	}

	return &id, nil
}

// ListActive returns every city flagged active, with its source area id.
func (r *CityRepository) ListActive(ctx context.Context) ([]domain.City, error) {
	query := `SELECT id, name, area_id, is_active FROM cities WHERE is_active`

	var cities []domain.City
	if err := r.db.SelectContext(ctx, &cities, query); err != nil {
		return nil, fmt.Errorf("failed to list active cities: %w", err)
	}
	return cities, nil
}
