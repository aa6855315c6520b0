package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/jonesrussell/eventcrawl/internal/database"
	"github.com/jonesrussell/eventcrawl/internal/domain"
)

func testEvent() *domain.Event {
	start := time.Date(2025, time.June, 6, 21, 0, 0, 0, time.UTC)
	return &domain.Event{
		ID:         "evt-uuid",
		ExternalID: "evt-1",
		Name:       "Closing Party",
		EventType:  "Club Night",
		StartTime:  start,
		EndTime:    start.Add(7 * time.Hour),
		PostedAt:   start.AddDate(0, -1, 0),
	}
}

func TestEventRepository_Upsert_TrueInsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewEventRepository(db)

	mock.ExpectQuery("INSERT INTO events").
		WillReturnRows(sqlmock.NewRows([]string{"id", "inserted"}).
			AddRow("evt-uuid", true))

	id, inserted, err := repo.Upsert(context.Background(), testEvent())
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if id != "evt-uuid" {
		t.Errorf("Upsert() id = %q, want evt-uuid", id)
	}
	if !inserted {
		t.Error("Upsert() inserted = false, want true for first sighting")
	}

	expectationsMet(t, mock)
}

func TestEventRepository_Upsert_Update(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewEventRepository(db)

	mock.ExpectQuery("INSERT INTO events").
		WillReturnRows(sqlmock.NewRows([]string{"id", "inserted"}).
			AddRow("existing-evt", false))

	id, inserted, err := repo.Upsert(context.Background(), testEvent())
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if id != "existing-evt" {
		t.Errorf("Upsert() id = %q, want existing row id", id)
	}
	if inserted {
		t.Error("Upsert() inserted = true, want false for repeat import")
	}

	expectationsMet(t, mock)
}

func TestEventRepository_LinkArtist(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewEventRepository(db)

	mock.ExpectExec("INSERT INTO event_artist").
		WithArgs("evt-1", "artist-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := repo.LinkArtist(context.Background(), "evt-1", "artist-1")
	if err != nil {
		t.Fatalf("LinkArtist() error = %v", err)
	}
	if !created {
		t.Error("LinkArtist() created = false, want true for a new pair")
	}

	expectationsMet(t, mock)
}

func TestEventRepository_LinkVenue_ExistingPair(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewEventRepository(db)

	// ON CONFLICT DO NOTHING affects zero rows when the pair already exists.
	mock.ExpectExec("INSERT INTO event_venue").
		WithArgs("evt-1", "venue-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := repo.LinkVenue(context.Background(), "evt-1", "venue-1")
	if err != nil {
		t.Fatalf("LinkVenue() error = %v", err)
	}
	if created {
		t.Error("LinkVenue() created = true, want false for an existing pair")
	}

	expectationsMet(t, mock)
}
