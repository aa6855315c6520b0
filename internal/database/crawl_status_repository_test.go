package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/jonesrussell/eventcrawl/internal/database"
)

func TestCrawlStatusRepository_NextDue(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewCrawlStatusRepository(db)

	mock.ExpectQuery("SELECT s.venue_id, p.external_id, p.name").
		WillReturnRows(sqlmock.NewRows([]string{"venue_id", "external_id", "name"}).
			AddRow("page-1", "429", "Fabric"))

	target, err := repo.NextDue(context.Background())
	if err != nil {
		t.Fatalf("NextDue() error = %v", err)
	}
	if target.VenueID != "page-1" || target.ExternalID != "429" || target.Name != "Fabric" {
		t.Errorf("NextDue() = %+v, want page-1/429/Fabric", target)
	}

	expectationsMet(t, mock)
}

func TestCrawlStatusRepository_NextDue_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewCrawlStatusRepository(db)

	mock.ExpectQuery("SELECT s.venue_id, p.external_id, p.name").
		WillReturnRows(sqlmock.NewRows([]string{"venue_id", "external_id", "name"}))

	_, err := repo.NextDue(context.Background())
	if !errors.Is(err, database.ErrNoVenueDue) {
		t.Fatalf("NextDue() error = %v, want ErrNoVenueDue", err)
	}

	expectationsMet(t, mock)
}

func TestCrawlStatusRepository_Reschedule(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewCrawlStatusRepository(db)

	next := time.Now().Add(7 * 24 * time.Hour)
	mock.ExpectExec("UPDATE venue_crawling_status").
		WithArgs("page-1", next).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Reschedule(context.Background(), "page-1", next); err != nil {
		t.Fatalf("Reschedule() error = %v", err)
	}

	expectationsMet(t, mock)
}

func TestCrawlStatusRepository_Ensure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewCrawlStatusRepository(db)

	mock.ExpectExec("INSERT INTO venue_crawling_status").
		WithArgs("page-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Ensure(context.Background(), "page-1"); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}

	// Re-ensuring an already tracked venue is a no-op, not an error.
	mock.ExpectExec("INSERT INTO venue_crawling_status").
		WithArgs("page-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Ensure(context.Background(), "page-1"); err != nil {
		t.Fatalf("Ensure() second call error = %v", err)
	}

	expectationsMet(t, mock)
}

func TestCrawlStatusRepository_QueueDepth(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewCrawlStatusRepository(db)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	depth, err := repo.QueueDepth(context.Background())
	if err != nil {
		t.Fatalf("QueueDepth() error = %v", err)
	}
	if depth != 7 {
		t.Errorf("QueueDepth() = %d, want 7", depth)
	}

	expectationsMet(t, mock)
}
