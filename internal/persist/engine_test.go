package persist

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/eventcrawl/internal/domain"
	"github.com/jonesrussell/eventcrawl/internal/logger"
)

// fakePageStore keeps pages in memory keyed by external ID, mirroring the
// database conflict key.
type fakePageStore struct {
	byExternalID map[string]string
	deleted      []string

	failDetailFor  string // page name whose detail upsert fails
	failUpsertFor  string // page name whose page upsert fails
	detailUpserted []string
}

func newFakePageStore() *fakePageStore {
	return &fakePageStore{byExternalID: make(map[string]string)}
}

func (f *fakePageStore) Upsert(_ context.Context, page *domain.Page) (string, bool, error) {
	if page.Name == f.failUpsertFor {
		return "", false, errors.New("page upsert failed")
	}
	if id, ok := f.byExternalID[page.ExternalID]; ok {
		return id, false, nil
	}
	id := fmt.Sprintf("db-%s", page.ExternalID)
	f.byExternalID[page.ExternalID] = id
	return id, true, nil
}

func (f *fakePageStore) UpsertVenueDetail(_ context.Context, pageID string, _, _ *float64, _ int) error {
	return f.detail(pageID)
}

func (f *fakePageStore) UpsertArtistDetail(_ context.Context, pageID string, _ *string) error {
	return f.detail(pageID)
}

func (f *fakePageStore) detail(pageID string) error {
	if pageID == "db-"+f.failDetailFor {
		return errors.New("detail upsert failed")
	}
	f.detailUpserted = append(f.detailUpserted, pageID)
	return nil
}

func (f *fakePageStore) Delete(_ context.Context, pageID string) error {
	f.deleted = append(f.deleted, pageID)
	for ext, id := range f.byExternalID {
		if id == pageID {
			delete(f.byExternalID, ext)
		}
	}
	return nil
}

type linkRow struct{ eventID, pageID, kind string }

type fakeEventStore struct {
	byExternalID map[string]string
	links        []linkRow
	linkPairs    map[string]bool
	failLinkKind string // link kind whose writes fail
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{
		byExternalID: make(map[string]string),
		linkPairs:    make(map[string]bool),
	}
}

func (f *fakeEventStore) Upsert(_ context.Context, event *domain.Event) (string, bool, error) {
	if id, ok := f.byExternalID[event.ExternalID]; ok {
		return id, false, nil
	}
	id := "db-" + event.ExternalID
	f.byExternalID[event.ExternalID] = id
	return id, true, nil
}

func (f *fakeEventStore) link(eventID, pageID, kind string) (bool, error) {
	if kind == f.failLinkKind {
		return false, errors.New("link insert failed")
	}
	key := kind + "/" + eventID + "/" + pageID
	if f.linkPairs[key] {
		return false, nil
	}
	f.linkPairs[key] = true
	f.links = append(f.links, linkRow{eventID, pageID, kind})
	return true, nil
}

func (f *fakeEventStore) LinkVenue(_ context.Context, eventID, venueID string) (bool, error) {
	return f.link(eventID, venueID, "venue")
}

func (f *fakeEventStore) LinkArtist(_ context.Context, eventID, artistID string) (bool, error) {
	return f.link(eventID, artistID, "artist")
}

func (f *fakeEventStore) LinkPromoter(_ context.Context, eventID, promoterID string) (bool, error) {
	return f.link(eventID, promoterID, "promoter")
}

type fakeMixStore struct {
	upserts []string
	failAll bool
}

func (f *fakeMixStore) Upsert(_ context.Context, mix *domain.Mix, ownerType, ownerID string) error {
	if f.failAll {
		return errors.New("mix upsert failed")
	}
	f.upserts = append(f.upserts, ownerType+"/"+ownerID+"/"+mix.TrackID)
	return nil
}

func testBatch() *domain.Batch {
	venueID := "res-venue-1"
	return &domain.Batch{
		Venues: []*domain.Venue{{
			Page:     domain.Page{ID: "res-venue-1", ExternalID: "V1", Name: "Warehouse", PageType: domain.PageTypeVenue},
			Capacity: 500,
		}},
		Artists: []*domain.Artist{{
			Page: domain.Page{ID: "res-artist-1", ExternalID: "A1", Name: "DJ X", PageType: domain.PageTypeArtist},
			LastTracks: []domain.Mix{
				{TrackID: "t1", Title: "Mix One"},
				{TrackID: "t2", Title: "Mix Two"},
			},
		}},
		Promoters: []*domain.Promoter{{
			Page: domain.Page{ID: "res-promo-1", ExternalID: "P1", Name: "Night Ltd", PageType: domain.PageTypePromoter},
		}},
		Events: []*domain.Event{{
			ID:          "res-event-1",
			ExternalID:  "E1",
			Name:        "Opening Night",
			VenueID:     &venueID,
			ArtistIDs:   []string{"res-artist-1"},
			PromoterIDs: []string{"res-promo-1"},
		}},
	}
}

func TestPersistFullBatch(t *testing.T) {
	pages := newFakePageStore()
	events := newFakeEventStore()
	mixes := &fakeMixStore{}
	engine := New(pages, events, mixes, logger.NewNoOp())

	report := engine.Persist(context.Background(), testBatch())

	assert.Equal(t, 3, report.Pages.Attempted)
	assert.Equal(t, 3, report.Pages.Upserted)
	assert.Equal(t, 1, report.Venues.Upserted)
	assert.Equal(t, 1, report.Artists.Upserted)
	assert.Equal(t, 1, report.Promoters.Upserted)
	assert.Equal(t, 1, report.Events.Upserted)
	assert.Equal(t, 2, report.Mixes.Upserted)
	assert.Equal(t, 3, report.NewLinks)
	assert.False(t, report.Errored())

	require.Len(t, events.links, 3)
	assert.Equal(t, linkRow{"db-E1", "db-V1", "venue"}, events.links[0])
}

func TestPersistIdempotent(t *testing.T) {
	pages := newFakePageStore()
	events := newFakeEventStore()
	engine := New(pages, events, &fakeMixStore{}, logger.NewNoOp())

	first := engine.Persist(context.Background(), testBatch())
	require.Equal(t, 3, first.NewLinks)

	// Second run: every row already exists, so no new links are created but
	// all content upserts still run.
	second := engine.Persist(context.Background(), testBatch())
	assert.Equal(t, 0, second.NewLinks)
	assert.Equal(t, 3, second.Pages.Upserted)
	assert.Equal(t, 1, second.Events.Upserted)
	assert.False(t, second.Errored())
	assert.Len(t, events.links, 3)
}

func TestPersistCompensatingDelete(t *testing.T) {
	pages := newFakePageStore()
	pages.failDetailFor = "V1"
	events := newFakeEventStore()
	engine := New(pages, events, &fakeMixStore{}, logger.NewNoOp())

	report := engine.Persist(context.Background(), testBatch())

	// The freshly inserted venue page is rolled back, and the event cannot
	// link to a venue that no longer exists.
	assert.Equal(t, []string{"db-V1"}, pages.deleted)
	assert.Equal(t, 2, report.Pages.Upserted)
	assert.Equal(t, 1, report.Venues.Errored)
	assert.True(t, report.Errored())

	for _, link := range events.links {
		assert.NotEqual(t, "venue", link.kind)
	}
	assert.Len(t, events.links, 2)
}

func TestPersistDetailFailureOnExistingPage(t *testing.T) {
	pages := newFakePageStore()
	events := newFakeEventStore()
	engine := New(pages, events, &fakeMixStore{}, logger.NewNoOp())

	// Seed the venue page so the second pass sees it as pre-existing.
	engine.Persist(context.Background(), testBatch())

	pages.failDetailFor = "V1"
	pages.deleted = nil
	report := engine.Persist(context.Background(), testBatch())

	// Pre-existing pages survive a detail failure.
	assert.Empty(t, pages.deleted)
	assert.Equal(t, 1, report.Venues.Errored)
}

func TestPersistPageFailureSkipsEntity(t *testing.T) {
	pages := newFakePageStore()
	pages.failUpsertFor = "DJ X"
	events := newFakeEventStore()
	mixes := &fakeMixStore{}
	engine := New(pages, events, mixes, logger.NewNoOp())

	report := engine.Persist(context.Background(), testBatch())

	assert.Equal(t, 1, report.Pages.Errored)
	// No detail row, no mixes, no artist link for the failed page.
	assert.Equal(t, 0, report.Artists.Attempted)
	assert.Equal(t, 0, report.Mixes.Attempted)
	for _, link := range events.links {
		assert.NotEqual(t, "artist", link.kind)
	}
	// The event itself and its other links still go through.
	assert.Equal(t, 1, report.Events.Upserted)
	assert.Equal(t, 2, report.NewLinks)
}

func TestPersistMixFailuresAreCounted(t *testing.T) {
	pages := newFakePageStore()
	mixes := &fakeMixStore{failAll: true}
	engine := New(pages, newFakeEventStore(), mixes, logger.NewNoOp())

	report := engine.Persist(context.Background(), testBatch())

	assert.Equal(t, 2, report.Mixes.Attempted)
	assert.Equal(t, 2, report.Mixes.Errored)
	assert.Equal(t, 0, report.Mixes.Upserted)
	// Mix failures do not block the owning artist.
	assert.Equal(t, 1, report.Artists.Upserted)
}

func TestPersistLinkFailuresAreCounted(t *testing.T) {
	events := newFakeEventStore()
	events.failLinkKind = "artist"
	engine := New(newFakePageStore(), events, &fakeMixStore{}, logger.NewNoOp())

	report := engine.Persist(context.Background(), testBatch())

	assert.Equal(t, 1, report.LinkErrors)
	assert.Equal(t, 2, report.NewLinks)
	assert.True(t, report.Errored(), "a failed link row is a row-level failure")
	// The event and the surviving links are untouched.
	assert.Equal(t, 1, report.Events.Upserted)
	assert.Len(t, events.links, 2)
}

func TestPersistEmptyBatch(t *testing.T) {
	engine := New(newFakePageStore(), newFakeEventStore(), &fakeMixStore{}, logger.NewNoOp())

	report := engine.Persist(context.Background(), &domain.Batch{})

	assert.NotNil(t, report)
	assert.False(t, report.Errored())
	assert.Equal(t, 0, report.Pages.Attempted)
}
