// Package persist writes a resolved batch into the database in dependency
// order: pages first, then detail rows and mixes, then events and their link
// rows. Row-level failures are counted and skipped so one bad record cannot
// sink the whole batch.
package persist

import (
	"context"

	"github.com/jonesrussell/eventcrawl/internal/domain"
	"github.com/jonesrussell/eventcrawl/internal/logger"
)

// PageStore is the subset of page persistence the engine needs.
type PageStore interface {
	Upsert(ctx context.Context, page *domain.Page) (id string, inserted bool, err error)
	UpsertVenueDetail(ctx context.Context, pageID string, latitude, longitude *float64, capacity int) error
	UpsertArtistDetail(ctx context.Context, pageID string, soundcloudUserID *string) error
	Delete(ctx context.Context, pageID string) error
}

// EventStore is the subset of event persistence the engine needs.
type EventStore interface {
	Upsert(ctx context.Context, event *domain.Event) (id string, inserted bool, err error)
	LinkVenue(ctx context.Context, eventID, venueID string) (created bool, err error)
	LinkArtist(ctx context.Context, eventID, artistID string) (created bool, err error)
	LinkPromoter(ctx context.Context, eventID, promoterID string) (created bool, err error)
}

// MixStore is the subset of mix persistence the engine needs.
type MixStore interface {
	Upsert(ctx context.Context, mix *domain.Mix, ownerType, ownerID string) error
}

// Engine persists batches. Safe for reuse across batches; each Persist call
// builds fresh ID maps.
type Engine struct {
	pages  PageStore
	events EventStore
	mixes  MixStore
	log    logger.Interface
}

// New creates a persistence engine over the given stores.
func New(pages PageStore, events EventStore, mixes MixStore, log logger.Interface) *Engine {
	return &Engine{pages: pages, events: events, mixes: mixes, log: log}
}

// Persist writes the batch and reports per-type counts. The returned report is
// never nil. Failures are logged and tallied; the only way a record is silently
// absent from the database is if it errored, in which case it is counted.
func (e *Engine) Persist(ctx context.Context, batch *domain.Batch) *domain.PersistReport {
	report := &domain.PersistReport{}

	// Batch IDs (resolver-assigned) to database page IDs. Events reference
	// entities through these maps, so an entity that failed to persist drops
	// out of link creation too.
	venueIDs := make(map[string]string, len(batch.Venues))
	artistIDs := make(map[string]string, len(batch.Artists))
	promoterIDs := make(map[string]string, len(batch.Promoters))

	for _, venue := range batch.Venues {
		e.persistVenue(ctx, venue, venueIDs, report)
	}
	for _, artist := range batch.Artists {
		e.persistArtist(ctx, artist, artistIDs, report)
	}
	for _, promoter := range batch.Promoters {
		e.persistPromoter(ctx, promoter, promoterIDs, report)
	}
	for _, event := range batch.Events {
		e.persistEvent(ctx, event, venueIDs, artistIDs, promoterIDs, report)
	}

	return report
}

func (e *Engine) persistVenue(ctx context.Context, venue *domain.Venue, ids map[string]string, report *domain.PersistReport) {
	pageID, inserted, ok := e.upsertPage(ctx, &venue.Page, report)
	if !ok {
		return
	}

	report.Venues.Attempted++
	if err := e.pages.UpsertVenueDetail(ctx, pageID, venue.Latitude, venue.Longitude, venue.Capacity); err != nil {
		report.Venues.Errored++
		e.log.Error("Failed to upsert venue detail", "page_id", pageID, "name", venue.Name, "error", err)
		e.compensate(ctx, pageID, inserted, report)
		return
	}
	report.Venues.Upserted++

	ids[venue.ID] = pageID
	e.persistMixes(ctx, venue.LastTracks, domain.PageTypeVenue, pageID, report)
}

func (e *Engine) persistArtist(ctx context.Context, artist *domain.Artist, ids map[string]string, report *domain.PersistReport) {
	pageID, inserted, ok := e.upsertPage(ctx, &artist.Page, report)
	if !ok {
		return
	}

	report.Artists.Attempted++
	if err := e.pages.UpsertArtistDetail(ctx, pageID, artist.SoundcloudUserID); err != nil {
		report.Artists.Errored++
		e.log.Error("Failed to upsert artist detail", "page_id", pageID, "name", artist.Name, "error", err)
		e.compensate(ctx, pageID, inserted, report)
		return
	}
	report.Artists.Upserted++

	ids[artist.ID] = pageID
	e.persistMixes(ctx, artist.LastTracks, domain.PageTypeArtist, pageID, report)
}

func (e *Engine) persistPromoter(ctx context.Context, promoter *domain.Promoter, ids map[string]string, report *domain.PersistReport) {
	pageID, _, ok := e.upsertPage(ctx, &promoter.Page, report)
	if !ok {
		return
	}
	report.Promoters.Attempted++
	report.Promoters.Upserted++

	ids[promoter.ID] = pageID
	e.persistMixes(ctx, promoter.LastTracks, domain.PageTypePromoter, pageID, report)
}

// upsertPage writes the shared page row. Returns ok=false when the row failed
// and downstream work for this entity must be skipped.
func (e *Engine) upsertPage(ctx context.Context, page *domain.Page, report *domain.PersistReport) (string, bool, bool) {
	report.Pages.Attempted++
	pageID, inserted, err := e.pages.Upsert(ctx, page)
	if err != nil {
		report.Pages.Errored++
		e.log.Error("Failed to upsert page", "external_id", page.ExternalID, "name", page.Name, "error", err)
		return "", false, false
	}
	report.Pages.Upserted++
	return pageID, inserted, true
}

// compensate removes an orphaned page when its detail row failed on a
// brand-new insert. Pre-existing pages are left in place.
func (e *Engine) compensate(ctx context.Context, pageID string, inserted bool, report *domain.PersistReport) {
	if !inserted {
		return
	}
	if err := e.pages.Delete(ctx, pageID); err != nil {
		e.log.Error("Failed to delete orphaned page", "page_id", pageID, "error", err)
		return
	}
	// The page row is gone again: it no longer counts as upserted.
	report.Pages.Upserted--
	e.log.Warn("Deleted orphaned page after detail failure", "page_id", pageID)
}

func (e *Engine) persistMixes(ctx context.Context, mixes []domain.Mix, ownerType, ownerID string, report *domain.PersistReport) {
	for i := range mixes {
		report.Mixes.Attempted++
		if err := e.mixes.Upsert(ctx, &mixes[i], ownerType, ownerID); err != nil {
			report.Mixes.Errored++
			e.log.Error("Failed to upsert mix", "track_id", mixes[i].TrackID, "owner_id", ownerID, "error", err)
			continue
		}
		report.Mixes.Upserted++
	}
}

func (e *Engine) persistEvent(ctx context.Context, event *domain.Event, venueIDs, artistIDs, promoterIDs map[string]string, report *domain.PersistReport) {
	report.Events.Attempted++
	eventID, inserted, err := e.events.Upsert(ctx, event)
	if err != nil {
		report.Events.Errored++
		e.log.Error("Failed to upsert event", "external_id", event.ExternalID, "name", event.Name, "error", err)
		return
	}
	report.Events.Upserted++

	// Link rows are only created on a true insert. A re-crawled event keeps
	// its existing links; content updates above are enough.
	if !inserted {
		return
	}

	if event.VenueID != nil {
		if venueID, ok := venueIDs[*event.VenueID]; ok {
			created, linkErr := e.events.LinkVenue(ctx, eventID, venueID)
			e.recordLink(report, created, linkErr)
		}
	}
	for _, id := range event.ArtistIDs {
		if artistID, ok := artistIDs[id]; ok {
			created, linkErr := e.events.LinkArtist(ctx, eventID, artistID)
			e.recordLink(report, created, linkErr)
		}
	}
	for _, id := range event.PromoterIDs {
		if promoterID, ok := promoterIDs[id]; ok {
			created, linkErr := e.events.LinkPromoter(ctx, eventID, promoterID)
			e.recordLink(report, created, linkErr)
		}
	}
}

func (e *Engine) recordLink(report *domain.PersistReport, created bool, err error) {
	if err != nil {
		report.LinkErrors++
		e.log.Error("Failed to create event link", "error", err)
		return
	}
	if created {
		report.NewLinks++
	}
}
