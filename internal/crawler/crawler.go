// Package crawler orchestrates the three trigger operations: crawling the
// next due venue, scanning an area, and synchronizing the venue rotation.
package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonesrussell/eventcrawl/internal/classify"
	"github.com/jonesrussell/eventcrawl/internal/domain"
	"github.com/jonesrussell/eventcrawl/internal/logger"
	"github.com/jonesrussell/eventcrawl/internal/notify"
	"github.com/jonesrussell/eventcrawl/internal/source"
)

// DefaultEndTimeOffset is assumed when a listing has a start but no end.
const DefaultEndTimeOffset = 6 * time.Hour

// defaultFanOut bounds concurrent artist and promoter resolutions per event.
const defaultFanOut = 4

// invocationTimeout bounds one whole trigger operation.
const invocationTimeout = 5 * time.Minute

// Source is the slice of the graph API client the crawler needs.
type Source interface {
	VenueListings(ctx context.Context, venueID, startDate string) ([]source.EventStub, error)
	EventListings(ctx context.Context, areaID int, date string) ([]source.EventStub, error)
	EventDetail(ctx context.Context, id string) (*source.EventDetail, error)
	SiteURL() string
}

// EntityResolver memoizes entity resolution for one run.
type EntityResolver interface {
	ResolveVenue(ctx context.Context, stub *source.VenueStub, externalID string) (*domain.Venue, error)
	ResolveArtist(ctx context.Context, stub *source.ArtistStub) (*domain.Artist, error)
	ResolvePromoter(ctx context.Context, stub *source.PromoterStub) (*domain.Promoter, error)
	Venues() []*domain.Venue
	Artists() []*domain.Artist
	Promoters() []*domain.Promoter
}

// ResolverFactory builds a fresh resolver for each run so memoization never
// leaks across invocations.
type ResolverFactory func() EntityResolver

// Persister writes a resolved batch.
type Persister interface {
	Persist(ctx context.Context, batch *domain.Batch) *domain.PersistReport
}

// Schedule is the crawl rotation policy.
type Schedule interface {
	PickNext(ctx context.Context) (*domain.CrawlTarget, error)
	Reschedule(ctx context.Context, venueID string) error
	Track(ctx context.Context, venueID string) error
	SetActive(ctx context.Context, venueID string, active bool) error
	QueueDepth(ctx context.Context) (int, error)
}

// VenuePages is the page persistence the venue sync path needs.
type VenuePages interface {
	Upsert(ctx context.Context, page *domain.Page) (string, bool, error)
	UpsertVenueDetail(ctx context.Context, pageID string, latitude, longitude *float64, capacity int) error
	VenueIDsByCity(ctx context.Context, cityID string) (map[string]string, error)
}

// Cities lists the active cities to synchronize.
type Cities interface {
	ListActive(ctx context.Context) ([]domain.City, error)
}

// Crawler wires the source, resolver, persistence, and schedule together.
type Crawler struct {
	source      Source
	newResolver ResolverFactory
	persister   Persister
	schedule    Schedule
	pages       VenuePages
	cities      Cities
	sink        notify.Sink
	log         logger.Interface
	fanOut      int
}

// Params collects the crawler's dependencies.
type Params struct {
	Source      Source
	NewResolver ResolverFactory
	Persister   Persister
	Schedule    Schedule
	Pages       VenuePages
	Cities      Cities
	Sink        notify.Sink
	Logger      logger.Interface

	// FanOut bounds concurrent entity resolutions per event. Zero means the
	// default.
	FanOut int
}

// New creates a crawler.
func New(p Params) *Crawler {
	if p.FanOut <= 0 {
		p.FanOut = defaultFanOut
	}
	if p.Sink == nil {
		p.Sink = notify.NoopSink{}
	}
	return &Crawler{
		source:      p.Source,
		newResolver: p.NewResolver,
		persister:   p.Persister,
		schedule:    p.Schedule,
		pages:       p.Pages,
		cities:      p.Cities,
		sink:        p.Sink,
		log:         p.Logger,
		fanOut:      p.FanOut,
	}
}

// CrawlNextVenue crawls the venue with the earliest overdue schedule. The
// venue is rescheduled after the attempt whether or not it succeeded, so a
// failing venue cannot block the rotation.
func (c *Crawler) CrawlNextVenue(ctx context.Context) (*domain.Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, invocationTimeout)
	defer cancel()

	target, err := c.schedule.PickNext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to pick next venue: %w", err)
	}
	if target == nil {
		c.log.Info("No venues due for crawling")
		return &domain.Summary{Message: "no venues due for crawling"}, nil
	}

	c.log.Info("Crawling venue", "venue", target.Name, "external_id", target.ExternalID)

	// Reschedule must land even when the invocation deadline has expired.
	rescheduleCtx := context.WithoutCancel(ctx)
	defer func() {
		if rescheduleErr := c.schedule.Reschedule(rescheduleCtx, target.VenueID); rescheduleErr != nil {
			c.log.Error("Failed to reschedule venue", "venue_id", target.VenueID, "error", rescheduleErr)
		}
	}()

	stubs, err := c.source.VenueListings(ctx, target.ExternalID, today())
	if err != nil {
		c.sink.Notify(rescheduleCtx, fmt.Sprintf("Crawl failed for venue %s: %v", target.Name, err))
		return nil, fmt.Errorf("failed to list events for venue %s: %w", target.ExternalID, err)
	}

	summary, err := c.ingest(ctx, stubs)
	if err != nil {
		return nil, err
	}
	summary.Venue = target
	summary.Message = fmt.Sprintf("crawled venue %s", target.Name)

	var queueDepth *int
	if depth, depthErr := c.schedule.QueueDepth(ctx); depthErr == nil {
		queueDepth = &depth
	} else {
		c.log.Warn("Failed to read crawl queue depth", "error", depthErr)
	}
	c.sink.Notify(ctx, notify.CrawlMessage(
		target.Name, summary.EventsProcessed, summary.EventsSkipped, summary.Report.NewLinks, queueDepth))

	return summary, nil
}

// ScanArea ingests events for a whole area from startDate forward. An empty
// startDate means today. Unlike the venue path it does not touch the crawl
// schedule.
func (c *Crawler) ScanArea(ctx context.Context, areaID int, startDate string) (*domain.Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, invocationTimeout)
	defer cancel()

	if startDate == "" {
		startDate = today()
	}
	c.log.Info("Scanning area", "area_id", areaID, "start_date", startDate)

	stubs, err := c.source.EventListings(ctx, areaID, startDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list events for area %d: %w", areaID, err)
	}

	summary, err := c.ingest(ctx, stubs)
	if err != nil {
		return nil, err
	}
	summary.AreaID = areaID
	summary.Message = fmt.Sprintf("scanned area %d", areaID)
	return summary, nil
}

// ingest resolves and persists the events behind the given listing stubs.
// Individual event failures are skipped, never fatal.
func (c *Crawler) ingest(ctx context.Context, stubs []source.EventStub) (*domain.Summary, error) {
	res := c.newResolver()

	var (
		events  []*domain.Event
		skipped int
	)
	for i := range stubs {
		event, err := c.buildEvent(ctx, res, stubs[i].EventID())
		if err != nil {
			skipped++
			c.log.Warn("Skipping event", "event_id", stubs[i].EventID(), "error", err)
			continue
		}
		events = append(events, event)
	}

	batch := &domain.Batch{
		Venues:    res.Venues(),
		Artists:   res.Artists(),
		Promoters: res.Promoters(),
		Events:    events,
	}
	report := c.persister.Persist(ctx, batch)

	c.log.Info("Batch persisted",
		"events_processed", len(events),
		"events_skipped", skipped,
		"new_links", report.NewLinks,
		"errored", report.Errored())

	return &domain.Summary{
		EventsProcessed: len(events),
		EventsSkipped:   skipped,
		Report:          report,
	}, nil
}

// buildEvent fetches an event's detail and resolves everything it references.
func (c *Crawler) buildEvent(ctx context.Context, res EntityResolver, eventID string) (*domain.Event, error) {
	detail, err := c.source.EventDetail(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event %s: %w", eventID, err)
	}

	start, err := parseEventTime(detail.StartTime)
	if err != nil {
		return nil, fmt.Errorf("event %s has no usable start time: %w", eventID, err)
	}
	end, err := parseEventTime(detail.EndTime)
	if err != nil {
		end = start.Add(DefaultEndTimeOffset)
	}

	event := &domain.Event{
		ID:          uuid.NewString(),
		ExternalID:  detail.ID,
		Name:        detail.Title,
		Description: detail.Content,
		Visual:      eventVisual(detail),
		TicketsURL:  c.source.SiteURL() + detail.ContentURL,
		StartTime:   start,
		EndTime:     end,
		EventType:   classify.Classify(start, end),
	}
	if posted, postedErr := parseEventTime(detail.DatePosted); postedErr == nil {
		event.PostedAt = posted
	} else {
		// The source omits datePosted on some listings; fall back to now
		// rather than persisting a zero timestamp.
		event.PostedAt = time.Now().UTC()
	}

	if detail.Venue != nil && detail.Venue.ID != "" {
		venue, venueErr := res.ResolveVenue(ctx, detail.Venue, detail.Venue.ID)
		if venueErr != nil {
			c.log.Warn("Failed to resolve venue", "venue_id", detail.Venue.ID, "error", venueErr)
		} else {
			event.VenueID = &venue.ID
		}
	}

	// Artist and promoter resolutions for one event are independent reads;
	// issue them concurrently and join before persisting. Each goroutine
	// writes its own slot, so no lock is needed.
	artistIDs := make([]string, len(detail.Artists))
	promoterIDs := make([]string, len(detail.Promoters))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.fanOut)
	for i := range detail.Artists {
		g.Go(func() error {
			artist, artistErr := res.ResolveArtist(gctx, &detail.Artists[i])
			if artistErr != nil {
				c.log.Warn("Failed to resolve artist", "artist_id", detail.Artists[i].ID, "error", artistErr)
				return nil
			}
			if artist != nil {
				artistIDs[i] = artist.ID
			}
			return nil
		})
	}
	for i := range detail.Promoters {
		g.Go(func() error {
			promoter, promoterErr := res.ResolvePromoter(gctx, &detail.Promoters[i])
			if promoterErr != nil {
				c.log.Warn("Failed to resolve promoter", "promoter_id", detail.Promoters[i].ID, "error", promoterErr)
				return nil
			}
			if promoter != nil {
				promoterIDs[i] = promoter.ID
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, id := range artistIDs {
		if id != "" {
			event.ArtistIDs = append(event.ArtistIDs, id)
		}
	}
	for _, id := range promoterIDs {
		if id != "" {
			event.PromoterIDs = append(event.PromoterIDs, id)
		}
	}

	return event, nil
}

// SyncVenues refreshes the crawl rotation from the live listings of every
// active city: venues appearing in listings are created or reactivated,
// venues that no longer appear are deactivated.
func (c *Crawler) SyncVenues(ctx context.Context) (*domain.SyncSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, invocationTimeout)
	defer cancel()

	cities, err := c.cities.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active cities: %w", err)
	}

	summary := &domain.SyncSummary{}
	for i := range cities {
		if cityErr := c.syncCity(ctx, &cities[i], summary); cityErr != nil {
			summary.Errors++
			c.log.Error("Failed to sync city", "city", cities[i].Name, "error", cityErr)
			continue
		}
		summary.CitiesProcessed++
	}

	c.log.Info("Venue sync complete",
		"cities", summary.CitiesProcessed,
		"discovered", summary.VenuesDiscovered,
		"new", summary.NewVenues,
		"activated", summary.VenuesActivated,
		"deactivated", summary.VenuesDeactivated,
		"errors", summary.Errors)

	return summary, nil
}

func (c *Crawler) syncCity(ctx context.Context, city *domain.City, summary *domain.SyncSummary) error {
	stubs, err := c.source.EventListings(ctx, city.AreaID, today())
	if err != nil {
		return fmt.Errorf("failed to list events for area %d: %w", city.AreaID, err)
	}

	listed := make(map[string]*source.VenueStub)
	for i := range stubs {
		if ref := stubs[i].VenueRef(); ref != nil && ref.ID != "" {
			listed[ref.ID] = ref
		}
	}
	summary.VenuesDiscovered += len(listed)

	existing, err := c.pages.VenueIDsByCity(ctx, city.ID)
	if err != nil {
		return err
	}

	for externalID, stub := range listed {
		pageID, known := existing[externalID]
		if !known {
			newPageID, createErr := c.createVenue(ctx, stub, externalID, city.ID)
			if createErr != nil {
				summary.Errors++
				c.log.Warn("Failed to create venue", "external_id", externalID, "error", createErr)
				continue
			}
			pageID = newPageID
			summary.NewVenues++
		}
		if activeErr := c.schedule.SetActive(ctx, pageID, true); activeErr != nil {
			summary.Errors++
			c.log.Warn("Failed to activate venue", "venue_id", pageID, "error", activeErr)
			continue
		}
		summary.VenuesActivated++
	}

	for externalID, pageID := range existing {
		if _, stillListed := listed[externalID]; stillListed {
			continue
		}
		if inactiveErr := c.schedule.SetActive(ctx, pageID, false); inactiveErr != nil {
			summary.Errors++
			c.log.Warn("Failed to deactivate venue", "venue_id", pageID, "error", inactiveErr)
			continue
		}
		summary.VenuesDeactivated++
	}

	return nil
}

// createVenue persists a freshly discovered venue and puts it into the crawl
// rotation, due immediately.
func (c *Crawler) createVenue(ctx context.Context, stub *source.VenueStub, externalID, cityID string) (string, error) {
	res := c.newResolver()
	venue, err := res.ResolveVenue(ctx, stub, externalID)
	if err != nil {
		return "", err
	}
	if venue.HomeCityID == nil {
		venue.HomeCityID = &cityID
	}

	pageID, _, err := c.pages.Upsert(ctx, &venue.Page)
	if err != nil {
		return "", err
	}
	if err := c.pages.UpsertVenueDetail(ctx, pageID, venue.Latitude, venue.Longitude, venue.Capacity); err != nil {
		return "", err
	}
	if err := c.schedule.Track(ctx, pageID); err != nil {
		return "", err
	}

	c.log.Info("Discovered new venue", "name", venue.Name, "external_id", externalID)
	return pageID, nil
}

// eventVisual picks the event's flyer, falling back to the first attached
// image.
func eventVisual(detail *source.EventDetail) *string {
	if detail.FlyerFront != "" {
		return &detail.FlyerFront
	}
	for i := range detail.Images {
		if detail.Images[i].Filename != "" {
			return &detail.Images[i].Filename
		}
	}
	return nil
}

// eventTimeLayouts covers the source API's timestamp shapes: full RFC 3339 and
// the zone-less local forms listings use.
var eventTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func parseEventTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range eventTimeLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", value)
}

func today() string {
	return time.Now().UTC().Format("2006-01-02")
}
