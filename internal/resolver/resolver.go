// Package resolver turns raw entity stubs from listings into fully-detailed
// internal entities, memoized per crawl run.
package resolver

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/jonesrussell/eventcrawl/internal/domain"
	"github.com/jonesrussell/eventcrawl/internal/logger"
	"github.com/jonesrussell/eventcrawl/internal/source"
)

// SourceAPI is the slice of the source client the resolver needs.
type SourceAPI interface {
	VenueDetail(ctx context.Context, id string) (*source.VenueDetail, error)
	ArtistDetail(ctx context.Context, slug string) (*source.ArtistDetail, error)
	PromoterDetail(ctx context.Context, id string) (*source.PromoterDetail, error)
}

// AudioResolver enriches artists with platform user IDs and recent tracks.
type AudioResolver interface {
	ResolveUserID(ctx context.Context, profileURL string) (string, error)
	RecentTracks(ctx context.Context, userID string) ([]domain.Mix, error)
}

// CityDirectory looks up persisted city IDs by name.
type CityDirectory interface {
	IDByName(ctx context.Context, name string) (*string, error)
}

// Resolver memoizes venue, artist, and promoter resolution for one crawl run.
// Construct a fresh Resolver per invocation; the maps must not outlive it.
// Safe for concurrent use within the run: concurrent resolutions of the same
// external id share a single detail fetch.
type Resolver struct {
	source SourceAPI
	audio  AudioResolver
	cities CityDirectory
	log    logger.Interface

	flights   singleflight.Group
	mu        sync.Mutex
	venues    map[string]*domain.Venue
	artists   map[string]*domain.Artist
	promoters map[string]*domain.Promoter
}

// New creates a resolver with empty caches.
func New(src SourceAPI, audio AudioResolver, cities CityDirectory, log logger.Interface) *Resolver {
	return &Resolver{
		source:    src,
		audio:     audio,
		cities:    cities,
		log:       log,
		venues:    make(map[string]*domain.Venue),
		artists:   make(map[string]*domain.Artist),
		promoters: make(map[string]*domain.Promoter),
	}
}

// Venues returns every venue resolved during this run.
func (r *Resolver) Venues() []*domain.Venue {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.Venue, 0, len(r.venues))
	for _, v := range r.venues {
		out = append(out, v)
	}
	return out
}

// Artists returns every artist resolved during this run.
func (r *Resolver) Artists() []*domain.Artist {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.Artist, 0, len(r.artists))
	for _, a := range r.artists {
		out = append(out, a)
	}
	return out
}

// Promoters returns every promoter resolved during this run.
func (r *Resolver) Promoters() []*domain.Promoter {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.Promoter, 0, len(r.promoters))
	for _, p := range r.promoters {
		out = append(out, p)
	}
	return out
}

// ResolveVenue returns the fully-detailed venue for externalID, fetching
// lazily on first sight. The stub fills fields the detail payload lacks, such
// as coordinates that only appear on the originating event. Returns an error
// when the detail fetch fails; callers should skip the venue, not abort.
func (r *Resolver) ResolveVenue(ctx context.Context, stub *source.VenueStub, externalID string) (*domain.Venue, error) {
	resolved, err, _ := r.flights.Do("venue:"+externalID, func() (any, error) {
		return r.resolveVenue(ctx, stub, externalID)
	})
	if err != nil {
		return nil, err
	}
	return resolved.(*domain.Venue), nil
}

func (r *Resolver) resolveVenue(ctx context.Context, stub *source.VenueStub, externalID string) (*domain.Venue, error) {
	r.mu.Lock()
	if cached, ok := r.venues[externalID]; ok {
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	detail, err := r.source.VenueDetail(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch venue %s: %w", externalID, err)
	}

	name := detail.Name
	if name == "" && stub != nil {
		name = stub.Name
	}
	if name == "" {
		name = "Unknown Venue"
	}

	venue := &domain.Venue{
		Page: domain.Page{
			ID:             uuid.NewString(),
			ExternalID:     externalID,
			Name:           name,
			Handle:         domain.HandleFromName(name),
			PageType:       domain.PageTypeVenue,
			Bio:            optional(detail.Blurb),
			ProfilePicture: optional(detail.LogoURL),
			CoverPicture:   optional(detail.Photo),
			Website:        optional(detail.Website),
		},
		Capacity: detail.Capacity,
	}

	if stub != nil && stub.Location != nil {
		venue.Latitude = &stub.Location.Latitude
		venue.Longitude = &stub.Location.Longitude
	}

	if detail.Area != nil && detail.Area.Name != "" {
		cityID, cityErr := r.cities.IDByName(ctx, detail.Area.Name)
		if cityErr != nil {
			r.log.Warn("Failed to resolve home city",
				"venue", name, "city", detail.Area.Name, "error", cityErr)
		} else {
			venue.HomeCityID = cityID
		}
	}

	r.mu.Lock()
	r.venues[externalID] = venue
	r.mu.Unlock()
	return venue, nil
}

// ResolveArtist returns the fully-detailed artist for the stub, enriched with
// the platform user id and recent tracks when a soundcloud link is present.
// A stub without a URL slug cannot be resolved and yields (nil, nil) without
// a network call.
func (r *Resolver) ResolveArtist(ctx context.Context, stub *source.ArtistStub) (*domain.Artist, error) {
	if stub == nil || stub.ID == "" || stub.URLSafeName == "" {
		return nil, nil
	}

	resolved, err, _ := r.flights.Do("artist:"+stub.ID, func() (any, error) {
		return r.resolveArtist(ctx, stub)
	})
	if err != nil {
		return nil, err
	}
	return resolved.(*domain.Artist), nil
}

func (r *Resolver) resolveArtist(ctx context.Context, stub *source.ArtistStub) (*domain.Artist, error) {
	r.mu.Lock()
	if cached, ok := r.artists[stub.ID]; ok {
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	detail, err := r.source.ArtistDetail(ctx, stub.URLSafeName)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch artist %s (slug %s): %w", stub.ID, stub.URLSafeName, err)
	}

	name := detail.Name
	if name == "" {
		name = stub.Name
	}

	artist := &domain.Artist{
		Page: domain.Page{
			ID:             uuid.NewString(),
			ExternalID:     stub.ID,
			Name:           name,
			Handle:         stub.URLSafeName,
			PageType:       domain.PageTypeArtist,
			ProfilePicture: optional(detail.Image),
			CoverPicture:   optional(detail.CoverImage),
			Website:        optional(detail.Website),
			Instagram:      optional(detail.Instagram),
			Facebook:       optional(detail.Facebook),
			Twitter:        optional(detail.Twitter),
			Bandcamp:       optional(detail.Bandcamp),
			Discogs:        optional(detail.Discogs),
			Soundcloud:     optional(detail.Soundcloud),
		},
	}
	if detail.Biography != nil {
		artist.Bio = optional(detail.Biography.Blurb)
	}

	r.enrichArtist(ctx, artist, detail.Soundcloud)

	r.mu.Lock()
	r.artists[stub.ID] = artist
	r.mu.Unlock()
	return artist, nil
}

// enrichArtist resolves the artist's platform user id and recent tracks.
// Enrichment failures are logged and leave the artist unenriched; they never
// fail the resolution.
func (r *Resolver) enrichArtist(ctx context.Context, artist *domain.Artist, profileURL string) {
	if profileURL == "" {
		return
	}

	userID, err := r.audio.ResolveUserID(ctx, profileURL)
	if err != nil {
		r.log.Warn("Failed to resolve platform user id",
			"artist", artist.Name, "profile_url", profileURL, "error", err)
		return
	}
	if userID == "" {
		return
	}
	artist.SoundcloudUserID = &userID

	tracks, err := r.audio.RecentTracks(ctx, userID)
	if err != nil {
		r.log.Warn("Failed to list recent tracks",
			"artist", artist.Name, "user_id", userID, "error", err)
		return
	}
	artist.LastTracks = tracks
}

// ResolvePromoter returns the fully-detailed promoter for the stub. No audio
// enrichment is performed for promoters.
func (r *Resolver) ResolvePromoter(ctx context.Context, stub *source.PromoterStub) (*domain.Promoter, error) {
	if stub == nil || stub.ID == "" {
		return nil, nil
	}

	resolved, err, _ := r.flights.Do("promoter:"+stub.ID, func() (any, error) {
		return r.resolvePromoter(ctx, stub)
	})
	if err != nil {
		return nil, err
	}
	return resolved.(*domain.Promoter), nil
}

func (r *Resolver) resolvePromoter(ctx context.Context, stub *source.PromoterStub) (*domain.Promoter, error) {
	r.mu.Lock()
	if cached, ok := r.promoters[stub.ID]; ok {
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	detail, err := r.source.PromoterDetail(ctx, stub.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch promoter %s: %w", stub.ID, err)
	}

	name := detail.Name
	if name == "" {
		name = stub.Name
	}
	if name == "" {
		name = fmt.Sprintf("promoter-%s", stub.ID)
	}

	promoter := &domain.Promoter{
		Page: domain.Page{
			ID:             uuid.NewString(),
			ExternalID:     stub.ID,
			Name:           name,
			Handle:         domain.HandleFromName(name),
			PageType:       domain.PageTypePromoter,
			Bio:            optional(detail.Blurb),
			ProfilePicture: optional(detail.LogoURL),
			Website:        optional(detail.Website),
		},
	}

	r.mu.Lock()
	r.promoters[stub.ID] = promoter
	r.mu.Unlock()
	return promoter, nil
}

// optional maps "" to nil so empty API fields persist as NULL.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
