package domain

// Batch is one invocation's resolved entities, ready for persistence. Events
// reference venues, artists, and promoters by their resolver-assigned IDs.
type Batch struct {
	Venues    []*Venue    `json:"venues"`
	Artists   []*Artist   `json:"artists"`
	Promoters []*Promoter `json:"promoters"`
	Events    []*Event    `json:"events"`
}

// UpsertCounts tallies row-level outcomes for one entity type.
type UpsertCounts struct {
	Attempted int `json:"attempted"`
	Upserted  int `json:"upserted"`
	Errored   int `json:"errored"`
}

// PersistReport summarizes one persistence pass over a batch.
type PersistReport struct {
	Pages     UpsertCounts `json:"pages"`
	Venues    UpsertCounts `json:"venues"`
	Artists   UpsertCounts `json:"artists"`
	Promoters UpsertCounts `json:"promoters"`
	Events    UpsertCounts `json:"events"`
	Mixes     UpsertCounts `json:"mixes"`

	// NewLinks counts link rows created for true-insert events.
	NewLinks int `json:"new_links"`
	// LinkErrors counts link rows that failed to write.
	LinkErrors int `json:"link_errors"`
}

// Errored reports whether any row-level failure was recorded.
func (r *PersistReport) Errored() bool {
	return r.Pages.Errored+r.Venues.Errored+r.Artists.Errored+
		r.Promoters.Errored+r.Events.Errored+r.Mixes.Errored+r.LinkErrors > 0
}

// Summary is the structured result returned to trigger-interface callers.
type Summary struct {
	Message         string         `json:"message"`
	Venue           *CrawlTarget   `json:"venue,omitempty"`
	AreaID          int            `json:"area_id,omitempty"`
	EventsProcessed int            `json:"events_processed"`
	EventsSkipped   int            `json:"events_skipped"`
	Report          *PersistReport `json:"report,omitempty"`
}

// SyncSummary is the result of a venue synchronization pass.
type SyncSummary struct {
	CitiesProcessed   int `json:"cities_processed"`
	VenuesDiscovered  int `json:"venues_discovered"`
	NewVenues         int `json:"new_venues"`
	VenuesActivated   int `json:"venues_activated"`
	VenuesDeactivated int `json:"venues_deactivated"`
	Errors            int `json:"errors"`
}
