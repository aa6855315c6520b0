package domain

import "time"

// Event is a single listing resolved against internal entities. VenueID,
// ArtistIDs, and PromoterIDs reference resolver-assigned page IDs; the persist
// layer remaps them to database page IDs before writing link rows.
type Event struct {
	ID         string `db:"id"          json:"id"`
	ExternalID string `db:"external_id" json:"external_id"`
	Name       string `db:"name"        json:"name"`

	Description string  `db:"description" json:"description"`
	Visual      *string `db:"visual"      json:"visual,omitempty"`
	TicketsURL  string  `db:"tickets_url" json:"tickets_url"`

	StartTime time.Time `db:"start_date" json:"start_date"`
	EndTime   time.Time `db:"end_date"   json:"end_date"`
	EventType string    `db:"event_type" json:"event_type"`

	// PostedAt is the creation timestamp reported by the source API.
	PostedAt time.Time `db:"created_at" json:"created_at"`

	VenueID     *string  `json:"venue_id,omitempty"`
	ArtistIDs   []string `json:"artist_ids,omitempty"`
	PromoterIDs []string `json:"promoter_ids,omitempty"`
}

// Mix is a single audio track owned by exactly one page. TrackID is the
// platform's track identifier and the upsert conflict key.
type Mix struct {
	TrackID    string  `db:"track_id"    json:"track_id"`
	Title      string  `db:"name"        json:"name"`
	StreamURL  string  `db:"url"         json:"url"`
	ArtworkURL *string `db:"cover_image" json:"cover_image,omitempty"`
}
