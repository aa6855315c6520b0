package domain

// Page type constants. Every page row carries exactly one of these.
const (
	PageTypeVenue    = "venue"
	PageTypeArtist   = "artist"
	PageTypePromoter = "promoter"
)

// Page is the common persisted shape for venues, artists, and promoters.
// ID is assigned once at first resolution; ExternalID is the source API's
// identifier and is the upsert conflict key.
type Page struct {
	ID         string `db:"id"          json:"id"`
	ExternalID string `db:"external_id" json:"external_id"`
	Name       string `db:"name"        json:"name"`
	Handle     string `db:"handle"      json:"handle"`
	PageType   string `db:"page_type"   json:"page_type"`

	Bio            *string `db:"bio"             json:"bio,omitempty"`
	ProfilePicture *string `db:"profile_picture" json:"profile_picture,omitempty"`
	CoverPicture   *string `db:"cover_picture"   json:"cover_picture,omitempty"`
	HomeCityID     *string `db:"home_city_id"    json:"home_city_id,omitempty"`

	// Social links
	Website   *string `db:"website"   json:"website,omitempty"`
	Instagram *string `db:"instagram" json:"instagram,omitempty"`
	Facebook  *string `db:"facebook"  json:"facebook,omitempty"`
	Twitter   *string `db:"twitter"   json:"twitter,omitempty"`
	Bandcamp  *string `db:"bandcamp"  json:"bandcamp,omitempty"`
	Discogs   *string `db:"discogs"   json:"discogs,omitempty"`

	Soundcloud *string `db:"soundcloud" json:"soundcloud,omitempty"`
}

// Venue is a page with geographic detail and capacity.
type Venue struct {
	Page

	Latitude  *float64 `db:"latitude"  json:"latitude,omitempty"`
	Longitude *float64 `db:"longitude" json:"longitude,omitempty"`
	// Capacity defaults to 0 when the source does not report one.
	Capacity int `db:"capacity" json:"capacity"`

	LastTracks []Mix `json:"last_tracks,omitempty"`
}

// Artist is a page enriched with audio-platform metadata.
type Artist struct {
	Page

	// SoundcloudUserID is the resolved platform user id behind the
	// artist's soundcloud link, when resolution succeeded.
	SoundcloudUserID *string `db:"soundcloud_user_id" json:"soundcloud_user_id,omitempty"`

	LastTracks []Mix `json:"last_tracks,omitempty"`
}

// Promoter is a page with no type-specific detail.
type Promoter struct {
	Page

	LastTracks []Mix `json:"last_tracks,omitempty"`
}
