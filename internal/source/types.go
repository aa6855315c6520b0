package source

import "encoding/json"

// envelope is the source API's response shape: data plus an optional error
// list. A response can carry both; see Client.Fetch for the policy.
type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []apiError      `json:"errors"`
}

type apiError struct {
	Message string `json:"message"`
}

// Image is one visual asset attached to an event.
type Image struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Alt      string `json:"alt"`
	Type     string `json:"type"`
}

// Area is the geographic grouping a venue or event belongs to.
type Area struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	URLName string `json:"urlName"`
}

// Location carries a venue's coordinates.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// VenueStub is the partial venue reference embedded in listings and event
// detail. Location is only populated on the detail path.
type VenueStub struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ContentURL string    `json:"contentUrl"`
	Area       *Area     `json:"area"`
	Location   *Location `json:"location"`
}

// ArtistStub is the partial artist reference embedded in event detail. A stub
// without URLSafeName cannot be resolved further.
type ArtistStub struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URLSafeName string `json:"urlSafeName"`
}

// PromoterStub is the partial promoter reference embedded in event detail.
type PromoterStub struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EventStub is one row of an event listing. The area listing wraps the event
// in a listing envelope; the venue listing returns the event directly.
type EventStub struct {
	ID          string     `json:"id"`
	ListingDate string     `json:"listingDate"`
	Venue       *VenueStub `json:"venue"`
	Event       *struct {
		ID    string     `json:"id"`
		Venue *VenueStub `json:"venue"`
	} `json:"event"`
}

// EventID returns the event id regardless of which listing shape produced the
// stub.
func (s *EventStub) EventID() string {
	if s.Event != nil && s.Event.ID != "" {
		return s.Event.ID
	}
	return s.ID
}

// VenueRef returns the embedded venue stub regardless of listing shape, or nil
// when the listing carried none.
func (s *EventStub) VenueRef() *VenueStub {
	if s.Event != nil && s.Event.Venue != nil {
		return s.Event.Venue
	}
	return s.Venue
}

// EventDetail is the full event payload.
type EventDetail struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	FlyerFront string  `json:"flyerFront"`
	ContentURL string  `json:"contentUrl"`
	StartTime  string  `json:"startTime"`
	EndTime    string  `json:"endTime"`
	DatePosted string  `json:"datePosted"`
	Images     []Image `json:"images"`

	Venue     *VenueStub     `json:"venue"`
	Artists   []ArtistStub   `json:"artists"`
	Promoters []PromoterStub `json:"promoters"`
}

// VenueDetail is the full venue payload.
type VenueDetail struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	LogoURL  string `json:"logoUrl"`
	Photo    string `json:"photo"`
	Blurb    string `json:"blurb"`
	Address  string `json:"address"`
	Website  string `json:"website"`
	Capacity int    `json:"capacity"`
	IsClosed bool   `json:"isClosed"`
	Area     *Area  `json:"area"`
}

// ArtistBiography is the nested biography block on an artist detail.
type ArtistBiography struct {
	Blurb   string `json:"blurb"`
	Content string `json:"content"`
}

// ArtistDetail is the full artist payload.
type ArtistDetail struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	URLSafeName string           `json:"urlSafeName"`
	Image       string           `json:"image"`
	CoverImage  string           `json:"coverImage"`
	Biography   *ArtistBiography `json:"biography"`

	Facebook   string `json:"facebook"`
	Soundcloud string `json:"soundcloud"`
	Instagram  string `json:"instagram"`
	Twitter    string `json:"twitter"`
	Bandcamp   string `json:"bandcamp"`
	Discogs    string `json:"discogs"`
	Website    string `json:"website"`
}

// PromoterDetail is the full promoter payload.
type PromoterDetail struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Blurb   string `json:"blurb"`
	LogoURL string `json:"logoUrl"`
	Website string `json:"website"`
}

// listingPayload is the shared shape of both listing responses.
type listingPayload struct {
	Data         []EventStub `json:"data"`
	TotalResults int         `json:"totalResults"`
}
