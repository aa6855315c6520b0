package domain

import "time"

// CrawlStatus tracks the crawl schedule for one venue. Rows are created when a
// venue is first discovered and mutated after every crawl attempt.
type CrawlStatus struct {
	VenueID       string     `db:"venue_id"        json:"venue_id"`
	IsActive      bool       `db:"is_active"       json:"is_active"`
	LastCrawledAt *time.Time `db:"last_crawled_at" json:"last_crawled_at,omitempty"`
	NextCrawlAt   time.Time  `db:"next_crawl_at"   json:"next_crawl_at"`
}

// CrawlTarget identifies the venue selected for the current invocation.
type CrawlTarget struct {
	VenueID    string `db:"venue_id"    json:"venue_id"`
	ExternalID string `db:"external_id" json:"external_id"`
	Name       string `db:"name"        json:"name"`
}

// City is a row from the cities table. AreaID is the source API's area
// identifier used by the area-scan and venue-sync paths.
type City struct {
	ID       string `db:"id"        json:"id"`
	Name     string `db:"name"      json:"name"`
	AreaID   int    `db:"area_id"   json:"area_id"`
	IsActive bool   `db:"is_active" json:"is_active"`
}
