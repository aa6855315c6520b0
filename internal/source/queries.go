package source

import (
	"encoding/json"
	"fmt"
)

// Listing page sizes expected by the source API.
const (
	areaListingPageSize  = 100
	venueListingPageSize = 20
)

// Query is a single request payload for the source graph API.
type Query struct {
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
	Query         string         `json:"query"`
}

// BuildEventListQuery lists events for an area from the given date, sorted by
// listing date ascending then relevance descending.
func BuildEventListQuery(areaID int, date string) Query {
	return Query{
		OperationName: "GET_EVENT_LISTINGS",
		Variables: map[string]any{
			"filters": map[string]any{
				"areas":       map[string]any{"eq": areaID},
				"listingDate": map[string]any{"gte": date},
			},
			"filterOptions": map[string]any{"genre": true, "eventType": true},
			"pageSize":      areaListingPageSize,
			"page":          1,
			"sort": map[string]any{
				"listingDate":  map[string]any{"order": "ASCENDING"},
				"score":        map[string]any{"order": "DESCENDING"},
				"titleKeyword": map[string]any{"order": "ASCENDING"},
			},
			"includeBumps": false,
		},
		Query: `query GET_EVENT_LISTINGS($filters: FilterInputDtoInput, $filterOptions: FilterOptionsInputDtoInput, $page: Int, $pageSize: Int, $sort: SortInputDtoInput, $includeBumps: Boolean!) { eventListings(filters: $filters filterOptions: $filterOptions pageSize: $pageSize page: $page sort: $sort) { data { id listingDate event { ...eventListingsFields } } totalResults } } fragment eventListingsFields on Event { id date startTime endTime title contentUrl flyerFront isTicketed images { id filename alt type } venue { id name contentUrl live area { id name country { id name urlCode } } } promoters { id } artists { id name } }`,
	}
}

// BuildEventDetailQuery fetches the full detail of a single event.
func BuildEventDetailQuery(id string) Query {
	return Query{
		OperationName: "GET_EVENT_DETAIL",
		Variables:     map[string]any{"id": id, "isAuthenticated": false},
		Query:         `query GET_EVENT_DETAIL($id: ID!, $isAuthenticated: Boolean!) { event(id: $id) { id title flyerFront flyerBack content minimumAge cost contentUrl date time startTime endTime lineup isTicketed dateUpdated datePosted images { id filename alt type } venue { id name address contentUrl live area { id name urlName country { id name urlCode isoCode } } location { latitude longitude } } promoters { id name contentUrl live } artists { id name contentUrl urlSafeName } genres { id name slug } area { ianaTimeZone } } }`,
	}
}

// BuildArtistDetailQuery fetches an artist's detail by URL slug.
func BuildArtistDetailQuery(slug string) Query {
	return Query{
		OperationName: "GET_ARTIST_BY_SLUG",
		Variables:     map[string]any{"slug": slug},
		Query:         `query GET_ARTIST_BY_SLUG($slug: String!) { artist(slug: $slug) { id name followerCount firstName lastName aliases coverImage contentUrl facebook soundcloud instagram twitter bandcamp discogs website urlSafeName country { id name urlCode } image biography { id blurb content discography } } }`,
	}
}

// BuildVenueDetailQuery fetches a venue's detail by id.
func BuildVenueDetailQuery(id string) Query {
	return Query{
		OperationName: "GET_VENUE",
		Variables:     map[string]any{"id": id},
		Query:         `query GET_VENUE($id: ID!) { venue(id: $id) { id name logoUrl photo blurb address contentUrl phone website followerCount capacity isClosed area { id name urlName country { id name urlCode isoCode } } } }`,
	}
}

// BuildPromoterDetailQuery fetches a promoter's detail by id.
func BuildPromoterDetailQuery(id string) Query {
	return Query{
		OperationName: "GET_PROMOTER_DETAIL",
		Variables:     map[string]any{"id": id},
		Query:         `query GET_PROMOTER_DETAIL($id: ID!) { promoter(id: $id) { id name contentUrl followerCount website email blurb logoUrl socialMediaLinks { id link platform } area { id name urlName country { id name urlCode } } } }`,
	}
}

// BuildVenueListingQuery lists events for a single venue from the given date,
// sorted by date ascending.
func BuildVenueListingQuery(venueID, startDate string) Query {
	dateRange, _ := json.Marshal(map[string]string{
		"gte": fmt.Sprintf("%sT00:00:00.000Z", startDate),
	})
	filters := []map[string]any{
		{"type": "CLUB", "value": venueID},
		{"type": "DATERANGE", "value": string(dateRange)},
	}

	return Query{
		OperationName: "GET_DEFAULT_EVENTS_LISTING",
		Variables: map[string]any{
			"indices":      []string{"EVENT"},
			"pageSize":     venueListingPageSize,
			"page":         1,
			"aggregations": []string{},
			"filters":      filters,
			"sortOrder":    "ASCENDING",
			"sortField":    "DATE",
			"baseFilters":  filters,
		},
		Query: `query GET_DEFAULT_EVENTS_LISTING($indices: [IndexType!], $aggregations: [ListingAggregationType!], $filters: [FilterInput], $pageSize: Int, $page: Int, $sortField: FilterSortFieldType, $sortOrder: FilterSortOrderType, $baseFilters: [FilterInput]) { listing(indices: $indices aggregations: [] filters: $filters pageSize: $pageSize page: $page sortField: $sortField sortOrder: $sortOrder) { data { ...eventFragment } totalResults } aggregations: listing(indices: $indices aggregations: $aggregations filters: $baseFilters pageSize: 0 sortField: $sortField sortOrder: $sortOrder) { aggregations { type values { value name } } } } fragment eventFragment on Event { id title date startTime contentUrl flyerFront images { id filename alt type } artists { id name } venue { id name contentUrl live area { id name urlName country { id name urlCode } } } }`,
	}
}
