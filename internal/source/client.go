// Package source builds and executes requests against the external events
// graph API.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonesrussell/eventcrawl/internal/logger"
)

const (
	// DefaultBaseURL is the source API's GraphQL endpoint.
	DefaultBaseURL = "https://ra.co/graphql"
	// DefaultSiteURL prefixes relative content URLs returned by the API.
	DefaultSiteURL = "https://ra.co"
	// DefaultTimeout bounds a single API call.
	DefaultTimeout = 30 * time.Second

	maxErrorBodyBytes = 4 * 1024
)

// ErrNoData is returned when the API answers 2xx without a data payload.
// Callers should check with errors.Is().
var ErrNoData = errors.New("no data returned from source API")

// TransportError is a non-2xx response from the source API.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("source API returned status %d: %s", e.StatusCode, e.Body)
}

// Client executes queries against the source graph API. It performs no
// retries; retry policy belongs to the orchestrator.
type Client struct {
	baseURL    string
	siteURL    string
	httpClient *http.Client
	log        logger.Interface
}

// Option is a function that configures a Client.
type Option func(*Client)

// WithBaseURL sets the GraphQL endpoint URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithSiteURL sets the base URL used to absolutize content URLs.
func WithSiteURL(siteURL string) Option {
	return func(c *Client) {
		c.siteURL = siteURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new source API client.
func NewClient(log logger.Interface, opts ...Option) *Client {
	client := &Client{
		baseURL:    DefaultBaseURL,
		siteURL:    DefaultSiteURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        log,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// SiteURL returns the base URL for absolutizing content URLs.
func (c *Client) SiteURL() string {
	return c.siteURL
}

// Fetch posts the query and unwraps the response envelope. A 2xx response
// with errors but present data is treated as partial success: the errors are
// logged and the data returned. A 2xx response without data yields ErrNoData.
func (c *Client) Fetch(ctx context.Context, query Query) (json.RawMessage, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute %s: %w", query.OperationName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: string(errBody)}
	}

	var env envelope
	if decodeErr := json.NewDecoder(resp.Body).Decode(&env); decodeErr != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", query.OperationName, decodeErr)
	}

	if len(env.Errors) > 0 {
		for _, apiErr := range env.Errors {
			c.log.Warn("Source API reported query error",
				"operation", query.OperationName,
				"message", apiErr.Message,
			)
		}
	}

	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil, fmt.Errorf("%s: %w", query.OperationName, ErrNoData)
	}

	return env.Data, nil
}

// fetchInto runs the query and unmarshals the data payload into out.
func (c *Client) fetchInto(ctx context.Context, query Query, out any) error {
	data, err := c.Fetch(ctx, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s data: %w", query.OperationName, err)
	}
	return nil
}

// EventListings returns the event stubs for an area from the given date.
func (c *Client) EventListings(ctx context.Context, areaID int, date string) ([]EventStub, error) {
	var payload struct {
		EventListings listingPayload `json:"eventListings"`
	}
	if err := c.fetchInto(ctx, BuildEventListQuery(areaID, date), &payload); err != nil {
		return nil, err
	}
	return payload.EventListings.Data, nil
}

// VenueListings returns the event stubs for a single venue from the given
// date.
func (c *Client) VenueListings(ctx context.Context, venueID, startDate string) ([]EventStub, error) {
	var payload struct {
		Listing listingPayload `json:"listing"`
	}
	if err := c.fetchInto(ctx, BuildVenueListingQuery(venueID, startDate), &payload); err != nil {
		return nil, err
	}
	return payload.Listing.Data, nil
}

// EventDetail returns the full detail of one event, or ErrNoData when the
// payload is absent.
func (c *Client) EventDetail(ctx context.Context, id string) (*EventDetail, error) {
	var payload struct {
		Event *EventDetail `json:"event"`
	}
	if err := c.fetchInto(ctx, BuildEventDetailQuery(id), &payload); err != nil {
		return nil, err
	}
	if payload.Event == nil {
		return nil, fmt.Errorf("event %s: %w", id, ErrNoData)
	}
	return payload.Event, nil
}

// VenueDetail returns the full detail of one venue.
func (c *Client) VenueDetail(ctx context.Context, id string) (*VenueDetail, error) {
	var payload struct {
		Venue *VenueDetail `json:"venue"`
	}
	if err := c.fetchInto(ctx, BuildVenueDetailQuery(id), &payload); err != nil {
		return nil, err
	}
	if payload.Venue == nil {
		return nil, fmt.Errorf("venue %s: %w", id, ErrNoData)
	}
	return payload.Venue, nil
}

// ArtistDetail returns the full detail of one artist by slug.
func (c *Client) ArtistDetail(ctx context.Context, slug string) (*ArtistDetail, error) {
	var payload struct {
		Artist *ArtistDetail `json:"artist"`
	}
	if err := c.fetchInto(ctx, BuildArtistDetailQuery(slug), &payload); err != nil {
		return nil, err
	}
	if payload.Artist == nil {
		return nil, fmt.Errorf("artist %s: %w", slug, ErrNoData)
	}
	return payload.Artist, nil
}

// PromoterDetail returns the full detail of one promoter.
func (c *Client) PromoterDetail(ctx context.Context, id string) (*PromoterDetail, error) {
	var payload struct {
		Promoter *PromoterDetail `json:"promoter"`
	}
	if err := c.fetchInto(ctx, BuildPromoterDetailQuery(id), &payload); err != nil {
		return nil, err
	}
	if payload.Promoter == nil {
		return nil, fmt.Errorf("promoter %s: %w", id, ErrNoData)
	}
	return payload.Promoter, nil
}
