// Package soundcloud resolves artist profile URLs to platform user IDs and
// lists their recent tracks.
package soundcloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/jonesrussell/eventcrawl/internal/domain"
	"github.com/jonesrussell/eventcrawl/internal/logger"
)

const (
	// DefaultAPIURL is the platform's REST API base URL.
	DefaultAPIURL = "https://api.soundcloud.com"
	// DefaultTokenURL issues client-credentials access tokens.
	DefaultTokenURL = "https://secure.soundcloud.com/oauth/token"
	// DefaultTimeout bounds a single API call.
	DefaultTimeout = 15 * time.Second
	// DefaultTrackLimit caps the number of recent tracks fetched per user.
	DefaultTrackLimit = 10

	maxErrorBodyBytes = 2 * 1024
)

// ErrMissingCredentials is returned when the client is configured without a
// client id or secret.
var ErrMissingCredentials = errors.New("missing platform client credentials")

var wwwPrefix = regexp.MustCompile(`^(https?://)www\.`)

// Config holds the client credentials and endpoints.
type Config struct {
	APIURL       string `yaml:"api_url"`
	TokenURL     string `yaml:"token_url"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// Client talks to the audio platform. Access tokens come from an oauth2
// client-credentials TokenSource, which caches each token until it expires.
type Client struct {
	cfg        Config
	httpClient *http.Client
	tokens     oauth2.TokenSource
	log        logger.Interface
}

// NewClient creates a new platform client. Empty endpoint fields fall back to
// the production defaults.
func NewClient(cfg Config, log logger.Interface) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}

	httpClient := &http.Client{Timeout: DefaultTimeout}
	client := &Client{
		cfg:        cfg,
		httpClient: httpClient,
		log:        log,
	}

	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		grant := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		client.tokens = grant.TokenSource(tokenCtx)
	}

	return client
}

// token returns a valid access token, fetching a fresh one only when the
// cached token has expired.
func (c *Client) token() (string, error) {
	if c.tokens == nil {
		return "", ErrMissingCredentials
	}
	token, err := c.tokens.Token()
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

// ResolveUserID resolves a profile URL to the platform's user id. An empty
// profile URL resolves to "" without a network call.
func (c *Client) ResolveUserID(ctx context.Context, profileURL string) (string, error) {
	if profileURL == "" {
		return "", nil
	}

	token, err := c.token()
	if err != nil {
		return "", fmt.Errorf("failed to obtain access token: %w", err)
	}

	// The resolver rejects www-prefixed URLs.
	stripped := wwwPrefix.ReplaceAllString(profileURL, "$1")
	resolveURL := fmt.Sprintf("%s/resolve?%s", c.cfg.APIURL,
		url.Values{"url": {stripped}}.Encode())

	var resolved struct {
		ID json.Number `json:"id"`
	}
	if err := c.getJSON(ctx, resolveURL, token, &resolved); err != nil {
		return "", fmt.Errorf("failed to resolve profile URL %q: %w", stripped, err)
	}
	if resolved.ID.String() == "" {
		return "", fmt.Errorf("profile URL %q resolved without a user id", stripped)
	}

	return resolved.ID.String(), nil
}

// RecentTracks lists the user's most recent tracks, newest first, capped at
// DefaultTrackLimit.
func (c *Client) RecentTracks(ctx context.Context, userID string) ([]domain.Mix, error) {
	if userID == "" {
		return nil, nil
	}

	token, err := c.token()
	if err != nil {
		return nil, fmt.Errorf("failed to obtain access token: %w", err)
	}

	tracksURL := fmt.Sprintf("%s/users/%s/tracks?limit=%d", c.cfg.APIURL, userID, DefaultTrackLimit)

	var tracks []struct {
		ID         json.Number `json:"id"`
		Title      string      `json:"title"`
		StreamURL  string      `json:"stream_url"`
		ArtworkURL *string     `json:"artwork_url"`
	}
	if err := c.getJSON(ctx, tracksURL, token, &tracks); err != nil {
		return nil, fmt.Errorf("failed to list tracks for user %s: %w", userID, err)
	}

	mixes := make([]domain.Mix, 0, len(tracks))
	for _, track := range tracks {
		mixes = append(mixes, domain.Mix{
			TrackID:    track.ID.String(),
			Title:      track.Title,
			StreamURL:  track.StreamURL,
			ArtworkURL: track.ArtworkURL,
		})
	}

	return mixes, nil
}

// getJSON performs an authorized GET and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, rawURL, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "OAuth "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("platform API returned status %d: %s",
			resp.StatusCode, strconv.Quote(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
