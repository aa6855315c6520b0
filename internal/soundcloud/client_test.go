package soundcloud_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/eventcrawl/internal/logger"
	"github.com/jonesrussell/eventcrawl/internal/soundcloud"
)

// testPlatform fakes the token endpoint and API behind one server.
type testPlatform struct {
	server      *httptest.Server
	tokenCalls  atomic.Int64
	apiHandler  http.HandlerFunc
	accessToken string
}

func newTestPlatform(t *testing.T, apiHandler http.HandlerFunc) *testPlatform {
	t.Helper()

	p := &testPlatform{apiHandler: apiHandler, accessToken: "tok-1"}
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		p.tokenCalls.Add(1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "cid" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token": "` + p.accessToken + `", "expires_in": 3600}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "OAuth "+p.accessToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		p.apiHandler(w, r)
	})

	p.server = httptest.NewServer(mux)
	t.Cleanup(p.server.Close)
	return p
}

func (p *testPlatform) client() *soundcloud.Client {
	return soundcloud.NewClient(soundcloud.Config{
		APIURL:       p.server.URL,
		TokenURL:     p.server.URL + "/oauth/token",
		ClientID:     "cid",
		ClientSecret: "secret",
	}, logger.NewNoOp())
}

func TestResolveUserID(t *testing.T) {
	t.Parallel()

	platform := newTestPlatform(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/resolve", r.URL.Path)
		assert.Equal(t, "https://soundcloud.com/djx", r.URL.Query().Get("url"),
			"www prefix should be stripped before resolving")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 55, "kind": "user"}`))
	})

	userID, err := platform.client().ResolveUserID(context.Background(), "https://www.soundcloud.com/djx")
	require.NoError(t, err)
	assert.Equal(t, "55", userID)
}

func TestResolveUserID_EmptyURL(t *testing.T) {
	t.Parallel()

	platform := newTestPlatform(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no API call expected for an empty profile URL")
	})

	userID, err := platform.client().ResolveUserID(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, userID)
	assert.Zero(t, platform.tokenCalls.Load())
}

func TestRecentTracks(t *testing.T) {
	t.Parallel()

	platform := newTestPlatform(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/55/tracks", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 901, "title": "Warehouse Mix", "stream_url": "https://api.soundcloud.com/tracks/901/stream", "artwork_url": "https://i.sndcdn.com/901.jpg"},
			{"id": 902, "title": "Morning Set", "stream_url": "https://api.soundcloud.com/tracks/902/stream", "artwork_url": null}
		]`))
	})

	mixes, err := platform.client().RecentTracks(context.Background(), "55")
	require.NoError(t, err)
	require.Len(t, mixes, 2)
	assert.Equal(t, "901", mixes[0].TrackID)
	assert.Equal(t, "Warehouse Mix", mixes[0].Title)
	require.NotNil(t, mixes[0].ArtworkURL)
	assert.Nil(t, mixes[1].ArtworkURL)
}

func TestTokenIsCachedAcrossCalls(t *testing.T) {
	t.Parallel()

	platform := newTestPlatform(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 55}`))
	})
	client := platform.client()

	for range 3 {
		_, err := client.ResolveUserID(context.Background(), "https://soundcloud.com/djx")
		require.NoError(t, err)
	}

	assert.Equal(t, int64(1), platform.tokenCalls.Load(), "token should be fetched once and reused")
}

func TestMissingCredentials(t *testing.T) {
	t.Parallel()

	client := soundcloud.NewClient(soundcloud.Config{}, logger.NewNoOp())

	_, err := client.ResolveUserID(context.Background(), "https://soundcloud.com/djx")
	require.ErrorIs(t, err, soundcloud.ErrMissingCredentials)
}
