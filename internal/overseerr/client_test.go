package overseerr

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overseerr-approval-bot/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewClient(config.OverseerrConfig{
		BaseURL: srv.URL,
		APIKey:  "test-api-key",
		Timeout: 5 * time.Second,
	}, logger)
}

func TestMediaDetails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/movie/101", r.URL.Path)
		assert.Equal(t, "test-api-key", r.Header.Get("X-Api-Key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": 101,
			"title": "Movie X",
			"releaseDate": "2024-03-01",
			"overview": "A movie.",
			"voteAverage": 7.3,
			"externalIds": {"imdbId": "tt0000101", "tmdbId": 101},
			"credits": {
				"cast": [{"name": "Ana Lead", "character": "Hero"}],
				"crew": [{"name": "Dana Director", "job": "Director"}]
			}
		}`))
	})

	details, err := client.MediaDetails(context.Background(), "movie", 101)
	require.NoError(t, err)
	assert.Equal(t, "Movie X", details.DisplayTitle("movie"))
	assert.Equal(t, "2024-03-01", details.Released("movie"))
	assert.Equal(t, "tt0000101", details.ExternalIDs.ImdbID)
	require.Len(t, details.Credits.Cast, 1)
	assert.Equal(t, "Ana Lead", details.Credits.Cast[0].Name)
	require.Len(t, details.Credits.Crew, 1)
	assert.Equal(t, "Director", details.Credits.Crew[0].Job)
}

func TestMediaDetailsRejectsUnknownType(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.MediaDetails(context.Background(), "music", 1)
	assert.Error(t, err)
}

func TestApproveHitsCorrectEndpoint(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "test-api-key", r.Header.Get("X-Api-Key"))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.Approve(context.Background(), 101))
	assert.Equal(t, "/request/101/approve", gotPath)
}

func TestDenyHitsDeclineEndpoint(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.Deny(context.Background(), 202))
	assert.Equal(t, "/request/202/decline", gotPath)
}

func TestActionErrorIncludesStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "request not found", http.StatusNotFound)
	})

	err := client.Approve(context.Background(), 999)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
