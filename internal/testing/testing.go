// package testing contains shared testing utilities
package testing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/tunecrawl/internal/models"
	"github.com/desertthunder/tunecrawl/internal/shared"
)

// MockCatalog is a scripted test double for [services.Catalog].
//
// Pairs missing from Refs resolve to [shared.ErrNoMatch]; IDs missing from Features yield [shared.ErrNoFeatures].
type MockCatalog struct {
	Refs       map[models.Pair]string
	Features   map[string]models.Features
	ResolveErr map[models.Pair]error
	FeatureErr map[string]error

	Resolved []models.Pair
	Fetched  []string
}

func (m *MockCatalog) ResolveTrack(ctx context.Context, pair models.Pair) (*models.TrackRef, error) {
	m.Resolved = append(m.Resolved, pair)
	if err, ok := m.ResolveErr[pair]; ok {
		return nil, err
	}
	id, ok := m.Refs[pair]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrNoMatch, pair)
	}
	return &models.TrackRef{ID: id, Pair: pair}, nil
}

func (m *MockCatalog) AudioFeatures(ctx context.Context, ref models.TrackRef) (*models.Features, error) {
	m.Fetched = append(m.Fetched, ref.ID)
	if err, ok := m.FeatureErr[ref.ID]; ok {
		return nil, err
	}
	f, ok := m.Features[ref.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrNoFeatures, ref.ID)
	}
	return &f, nil
}

func (m *MockCatalog) Name() string { return "mock" }

// FakeSpotify serves the token, search, and audio-features endpoints of the Spotify Web API.
type FakeSpotify struct {
	Server *httptest.Server

	// Tracks maps a search query ("track:<title> artist:<singer>") to a track ID.
	Tracks map[string]string
	// Features maps a track ID to its audio features. Unknown IDs return a null entry.
	Features map[string]models.Features
	// FailQueries lists search queries answered with a 500.
	FailQueries map[string]bool

	mu       sync.Mutex
	Searches []string
	Tokens   int
}

const fakeToken = "fake-access-token"

// NewFakeSpotify starts a FakeSpotify and registers its shutdown with t.
func NewFakeSpotify(t *testing.T) *FakeSpotify {
	t.Helper()

	f := &FakeSpotify{
		Tracks:      map[string]string{},
		Features:    map[string]models.Features{},
		FailQueries: map[string]bool{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", f.handleToken)
	mux.HandleFunc("/v1/search", f.authorized(f.handleSearch))
	mux.HandleFunc("/v1/audio-features", f.authorized(f.handleAudioFeatures))

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

// BaseURL is the API root to pass to the Spotify client.
func (f *FakeSpotify) BaseURL() string { return f.Server.URL + "/v1/" }

// TokenURL is the client credentials token endpoint.
func (f *FakeSpotify) TokenURL() string { return f.Server.URL + "/token" }

// SearchCount returns the number of search requests served.
func (f *FakeSpotify) SearchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Searches)
}

func (f *FakeSpotify) handleToken(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.Tokens++
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": fakeToken,
		"token_type":   "bearer",
		"expires_in":   3600,
	})
}

func (f *FakeSpotify) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+fakeToken {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"error": map[string]any{"status": http.StatusUnauthorized, "message": "invalid access token"},
			})
			return
		}
		next(w, r)
	}
}

func (f *FakeSpotify) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	f.mu.Lock()
	f.Searches = append(f.Searches, query)
	f.mu.Unlock()

	if f.FailQueries[query] {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": map[string]any{"status": http.StatusInternalServerError, "message": "server error"},
		})
		return
	}

	items := []map[string]any{}
	if id, ok := f.Tracks[query]; ok {
		items = append(items, map[string]any{"id": id, "name": query})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tracks": map[string]any{
			"href":   r.URL.String(),
			"items":  items,
			"limit":  1,
			"offset": 0,
			"total":  len(items),
		},
	})
}

func (f *FakeSpotify) handleAudioFeatures(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("ids")

	var entry any
	if feat, ok := f.Features[id]; ok {
		entry = map[string]any{
			"id":               id,
			"danceability":     feat.Danceability,
			"energy":           feat.Energy,
			"loudness":         feat.Loudness,
			"speechiness":      feat.Speechiness,
			"acousticness":     feat.Acousticness,
			"instrumentalness": feat.Instrumentalness,
			"liveness":         feat.Liveness,
			"valence":          feat.Valence,
			"tempo":            feat.Tempo,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"audio_features": []any{entry}})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
