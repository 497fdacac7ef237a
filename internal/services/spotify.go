// Spotify API implementation of [Catalog]
package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunecrawl/internal/models"
	"github.com/desertthunder/tunecrawl/internal/shared"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const defaultTimeout = 15 * time.Second

// SpotifyOpts configures a [SpotifyService].
type SpotifyOpts struct {
	ClientID     string
	ClientSecret string
	BaseURL      string // API root, defaults to https://api.spotify.com/v1/
	TokenURL     string // defaults to [spotifyauth.TokenURL]
	Market       string
	RetryMax     int
	Timeout      time.Duration
	Logger       *log.Logger
}

// SpotifyService implements [Catalog] against the Spotify Web API.
type SpotifyService struct {
	client *spotify.Client
	market string
}

// NewSpotifyService creates an authenticated-on-demand Spotify client.
//
// ctx scopes token refreshes for the lifetime of the service.
func NewSpotifyService(ctx context.Context, opts SpotifyOpts) (*SpotifyService, error) {
	if opts.ClientID == "" || opts.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret are required", shared.ErrMissingCredentials)
	}

	tokenURL := opts.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyauth.TokenURL
	}

	config := &clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL:     tokenURL,
	}

	transport := newRetryClient(opts.RetryMax, opts.Timeout, opts.Logger).StandardClient()
	httpClient := config.Client(context.WithValue(ctx, oauth2.HTTPClient, transport))

	var clientOpts []spotify.ClientOption
	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		clientOpts = append(clientOpts, spotify.WithBaseURL(base))
	}

	return &SpotifyService{
		client: spotify.New(httpClient, clientOpts...),
		market: opts.Market,
	}, nil
}

func newRetryClient(retryMax int, timeout time.Duration, logger *log.Logger) *retryablehttp.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = retryMax
	rc.HTTPClient.Timeout = timeout
	rc.Logger = nil
	if logger != nil {
		rc.Logger = leveledLogger{logger.WithPrefix("http")}
	}
	return rc
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// SearchQuery builds the free-text query used to resolve a pair.
func SearchQuery(pair models.Pair) string {
	return fmt.Sprintf("track:%s artist:%s", pair.Track, pair.Singer)
}

// ResolveTrack searches for pair and returns the ID of the top-ranked track.
func (s *SpotifyService) ResolveTrack(ctx context.Context, pair models.Pair) (*models.TrackRef, error) {
	opts := []spotify.RequestOption{spotify.Limit(1)}
	if s.market != "" {
		opts = append(opts, spotify.Market(s.market))
	}

	query := SearchQuery(pair)
	results, err := s.client.Search(ctx, query, spotify.SearchTypeTrack, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: search %q: %w", shared.ErrAPIRequest, query, err)
	}

	if results == nil || results.Tracks == nil || len(results.Tracks.Tracks) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrNoMatch, pair)
	}

	id := results.Tracks.Tracks[0].ID
	if id == "" {
		return nil, fmt.Errorf("%w: %s (empty id)", shared.ErrNoMatch, pair)
	}

	return &models.TrackRef{ID: string(id), Pair: pair}, nil
}

// AudioFeatures fetches the audio features of ref.
func (s *SpotifyService) AudioFeatures(ctx context.Context, ref models.TrackRef) (*models.Features, error) {
	features, err := s.client.GetAudioFeatures(ctx, spotify.ID(ref.ID))
	if err != nil {
		return nil, fmt.Errorf("%w: audio features for %s: %w", shared.ErrAPIRequest, ref.ID, err)
	}

	if len(features) == 0 || features[0] == nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrNoFeatures, ref.ID)
	}

	af := features[0]
	return &models.Features{
		Danceability:     widen(af.Danceability),
		Energy:           widen(af.Energy),
		Loudness:         widen(af.Loudness),
		Speechiness:      widen(af.Speechiness),
		Acousticness:     widen(af.Acousticness),
		Instrumentalness: widen(af.Instrumentalness),
		Liveness:         widen(af.Liveness),
		Valence:          widen(af.Valence),
		Tempo:            widen(af.Tempo),
	}, nil
}

// widen converts a decoded float32 to the float64 with the same shortest decimal form, so 0.6 stays 0.6.
func widen(f float32) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(float64(f), 'g', -1, 32), 64)
	if err != nil {
		return float64(f)
	}
	return v
}

// leveledLogger routes retryablehttp's request logging into a [log.Logger].
type leveledLogger struct {
	l *log.Logger
}

func (ll leveledLogger) Error(msg string, kv ...any) { ll.l.Warn(msg, kv...) }
func (ll leveledLogger) Warn(msg string, kv ...any)  { ll.l.Warn(msg, kv...) }
func (ll leveledLogger) Info(msg string, kv ...any)  { ll.l.Debug(msg, kv...) }
func (ll leveledLogger) Debug(msg string, kv ...any) { ll.l.Debug(msg, kv...) }

var (
	_ Catalog                     = (*SpotifyService)(nil)
	_ retryablehttp.LeveledLogger = leveledLogger{}
)
