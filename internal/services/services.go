// package services defines interface Catalog for looking up tracks and their audio features
//
// Spotify
package services

import (
	"context"

	"github.com/desertthunder/tunecrawl/internal/models"
)

// Catalog defines the two lookups an extraction run needs from a music metadata provider.
type Catalog interface {
	// ResolveTrack searches for the track matching pair and returns the top-ranked result.
	// Returns an error wrapping [shared.ErrNoMatch] when the search yields nothing.
	ResolveTrack(ctx context.Context, pair models.Pair) (*models.TrackRef, error)

	// AudioFeatures fetches the feature vector for a resolved track.
	// Returns an error wrapping [shared.ErrNoFeatures] when the provider has no data for it.
	AudioFeatures(ctx context.Context, ref models.TrackRef) (*models.Features, error)

	// Name returns the name of the provider (e.g., "Spotify")
	Name() string
}
