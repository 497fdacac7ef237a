package models

import (
	"fmt"
	"strings"
)

// Columns is the fixed column order of the output dataset.
var Columns = []string{
	"singer",
	"track",
	"danceability",
	"energy",
	"loudness",
	"speechiness",
	"acousticness",
	"instrumentalness",
	"liveness",
	"valence",
	"tempo",
}

// Pair is a single configured lookup.
type Pair struct {
	Singer string
	Track  string
}

// Validate reports whether both fields are non-empty.
func (p Pair) Validate() error {
	if strings.TrimSpace(p.Singer) == "" {
		return fmt.Errorf("singer is required")
	}
	if strings.TrimSpace(p.Track) == "" {
		return fmt.Errorf("track is required")
	}
	return nil
}

func (p Pair) String() string {
	return fmt.Sprintf("%s by %s", p.Track, p.Singer)
}

// TrackRef is the catalog identifier a Pair resolved to.
type TrackRef struct {
	ID   string
	Pair Pair
}

// Features holds the audio descriptors for one track. Ranges are defined by the catalog.
type Features struct {
	Danceability     float64
	Energy           float64
	Loudness         float64
	Speechiness      float64
	Acousticness     float64
	Instrumentalness float64
	Liveness         float64
	Valence          float64
	Tempo            float64
}

// Record is one dataset row.
type Record struct {
	Singer string
	Track  string
	Features
}

// NewRecord combines the originating pair with its features.
func NewRecord(p Pair, f Features) Record {
	return Record{Singer: p.Singer, Track: p.Track, Features: f}
}

// Pair returns the (singer, track) that produced the record.
func (r Record) Pair() Pair {
	return Pair{Singer: r.Singer, Track: r.Track}
}

// Values returns the nine numeric fields in [Columns] order.
func (r Record) Values() []float64 {
	return []float64{
		r.Danceability,
		r.Energy,
		r.Loudness,
		r.Speechiness,
		r.Acousticness,
		r.Instrumentalness,
		r.Liveness,
		r.Valence,
		r.Tempo,
	}
}
