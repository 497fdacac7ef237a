package tasks

import (
	"math/rand"

	"github.com/desertthunder/tunecrawl/internal/models"
)

// DefaultSeed is the shuffle seed used when none is configured.
const DefaultSeed int64 = 42

// Dedup returns records with exact duplicate rows removed, keeping the first occurrence of each.
func Dedup(records []models.Record) []models.Record {
	seen := make(map[models.Record]struct{}, len(records))
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// CountDuplicates returns how many rows repeat an earlier row exactly.
func CountDuplicates(records []models.Record) int {
	seen := make(map[models.Record]struct{}, len(records))
	dups := 0
	for _, r := range records {
		if _, ok := seen[r]; ok {
			dups++
			continue
		}
		seen[r] = struct{}{}
	}
	return dups
}

// Shuffle returns a permutation of records determined entirely by seed. The input is not modified.
func Shuffle(records []models.Record, seed int64) []models.Record {
	out := make([]models.Record, len(records))
	copy(out, records)

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
