package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunecrawl/internal/models"
	"github.com/desertthunder/tunecrawl/internal/services"
	"github.com/desertthunder/tunecrawl/internal/shared"
)

// Extraction is the outcome of looking up a single pair.
type Extraction struct {
	Pair   models.Pair      // Input pair
	Ref    *models.TrackRef // Resolved catalog reference (nil if not found)
	Record *models.Record   // Extracted row (nil on failure)
	Err    error            // Reason the pair was skipped
}

// OK reports whether the extraction produced a record.
func (e Extraction) OK() bool {
	return e.Err == nil && e.Record != nil
}

// BuildResult contains the dataset and the per-pair accounting of a build.
type BuildResult struct {
	Dataset     *models.Dataset
	Extractions []Extraction
	Extracted   int // Pairs that produced a record
	Skipped     int // Pairs that failed resolution or feature fetch
	Duplicates  int // Rows removed by dedup
}

// Builder turns input pairs into a dataset.
type Builder interface {
	// Build resolves and fetches every pair in order, then dedups and shuffles the accumulated records.
	Build(ctx context.Context, progress chan<- ProgressUpdate, pairs []models.Pair) (*BuildResult, error)
}

// BuilderOpts configures a [DatasetBuilder].
type BuilderOpts struct {
	Catalog services.Catalog
	Logger  *log.Logger
	Seed    int64
	Strict  bool
}

// DatasetBuilder implements Builder against a [services.Catalog].
type DatasetBuilder struct {
	catalog services.Catalog
	logger  *log.Logger
	seed    int64
	strict  bool
}

// NewDatasetBuilder creates a DatasetBuilder. A nil logger discards output.
func NewDatasetBuilder(opts BuilderOpts) *DatasetBuilder {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &DatasetBuilder{
		catalog: opts.Catalog,
		logger:  logger,
		seed:    opts.Seed,
		strict:  opts.Strict,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (b *DatasetBuilder) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Extract resolves one pair and fetches its audio features. It never panics on catalog failures; the
// reason is carried in [Extraction.Err].
func (b *DatasetBuilder) Extract(ctx context.Context, pair models.Pair) Extraction {
	ex := Extraction{Pair: pair}

	if err := pair.Validate(); err != nil {
		ex.Err = fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		return ex
	}

	ref, err := b.catalog.ResolveTrack(ctx, pair)
	if err != nil {
		ex.Err = err
		return ex
	}
	ex.Ref = ref

	features, err := b.catalog.AudioFeatures(ctx, *ref)
	if err != nil {
		ex.Err = err
		return ex
	}

	record := models.NewRecord(pair, *features)
	ex.Record = &record
	return ex
}

// Build runs the extraction pass over pairs and returns the deduplicated, shuffled dataset.
//
// Returns [shared.ErrNoData] when no pair produced a record. In strict mode the first failure that is not
// a missing match or missing features aborts the build.
func (b *DatasetBuilder) Build(ctx context.Context, progress chan<- ProgressUpdate, pairs []models.Pair) (*BuildResult, error) {
	if b.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrInvalidConfig)
	}

	b.logger.Info("extraction started", "pairs", len(pairs), "catalog", b.catalog.Name())

	result := &BuildResult{Extractions: make([]Extraction, 0, len(pairs))}
	records := make([]models.Record, 0, len(pairs))
	total := len(pairs)

	for i, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		ex := b.Extract(ctx, pair)
		result.Extractions = append(result.Extractions, ex)
		b.sendProgress(progress, extractionUpdate(i+1, total, ex))

		if !ex.OK() {
			result.Skipped++
			b.logger.Debug("skipping track", "singer", pair.Singer, "track", pair.Track, "error", ex.Err)

			if b.strict && !isSkippable(ex.Err) {
				return result, fmt.Errorf("extract %s: %w", pair, ex.Err)
			}
			continue
		}

		result.Extracted++
		records = append(records, *ex.Record)
		b.logger.Info("audio features extracted", "singer", pair.Singer, "track", pair.Track)
	}

	if len(records) == 0 {
		return result, shared.ErrNoData
	}

	deduped := Dedup(records)
	result.Duplicates = len(records) - len(deduped)
	b.sendProgress(progress, dedupUpdate(len(records), len(deduped)))

	if n := CountDuplicates(deduped); n != 0 {
		return result, fmt.Errorf("%w: %d rows", shared.ErrDuplicateRows, n)
	}

	shuffled := Shuffle(deduped, b.seed)
	b.sendProgress(progress, shuffleUpdate(b.seed))

	result.Dataset = &models.Dataset{Records: shuffled}
	b.logger.Info("dataset built",
		"tracks", result.Dataset.Len(),
		"distinct_tracks", result.Dataset.DistinctTracks(),
		"singers", result.Dataset.Singers(),
		"skipped", result.Skipped,
		"duplicates", result.Duplicates,
	)
	b.sendProgress(progress, doneUpdate(result.Dataset))

	return result, nil
}

// isSkippable reports whether err means the catalog simply has nothing for the pair.
func isSkippable(err error) bool {
	return errors.Is(err, shared.ErrNoMatch) ||
		errors.Is(err, shared.ErrNoFeatures) ||
		errors.Is(err, shared.ErrInvalidInput)
}

var _ Builder = (*DatasetBuilder)(nil)
