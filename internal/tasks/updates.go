package tasks

import (
	"fmt"

	"github.com/desertthunder/tunecrawl/internal/models"
)

// ProgressUpdate represents a progress event during a build.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Build phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Build phase enumeration
type Phase int

const (
	PhaseResolve Phase = iota
	PhaseDedup
	PhaseShuffle
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseResolve:
		return "resolve"
	case PhaseDedup:
		return "dedup"
	case PhaseShuffle:
		return "shuffle"
	case PhaseDone:
		return "done"
	default:
		return ""
	}
}

func extractionUpdate(step, total int, ex Extraction) ProgressUpdate {
	status := "extracted"
	if ex.Err != nil {
		status = "skipped"
	}
	return ProgressUpdate{
		Phase:   PhaseResolve,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("%s %s", status, ex.Pair),
		Data:    ex,
	}
}

func dedupUpdate(before, after int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseDedup,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Removed %d duplicate rows", before-after),
	}
}

func shuffleUpdate(seed int64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseShuffle,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Shuffled rows with seed %d", seed),
	}
}

func doneUpdate(d *models.Dataset) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseDone,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Audio features of %d tracks by %d singers", d.Len(), d.Singers()),
		Data:    d,
	}
}
