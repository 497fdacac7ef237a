package models

import (
	"fmt"
	"time"
)

// RunStatus is the outcome of a crawl.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Run summarizes one crawl for the run history database.
type Run struct {
	ID           string
	Sequence     int
	Status       RunStatus
	Pairs        int
	Extracted    int
	Skipped      int
	Rows         int
	Singers      int
	OutputPath   string
	Seed         int64
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// NewRun creates a running Run for the given number of input pairs.
func NewRun(id string, pairs int, outputPath string, seed int64) *Run {
	return &Run{
		ID:         id,
		Status:     RunRunning,
		Pairs:      pairs,
		OutputPath: outputPath,
		Seed:       seed,
		StartedAt:  time.Now().UTC(),
	}
}

// Finish marks the run complete. A nil err means success.
func (r *Run) Finish(err error) {
	now := time.Now().UTC()
	r.FinishedAt = &now
	if err != nil {
		r.Status = RunFailed
		r.ErrorMessage = err.Error()
		return
	}
	r.Status = RunSucceeded
	r.ErrorMessage = ""
}

// Duration returns the elapsed time, or zero while running.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Validate checks that the run can be persisted.
func (r *Run) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("run id is required")
	}
	switch r.Status {
	case RunRunning, RunSucceeded, RunFailed:
	default:
		return fmt.Errorf("invalid run status %q", r.Status)
	}
	if r.Pairs < 0 || r.Extracted < 0 || r.Skipped < 0 || r.Rows < 0 {
		return fmt.Errorf("run counters must not be negative")
	}
	return nil
}
