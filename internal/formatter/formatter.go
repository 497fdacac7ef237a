// package formatter encodes datasets and run history to their output formats (CSV, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/desertthunder/tunecrawl/internal/models"
)

// FormatFloat renders v with the shortest representation that round-trips.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteCSV encodes the dataset to w with a header row of [models.Columns] and no index column.
func WriteCSV(w io.Writer, dataset *models.Dataset) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(models.Columns); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}

	if dataset != nil {
		for _, r := range dataset.Records {
			row := make([]string, 0, len(models.Columns))
			row = append(row, r.Singer, r.Track)
			for _, v := range r.Values() {
				row = append(row, FormatFloat(v))
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}
	return nil
}

// ExportToCSV converts a Dataset to CSV bytes.
func ExportToCSV(dataset *models.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, dataset); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDatasetCSV writes the dataset to path, creating parent directories and replacing any existing file.
func WriteDatasetCSV(dataset *models.Dataset, path string) error {
	if path == "" {
		return fmt.Errorf("output path is empty")
	}

	data, err := ExportToCSV(dataset)
	if err != nil {
		return fmt.Errorf("failed to generate CSV: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	return nil
}

type runJSON struct {
	ID           string     `json:"id"`
	Status       string     `json:"status"`
	Pairs        int        `json:"pairs"`
	Extracted    int        `json:"extracted"`
	Skipped      int        `json:"skipped"`
	Rows         int        `json:"rows"`
	Singers      int        `json:"singers"`
	OutputPath   string     `json:"output_path"`
	Seed         int64      `json:"seed"`
	ErrorMessage string     `json:"error,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// RunsToJSON renders run history as an indented JSON array.
func RunsToJSON(runs []*models.Run) ([]byte, error) {
	out := make([]runJSON, 0, len(runs))
	for _, r := range runs {
		out = append(out, runJSON{
			ID:           r.ID,
			Status:       string(r.Status),
			Pairs:        r.Pairs,
			Extracted:    r.Extracted,
			Skipped:      r.Skipped,
			Rows:         r.Rows,
			Singers:      r.Singers,
			OutputPath:   r.OutputPath,
			Seed:         r.Seed,
			ErrorMessage: r.ErrorMessage,
			StartedAt:    r.StartedAt,
			FinishedAt:   r.FinishedAt,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal runs: %w", err)
	}
	return data, nil
}
