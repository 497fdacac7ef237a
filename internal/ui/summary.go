package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/tunecrawl/internal/models"
	"github.com/desertthunder/tunecrawl/internal/tasks"
)

const timeLayout = "2006-01-02 15:04:05"

// RenderSummary describes a finished crawl. result may be nil when the build failed before extraction.
func RenderSummary(run *models.Run, result *tasks.BuildResult) string {
	var b strings.Builder

	if run.Status == models.RunSucceeded {
		b.WriteString(styles.ok.Render("✓ Dataset written"))
	} else {
		b.WriteString(styles.err.Render("✗ Crawl failed"))
	}
	b.WriteString("\n\n")

	field(&b, "Run", fmt.Sprintf("#%d %s", run.Sequence, run.ID))
	field(&b, "Rows", fmt.Sprintf("%d", run.Rows))
	field(&b, "Singers", fmt.Sprintf("%d", run.Singers))
	field(&b, "Extracted", fmt.Sprintf("%d/%d", run.Extracted, run.Pairs))
	if run.Status == models.RunSucceeded {
		field(&b, "Output", run.OutputPath)
	}
	field(&b, "Seed", fmt.Sprintf("%d", run.Seed))
	if d := run.Duration(); d > 0 {
		field(&b, "Took", d.Round(time.Millisecond).String())
	}

	if run.ErrorMessage != "" {
		b.WriteString("\n")
		b.WriteString(styles.err.Render("Error: " + run.ErrorMessage))
		b.WriteString("\n")
	}

	if result != nil && result.Skipped > 0 {
		b.WriteString("\n")
		b.WriteString(styles.warn.Render(fmt.Sprintf("Skipped %d tracks:", result.Skipped)))
		for _, ex := range result.Extractions {
			if !ex.OK() {
				fmt.Fprintf(&b, "\n  • %s - %s", ex.Pair.Singer, ex.Pair.Track)
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderHistory lists runs one per line.
func RenderHistory(runs []*models.Run) string {
	if len(runs) == 0 {
		return styles.help.Render("No runs recorded") + "\n"
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("Run history (%d)", len(runs))))
	b.WriteString("\n")

	for _, r := range runs {
		status := styles.warn.Render(string(r.Status))
		switch r.Status {
		case models.RunSucceeded:
			status = styles.ok.Render(string(r.Status))
		case models.RunFailed:
			status = styles.err.Render(string(r.Status))
		}

		fmt.Fprintf(&b, "#%-4d %s  %-9s rows=%d singers=%d skipped=%d  %s",
			r.Sequence, r.StartedAt.Local().Format(timeLayout), status, r.Rows, r.Singers, r.Skipped, r.OutputPath)
		if r.ErrorMessage != "" {
			b.WriteString("  ")
			b.WriteString(styles.help.Render(r.ErrorMessage))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderProgress formats a progress update as a single line.
func RenderProgress(u tasks.ProgressUpdate) string {
	switch u.Phase {
	case tasks.PhaseResolve:
		return fmt.Sprintf("%s %s", styles.help.Render(fmt.Sprintf("[%d/%d]", u.Step, u.Total)), u.Message)
	case tasks.PhaseDone:
		return styles.ok.Render(u.Message)
	default:
		return styles.help.Render(u.Message)
	}
}

func field(b *strings.Builder, label, value string) {
	b.WriteString(styles.label.Render(label))
	b.WriteString(value)
	b.WriteString("\n")
}
