package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tunecrawl/internal/formatter"
	"github.com/desertthunder/tunecrawl/internal/models"
	"github.com/desertthunder/tunecrawl/internal/shared"
	"github.com/desertthunder/tunecrawl/internal/ui"
	"github.com/urfave/cli/v3"
)

// History lists recorded runs, or shows one run when an ID is given.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	return r.history(cmd.StringArg("id"), cmd.Int("limit"), cmd.Bool("json"))
}

func (r *Runner) history(id string, limit int, useJSON bool) error {
	if limit < 0 {
		return fmt.Errorf("%w: --limit must not be negative", shared.ErrInvalidArgument)
	}

	repo, err := r.runRepository()
	if err != nil {
		return err
	}
	if repo == nil {
		return fmt.Errorf("%w: database.path is empty, run history is disabled", shared.ErrInvalidConfig)
	}

	var runs []*models.Run
	if id != "" {
		run, err := repo.Get(id)
		if err != nil {
			return err
		}
		if !useJSON {
			return r.writePlain("%s", ui.RenderSummary(run, nil))
		}
		runs = []*models.Run{run}
	} else if runs, err = repo.List(limit); err != nil {
		return err
	}

	if useJSON {
		data, err := formatter.RunsToJSON(runs)
		if err != nil {
			return err
		}
		return r.writeJSON(data)
	}

	return r.writePlain("%s", ui.RenderHistory(runs))
}
