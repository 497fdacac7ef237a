package main

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunecrawl/internal/formatter"
	"github.com/desertthunder/tunecrawl/internal/models"
	"github.com/desertthunder/tunecrawl/internal/services"
	"github.com/desertthunder/tunecrawl/internal/shared"
	"github.com/desertthunder/tunecrawl/internal/tasks"
	"github.com/desertthunder/tunecrawl/internal/ui"
	"github.com/urfave/cli/v3"
)

// Crawl builds the dataset once and writes it to the configured output path.
func (r *Runner) Crawl(ctx context.Context, cmd *cli.Command) error {
	if err := r.openLog(); err != nil {
		return err
	}

	run, result, err := r.crawl(ctx, cmd.Bool("progress"))
	if run != nil {
		if werr := r.writePlain("%s", ui.RenderSummary(run, result)); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

func (r *Runner) crawl(ctx context.Context, showProgress bool) (*models.Run, *tasks.BuildResult, error) {
	config := r.config
	if err := config.Validate(); err != nil {
		return nil, nil, err
	}

	pairs := config.Pairs()
	run := models.NewRun(shared.GenerateID(), len(pairs), config.Output.Path, config.Dataset.Seed)
	logger := shared.WithLogger(r.logger, "run_id", run.ID)

	repo, err := r.runRepository()
	if err != nil {
		return nil, nil, err
	}
	if repo != nil {
		if err := repo.Create(run); err != nil {
			return nil, nil, err
		}
	}

	result, err := r.build(ctx, logger, pairs, showProgress)
	if result != nil {
		run.Extracted = result.Extracted
		run.Skipped = result.Skipped
	}
	if err == nil {
		err = formatter.WriteDatasetCSV(result.Dataset, config.Output.Path)
	}
	if err == nil {
		run.Rows = result.Dataset.Len()
		run.Singers = result.Dataset.Singers()
		logger.Info("dataset saved", "path", config.Output.Path, "rows", run.Rows)
	}

	run.Finish(err)
	if err != nil {
		logger.Error("crawl failed", "error", err)
	}

	if repo != nil {
		if uerr := repo.Update(run); uerr != nil {
			logger.Warn("failed to update run history", "error", uerr)
		}
	}

	return run, result, err
}

func (r *Runner) build(ctx context.Context, logger *log.Logger, pairs []models.Pair, showProgress bool) (*tasks.BuildResult, error) {
	catalog, err := r.catalogService(ctx, logger)
	if err != nil {
		return nil, err
	}

	builder := tasks.NewDatasetBuilder(tasks.BuilderOpts{
		Catalog: catalog,
		Logger:  logger,
		Seed:    r.config.Dataset.Seed,
		Strict:  r.config.Dataset.Strict,
	})

	if !showProgress {
		return builder.Build(ctx, nil, pairs)
	}

	progress := make(chan tasks.ProgressUpdate, len(pairs)+4)
	done := make(chan struct{})
	var werr error
	go func() {
		defer close(done)
		for update := range progress {
			if werr != nil {
				continue
			}
			werr = r.writePlain("%s\n", ui.RenderProgress(update))
		}
	}()

	result, err := builder.Build(ctx, progress, pairs)
	close(progress)
	<-done
	if werr != nil {
		logger.Warn("progress output stopped", "error", werr)
	}
	return result, err
}

func (r *Runner) catalogService(ctx context.Context, logger *log.Logger) (services.Catalog, error) {
	if r.catalog != nil {
		return r.catalog, nil
	}

	c := r.config.Catalog
	svc, err := services.NewSpotifyService(ctx, services.SpotifyOpts{
		ClientID:     r.config.Credentials.Spotify.ClientID,
		ClientSecret: r.config.Credentials.Spotify.ClientSecret,
		BaseURL:      c.BaseURL,
		TokenURL:     c.TokenURL,
		Market:       c.Market,
		RetryMax:     c.RetryMax,
		Timeout:      c.Timeout(),
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}
	r.catalog = svc
	return svc, nil
}
