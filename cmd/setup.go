package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tunecrawl/internal/shared"
	"github.com/urfave/cli/v3"
)

// Init writes the example configuration to the --config path.
func (r *Runner) Init(ctx context.Context, cmd *cli.Command) error {
	return r.initConfig(cmd.String("config"))
}

func (r *Runner) initConfig(path string) error {
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)
	return r.writePlain("✓ Wrote %s\nAdd your Spotify credentials and singers, then run 'tunecrawl'.\n", path)
}

// SetupDatabase initializes the run history database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	return r.setupDatabase()
}

func (r *Runner) setupDatabase() error {
	path := r.config.Database.Path
	if path == "" {
		return fmt.Errorf("%w: database.path is empty", shared.ErrInvalidConfig)
	}

	r.logger.Info("initializing database", "path", path)

	if _, err := r.runRepository(); err != nil {
		return err
	}

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(r.db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", path)
	return r.writePlain("✓ Run history database ready at %s\n", path)
}
