package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunecrawl/internal/repositories"
	"github.com/desertthunder/tunecrawl/internal/services"
	"github.com/desertthunder/tunecrawl/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config        *shared.Config
	catalog       services.Catalog
	db            *sql.DB
	logger        *log.Logger
	output        io.Writer
	ownLogger     bool
	closers       []io.Closer
	logConfigured bool
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A nil Config is loaded from the --config flag. A nil Catalog is built from the config credentials.
// A nil DB opens database.path on demand.
type RunnerOpts struct {
	Config  *shared.Config
	Catalog services.Catalog
	DB      *sql.DB
	Logger  *log.Logger
	Output  io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	ownLogger := opts.Logger == nil
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:    opts.Config,
		catalog:   opts.Catalog,
		db:        opts.DB,
		logger:    opts.Logger,
		output:    opts.Output,
		ownLogger: ownLogger,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		crawlCommand, initCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration once for every command.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if r.config != nil {
		return ctx, nil
	}

	config, err := r.loadConfig(cmd.String("config"), cmd.String("env-file"))
	if err != nil {
		return ctx, err
	}
	r.config = config
	return ctx, nil
}

// After releases the log file and database handles opened by commands.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	return r.Close()
}

// Close releases resources opened by the runner. Injected dependencies are left open.
func (r *Runner) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// loadConfig reads path, falling back to the built-in defaults when it does not exist, then applies the
// environment credentials.
func (r *Runner) loadConfig(path, envPath string) (*shared.Config, error) {
	config := shared.DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if config, err = shared.LoadConfig(path); err != nil {
			return nil, err
		}
	} else if errors.Is(err, fs.ErrNotExist) {
		r.logger.Debug("config file not found, using defaults", "path", path)
	} else {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	if err := config.ApplyEnv(envPath); err != nil {
		return nil, err
	}
	return config, nil
}

// openLog switches the runner to the configured log level and log file. Injected loggers are kept.
func (r *Runner) openLog() error {
	if r.logConfigured {
		return nil
	}
	r.logConfigured = true

	if !r.ownLogger {
		return nil
	}

	logger, closer, err := shared.NewFileLogger(os.Stderr, r.config.Log)
	if err != nil {
		return err
	}
	r.logger = logger
	r.closers = append(r.closers, closer)
	return nil
}

// runRepository returns the run history repository, or nil when history is disabled.
func (r *Runner) runRepository() (*repositories.RunRepository, error) {
	if r.db == nil {
		db, err := shared.OpenHistory(r.config.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to open run history: %w", err)
		}
		if db == nil {
			return nil, nil
		}
		r.db = db
		r.closers = append(r.closers, db)
	}
	return repositories.NewRunRepository(r.db), nil
}

func (r *Runner) writeJSON(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
