// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

const defaultConfigPath = "config.toml"

// newApp builds the root command. Running it without a subcommand performs a crawl.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tunecrawl",
		Usage:   "Build a Spotify audio-feature dataset for a list of singers and tracks",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   defaultConfigPath,
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a .env file with SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET",
				Value: ".env",
			},
			&cli.BoolFlag{
				Name:    "progress",
				Aliases: []string{"p"},
				Usage:   "Print a line per track while crawling",
			},
		},
		Before:   r.Before,
		After:    r.After,
		Action:   r.Crawl,
		Commands: r.register(),
	}
}

// crawlCommand runs the extraction pass once.
func crawlCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "crawl",
		Usage:  "Fetch audio features for the configured tracks and write the CSV dataset",
		Action: r.Crawl,
	}
}

// initCommand writes the example configuration.
func initCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "init",
		Usage:  "Write an example config.toml",
		Action: r.Init,
	}
}

// historyCommand lists recorded runs.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recorded crawl runs",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "id",
			},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// setupCommand handles database setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Initialize the run history database and run migrations",
		Action: r.SetupDatabase,
	}
}
