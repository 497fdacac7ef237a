package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/tunecrawl/internal/models"
	"github.com/desertthunder/tunecrawl/internal/repositories"
	"github.com/desertthunder/tunecrawl/internal/shared"
	tu "github.com/desertthunder/tunecrawl/internal/testing"
)

var (
	hello   = models.Pair{Singer: "Adele", Track: "Hello"}
	perfect = models.Pair{Singer: "Ed Sheeran", Track: "Perfect"}
)

func testConfig(t *testing.T) *shared.Config {
	t.Helper()

	config := shared.DefaultConfig()
	config.Credentials.Spotify.ClientID = "client-id"
	config.Credentials.Spotify.ClientSecret = "client-secret"
	config.Output.Path = filepath.Join(t.TempDir(), "data", "spotify_music.csv")
	config.Log.Path = ""
	config.Database.Path = ""
	config.Singers = []shared.SingerConfig{
		{Name: "Adele", Tracks: []string{"Hello", "Skyfall"}},
		{Name: "Ed Sheeran", Tracks: []string{"Perfect"}},
	}
	return config
}

func testCatalog() *tu.MockCatalog {
	return &tu.MockCatalog{
		Refs: map[models.Pair]string{hello: "id-hello", perfect: "id-perfect"},
		Features: map[string]models.Features{
			"id-hello":   {Danceability: 0.48, Energy: 0.43, Loudness: -6.1, Tempo: 157.9},
			"id-perfect": {Danceability: 0.6, Energy: 0.45, Loudness: -6.3, Tempo: 95},
		},
	}
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func newTestRunner(t *testing.T, opts RunnerOpts) (*Runner, *bytes.Buffer) {
	t.Helper()

	output := &bytes.Buffer{}
	opts.Output = output
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(&bytes.Buffer{})
	}
	return NewRunner(opts), output
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			catalog := &tu.MockCatalog{}

			runner := NewRunner(RunnerOpts{
				Config:  config,
				Catalog: catalog,
				Logger:  logger,
				Output:  output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.catalog != catalog {
				t.Error("expected catalog to be set")
			}
			if runner.ownLogger {
				t.Error("expected injected logger to be kept")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if !runner.ownLogger {
				t.Error("expected runner to own its logger")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			runner, output := newTestRunner(t, RunnerOpts{})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		runner, output := newTestRunner(t, RunnerOpts{})

		if err := runner.writeJSON([]byte(`{"key":"value"}`)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "{\"key\":\"value\"}\n" {
			t.Errorf("unexpected output %q", output.String())
		}

		failing := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
		if err := failing.writeJSON([]byte("{}")); err == nil {
			t.Error("expected error from failing writer")
		}
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := []string{"crawl", "init", "history", "setup"}
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}
		for i, name := range want {
			if commands[i].Name != name {
				t.Errorf("expected command %q at %d, got %q", name, i, commands[i].Name)
			}
		}
	})

	t.Run("loadConfig", func(t *testing.T) {
		t.Setenv(shared.EnvClientID, "")
		t.Setenv(shared.EnvClientSecret, "")

		t.Run("missing file uses defaults", func(t *testing.T) {
			runner, _ := newTestRunner(t, RunnerOpts{})
			dir := t.TempDir()

			config, err := runner.loadConfig(filepath.Join(dir, "missing.toml"), filepath.Join(dir, ".env"))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if config.Output.Path != "spotify_music.csv" {
				t.Errorf("expected default output path, got %s", config.Output.Path)
			}
		})

		t.Run("invalid file", func(t *testing.T) {
			runner, _ := newTestRunner(t, RunnerOpts{})
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte("[output\npath="), 0644); err != nil {
				t.Fatal(err)
			}

			_, err := runner.loadConfig(path, "")
			if !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})

		t.Run("env overrides credentials", func(t *testing.T) {
			runner, _ := newTestRunner(t, RunnerOpts{})
			t.Setenv(shared.EnvClientID, "env-id")

			config, err := runner.loadConfig(filepath.Join(t.TempDir(), "missing.toml"), "")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if config.Credentials.Spotify.ClientID != "env-id" {
				t.Errorf("expected env client id, got %s", config.Credentials.Spotify.ClientID)
			}
		})
	})
}

func TestCrawl(t *testing.T) {
	ctx := context.Background()

	t.Run("writes dataset", func(t *testing.T) {
		config := testConfig(t)
		runner, _ := newTestRunner(t, RunnerOpts{Config: config, Catalog: testCatalog()})

		run, result, err := runner.crawl(ctx, false)
		if err != nil {
			t.Fatalf("crawl failed: %v", err)
		}

		if run.Status != models.RunSucceeded {
			t.Errorf("expected succeeded run, got %s", run.Status)
		}
		if run.Pairs != 3 || run.Extracted != 2 || run.Skipped != 1 || run.Rows != 2 || run.Singers != 2 {
			t.Errorf("unexpected run counters: %+v", run)
		}
		if result.Skipped != 1 {
			t.Errorf("expected 1 skipped track, got %d", result.Skipped)
		}

		content := tu.MustReadFile(t, config.Output.Path)
		lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
		}
		if lines[0] != strings.Join(models.Columns, ",") {
			t.Errorf("unexpected header %q", lines[0])
		}
		if !strings.Contains(content, "Adele,Hello,0.48,0.43,-6.1,") {
			t.Errorf("expected Hello row, got:\n%s", content)
		}
		if strings.Contains(content, "Skyfall") {
			t.Error("expected unresolved track to be absent")
		}
	})

	t.Run("same seed same output", func(t *testing.T) {
		config := testConfig(t)
		runner, _ := newTestRunner(t, RunnerOpts{Config: config, Catalog: testCatalog()})

		if _, _, err := runner.crawl(ctx, false); err != nil {
			t.Fatalf("first crawl failed: %v", err)
		}
		first := tu.MustReadFile(t, config.Output.Path)

		if _, _, err := runner.crawl(ctx, false); err != nil {
			t.Fatalf("second crawl failed: %v", err)
		}
		if second := tu.MustReadFile(t, config.Output.Path); second != first {
			t.Errorf("expected identical output, got:\n%s\nvs\n%s", first, second)
		}
	})

	t.Run("no data", func(t *testing.T) {
		config := testConfig(t)
		runner, _ := newTestRunner(t, RunnerOpts{Config: config, Catalog: &tu.MockCatalog{}})

		run, _, err := runner.crawl(ctx, false)
		if !errors.Is(err, shared.ErrNoData) {
			t.Fatalf("expected ErrNoData, got %v", err)
		}
		if run.Status != models.RunFailed {
			t.Errorf("expected failed run, got %s", run.Status)
		}
		if _, err := os.Stat(config.Output.Path); !os.IsNotExist(err) {
			t.Error("expected no output file")
		}
	})

	t.Run("missing credentials", func(t *testing.T) {
		config := testConfig(t)
		config.Credentials.Spotify.ClientSecret = ""
		runner, _ := newTestRunner(t, RunnerOpts{Config: config, Catalog: testCatalog()})

		run, _, err := runner.crawl(ctx, false)
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Fatalf("expected ErrMissingCredentials, got %v", err)
		}
		if run != nil {
			t.Error("expected no run for invalid config")
		}
	})

	t.Run("write failure", func(t *testing.T) {
		config := testConfig(t)
		config.Output.Path = t.TempDir()
		runner, _ := newTestRunner(t, RunnerOpts{Config: config, Catalog: testCatalog()})

		run, _, err := runner.crawl(ctx, false)
		if err == nil {
			t.Fatal("expected error writing to a directory")
		}
		if run.Status != models.RunFailed || run.Rows != 0 {
			t.Errorf("expected failed run with no rows, got %+v", run)
		}
	})

	t.Run("records history", func(t *testing.T) {
		db := setupTestDB(t)
		config := testConfig(t)
		runner, _ := newTestRunner(t, RunnerOpts{Config: config, Catalog: testCatalog(), DB: db})

		run, _, err := runner.crawl(ctx, false)
		if err != nil {
			t.Fatalf("crawl failed: %v", err)
		}

		stored, err := repositories.NewRunRepository(db).Get(run.ID)
		if err != nil {
			t.Fatalf("expected run to be recorded: %v", err)
		}
		if stored.Status != models.RunSucceeded || stored.Rows != 2 {
			t.Errorf("unexpected stored run: %+v", stored)
		}
	})

	t.Run("progress output", func(t *testing.T) {
		config := testConfig(t)
		runner, output := newTestRunner(t, RunnerOpts{Config: config, Catalog: testCatalog()})

		if _, _, err := runner.crawl(ctx, true); err != nil {
			t.Fatalf("crawl failed: %v", err)
		}
		for _, want := range []string{"[1/3]", "[3/3]", "Skyfall by Adele"} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("expected progress output to contain %q, got:\n%s", want, output.String())
			}
		}
	})

	t.Run("progress write failure keeps dataset", func(t *testing.T) {
		config := testConfig(t)
		logs := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Config:  config,
			Catalog: testCatalog(),
			Logger:  shared.NewLogger(logs),
			Output:  &tu.FWriter{},
		})

		run, _, err := runner.crawl(ctx, true)
		if err != nil {
			t.Fatalf("crawl failed: %v", err)
		}
		if run.Rows != 2 {
			t.Errorf("expected 2 rows, got %d", run.Rows)
		}
		tu.AssertFileExists(t, config.Output.Path)
		if !strings.Contains(logs.String(), "failed to write output") {
			t.Errorf("expected progress write error to be logged, got:\n%s", logs.String())
		}
	})

	t.Run("spotify", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t)
		fake.Tracks["track:Hello artist:Adele"] = "id-hello"
		fake.Tracks["track:Perfect artist:Ed Sheeran"] = "id-perfect"
		fake.Features["id-hello"] = models.Features{Danceability: 0.5, Tempo: 120}

		config := testConfig(t)
		config.Catalog.BaseURL = fake.BaseURL()
		config.Catalog.TokenURL = fake.TokenURL()
		config.Catalog.RetryMax = 0
		runner, _ := newTestRunner(t, RunnerOpts{Config: config})

		run, _, err := runner.crawl(ctx, false)
		if err != nil {
			t.Fatalf("crawl failed: %v", err)
		}
		if run.Rows != 1 || run.Skipped != 2 {
			t.Errorf("expected 1 row and 2 skipped, got %+v", run)
		}
		if fake.SearchCount() != 3 {
			t.Errorf("expected 3 searches, got %d", fake.SearchCount())
		}

		content := tu.MustReadFile(t, config.Output.Path)
		if !strings.Contains(content, "Adele,Hello,0.5,") {
			t.Errorf("expected Hello row, got:\n%s", content)
		}
	})

	t.Run("spotify values written exactly", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t)
		fake.Tracks["track:Song1 artist:ArtistA"] = "id-song1"
		fake.FailQueries["track:Song2 artist:ArtistA"] = true
		fake.Features["id-song1"] = models.Features{
			Danceability: 0.5, Energy: 0.6, Loudness: -5.0, Speechiness: 0.05, Acousticness: 0.1,
			Instrumentalness: 0.0, Liveness: 0.2, Valence: 0.7, Tempo: 120.0,
		}

		config := testConfig(t)
		config.Catalog.BaseURL = fake.BaseURL()
		config.Catalog.TokenURL = fake.TokenURL()
		config.Catalog.RetryMax = 0
		config.Singers = []shared.SingerConfig{{Name: "ArtistA", Tracks: []string{"Song1", "Song2", "Song1"}}}
		runner, _ := newTestRunner(t, RunnerOpts{Config: config})

		run, _, err := runner.crawl(ctx, false)
		if err != nil {
			t.Fatalf("crawl failed: %v", err)
		}
		if run.Rows != 1 || run.Skipped != 1 {
			t.Errorf("expected 1 row and 1 skipped, got %+v", run)
		}

		content := tu.MustReadFile(t, config.Output.Path)
		lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected header and 1 row, got %d lines:\n%s", len(lines), content)
		}
		want := "ArtistA,Song1,0.5,0.6,-5,0.05,0.1,0,0.2,0.7,120"
		if lines[1] != want {
			t.Errorf("expected row %q, got %q", want, lines[1])
		}
	})
}

func TestApp(t *testing.T) {
	t.Setenv(shared.EnvClientID, "")
	t.Setenv(shared.EnvClientSecret, "")

	writeConfig := func(t *testing.T, config *shared.Config) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := shared.SaveConfig(path, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}
		return path
	}

	t.Run("default action crawls", func(t *testing.T) {
		config := testConfig(t)
		path := writeConfig(t, config)
		runner, output := newTestRunner(t, RunnerOpts{Catalog: testCatalog()})

		args := []string{"tunecrawl", "--config", path, "--env-file", filepath.Join(t.TempDir(), ".env")}
		if err := newApp(runner).Run(context.Background(), args); err != nil {
			t.Fatalf("app failed: %v", err)
		}

		tu.AssertFileExists(t, config.Output.Path)
		if !strings.Contains(output.String(), "Dataset written") {
			t.Errorf("expected summary, got:\n%s", output.String())
		}
	})

	t.Run("crawl fails without data", func(t *testing.T) {
		config := testConfig(t)
		path := writeConfig(t, config)
		runner, _ := newTestRunner(t, RunnerOpts{Catalog: &tu.MockCatalog{}})

		err := newApp(runner).Run(context.Background(), []string{"tunecrawl", "crawl", "-c", path})
		if !errors.Is(err, shared.ErrNoData) {
			t.Fatalf("expected ErrNoData, got %v", err)
		}
	})

	t.Run("init", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		runner, output := newTestRunner(t, RunnerOpts{})

		if err := newApp(runner).Run(context.Background(), []string{"tunecrawl", "-c", path, "init"}); err != nil {
			t.Fatalf("init failed: %v", err)
		}
		tu.AssertFileExists(t, path)
		if !strings.Contains(output.String(), path) {
			t.Errorf("expected path in output, got %q", output.String())
		}

		runner, _ = newTestRunner(t, RunnerOpts{})
		if err := newApp(runner).Run(context.Background(), []string{"tunecrawl", "-c", path, "init"}); err == nil {
			t.Error("expected error when config already exists")
		}
	})
}

func TestHistory(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		runner, _ := newTestRunner(t, RunnerOpts{Config: testConfig(t)})

		if err := runner.history("", 10, false); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("negative limit", func(t *testing.T) {
		runner, _ := newTestRunner(t, RunnerOpts{Config: testConfig(t), DB: setupTestDB(t)})

		if err := runner.history("", -1, false); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("lists runs", func(t *testing.T) {
		db := setupTestDB(t)
		config := testConfig(t)
		runner, output := newTestRunner(t, RunnerOpts{Config: config, Catalog: testCatalog(), DB: db})

		if _, _, err := runner.crawl(context.Background(), false); err != nil {
			t.Fatalf("crawl failed: %v", err)
		}
		output.Reset()

		if err := runner.history("", 10, false); err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if !strings.Contains(output.String(), "succeeded") || !strings.Contains(output.String(), "rows=2") {
			t.Errorf("unexpected history output:\n%s", output.String())
		}
	})

	t.Run("json", func(t *testing.T) {
		db := setupTestDB(t)
		runner, output := newTestRunner(t, RunnerOpts{Config: testConfig(t), Catalog: testCatalog(), DB: db})

		run, _, err := runner.crawl(context.Background(), false)
		if err != nil {
			t.Fatalf("crawl failed: %v", err)
		}
		output.Reset()

		if err := runner.history("", 10, true); err != nil {
			t.Fatalf("history failed: %v", err)
		}

		var runs []map[string]any
		if err := json.Unmarshal(output.Bytes(), &runs); err != nil {
			t.Fatalf("invalid JSON output: %v\n%s", err, output.String())
		}
		if len(runs) != 1 || runs[0]["id"] != run.ID {
			t.Errorf("unexpected runs: %v", runs)
		}
	})

	t.Run("single run", func(t *testing.T) {
		db := setupTestDB(t)
		runner, output := newTestRunner(t, RunnerOpts{Config: testConfig(t), Catalog: testCatalog(), DB: db})

		run, _, err := runner.crawl(context.Background(), false)
		if err != nil {
			t.Fatalf("crawl failed: %v", err)
		}
		output.Reset()

		if err := runner.history(run.ID, 0, false); err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if !strings.Contains(output.String(), run.ID) {
			t.Errorf("expected run ID in output, got:\n%s", output.String())
		}

		if err := runner.history("missing", 0, false); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})
}

func TestSetupDatabase(t *testing.T) {
	t.Run("requires path", func(t *testing.T) {
		runner, _ := newTestRunner(t, RunnerOpts{Config: testConfig(t)})

		if err := runner.setupDatabase(); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("creates database", func(t *testing.T) {
		config := testConfig(t)
		config.Database.Path = filepath.Join(t.TempDir(), "history.db")
		runner, output := newTestRunner(t, RunnerOpts{Config: config})
		defer runner.Close()

		if err := runner.setupDatabase(); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		tu.AssertFileExists(t, config.Database.Path)
		if !strings.Contains(output.String(), config.Database.Path) {
			t.Errorf("expected database path in output, got %q", output.String())
		}
	})
}
