package shared

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/tunecrawl/internal/models"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	EnvClientID     = "SPOTIFY_CLIENT_ID"
	EnvClientSecret = "SPOTIFY_CLIENT_SECRET"

	placeholderPrefix = "your_"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Catalog     CatalogConfig     `toml:"catalog"`
	Dataset     DatasetConfig     `toml:"dataset"`
	Output      OutputConfig      `toml:"output"`
	Log         LogConfig         `toml:"log"`
	Database    DatabaseConfig    `toml:"database"`
	Singers     []SingerConfig    `toml:"singers"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API client credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// CatalogConfig tunes the HTTP client used against the catalog.
type CatalogConfig struct {
	BaseURL        string `toml:"base_url"`
	TokenURL       string `toml:"token_url"`
	RetryMax       int    `toml:"retry_max"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Market         string `toml:"market"`
}

// DatasetConfig controls post-processing of extracted records.
type DatasetConfig struct {
	Seed   int64 `toml:"seed"`
	Strict bool  `toml:"strict"`
}

// OutputConfig holds the destination of the CSV dataset.
type OutputConfig struct {
	Path string `toml:"path"`
}

// LogConfig configures the log file. An empty Path logs to the console only.
type LogConfig struct {
	Path       string `toml:"path"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// DatabaseConfig contains run history database settings. An empty Path disables history.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// SingerConfig lists the track titles to look up for one singer.
type SingerConfig struct {
	Name   string   `toml:"name"`
	Tracks []string `toml:"tracks"`
}

// Timeout returns the per-request timeout for catalog calls.
func (c CatalogConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Pairs flattens the configured singers into input pairs, preserving file order.
//
// Blank singer names and blank titles are dropped; duplicates are kept.
func (c *Config) Pairs() []models.Pair {
	var pairs []models.Pair
	for _, s := range c.Singers {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			continue
		}
		for _, title := range s.Tracks {
			title = strings.TrimSpace(title)
			if title == "" {
				continue
			}
			pairs = append(pairs, models.Pair{Singer: name, Track: title})
		}
	}
	return pairs
}

// Validate checks the fields a crawl cannot run without.
func (c *Config) Validate() error {
	id, secret := c.Credentials.Spotify.ClientID, c.Credentials.Spotify.ClientSecret
	if isUnset(id) || isUnset(secret) {
		return fmt.Errorf("%w: spotify client_id and client_secret must be set in config or %s/%s",
			ErrMissingCredentials, EnvClientID, EnvClientSecret)
	}
	if strings.TrimSpace(c.Output.Path) == "" {
		return fmt.Errorf("%w: output.path is empty", ErrInvalidConfig)
	}
	if len(c.Pairs()) == 0 {
		return fmt.Errorf("%w: no singers or tracks configured", ErrInvalidConfig)
	}
	if c.Catalog.RetryMax < 0 {
		return fmt.Errorf("%w: catalog.retry_max must not be negative", ErrInvalidConfig)
	}
	return nil
}

func isUnset(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.HasPrefix(s, placeholderPrefix)
}

// ApplyEnv loads a .env file from envPath when present and lets the Spotify environment variables override
// the file credentials.
func (c *Config) ApplyEnv(envPath string) error {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envPath, err)
		}
	}

	if v := os.Getenv(EnvClientID); v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv(EnvClientSecret); v != "" {
		c.Credentials.Spotify.ClientSecret = v
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values absent from the file keep the defaults of the embedded example config, except singers.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	config.Singers = nil
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig encodes config as TOML and writes it to path.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
