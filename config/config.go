// ABOUTME: Application configuration for quotedesk
// ABOUTME: JSON file under XDG data home, then .env, then QUOTEDESK_* environment overrides
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Local store backends.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendCharm  = "charm"
)

// Remote backends.
const (
	RemoteScript = "script"
	RemoteSheets = "sheets"
)

const fileName = "config.json"

// Config holds every tunable. Zero durations fall back to the defaults.
type Config struct {
	Backend   string `json:"backend" env:"QUOTEDESK_BACKEND"`
	DBPath    string `json:"db_path" env:"QUOTEDESK_DB_PATH"`
	BadgerDir string `json:"badger_dir" env:"QUOTEDESK_BADGER_DIR"`
	RedisURL  string `json:"redis_url" env:"QUOTEDESK_REDIS_URL"`

	Remote        string `json:"remote" env:"QUOTEDESK_REMOTE"`
	ScriptURL     string `json:"script_url" env:"QUOTEDESK_SCRIPT_URL"`
	SpreadsheetID string `json:"spreadsheet_id" env:"QUOTEDESK_SPREADSHEET_ID"`
	SheetName     string `json:"sheet_name" env:"QUOTEDESK_SHEET_NAME"`

	PushTimeout   time.Duration `json:"push_timeout" env:"QUOTEDESK_PUSH_TIMEOUT"`
	PullTimeout   time.Duration `json:"pull_timeout" env:"QUOTEDESK_PULL_TIMEOUT"`
	BulkPushDelay time.Duration `json:"bulk_push_delay" env:"QUOTEDESK_BULK_PUSH_DELAY"`
	AutoPush      bool          `json:"auto_push" env:"QUOTEDESK_AUTO_PUSH"`

	LogLevel  string `json:"log_level" env:"QUOTEDESK_LOG_LEVEL"`
	SentryDSN string `json:"sentry_dsn,omitempty" env:"QUOTEDESK_SENTRY_DSN"`
	HTTPAddr  string `json:"http_addr" env:"QUOTEDESK_HTTP_ADDR"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	dir := DataDir()
	return &Config{
		Backend:       BackendSQLite,
		DBPath:        filepath.Join(dir, "quotedesk.db"),
		BadgerDir:     filepath.Join(dir, "badger"),
		Remote:        RemoteScript,
		PushTimeout:   10 * time.Second,
		PullTimeout:   30 * time.Second,
		BulkPushDelay: 500 * time.Millisecond,
		LogLevel:      "info",
		HTTPAddr:      ":8080",
	}
}

// DataDir is quotedesk's XDG data directory.
func DataDir() string {
	return filepath.Join(xdg.DataHome, "quotedesk")
}

// Path returns the location of the config file.
func Path() string {
	return filepath.Join(DataDir(), fileName)
}

// Load reads the config file at Path, then applies .env and environment
// overrides.
func Load() (*Config, error) {
	return LoadFrom(Path(), ".env")
}

// LoadFrom reads path (missing is fine) and envFile (missing is fine), then
// applies QUOTEDESK_* variables on top.
func LoadFrom(path, envFile string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.applyDefaults()
	return cfg, cfg.Validate()
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Backend == "" {
		c.Backend = def.Backend
	}
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	}
	if c.BadgerDir == "" {
		c.BadgerDir = def.BadgerDir
	}
	if c.Remote == "" {
		c.Remote = def.Remote
	}
	if c.PushTimeout <= 0 {
		c.PushTimeout = def.PushTimeout
	}
	if c.PullTimeout <= 0 {
		c.PullTimeout = def.PullTimeout
	}
	if c.BulkPushDelay <= 0 {
		c.BulkPushDelay = def.BulkPushDelay
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = def.HTTPAddr
	}
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendBadger, BackendCharm:
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("backend %q requires redis_url", c.Backend)
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	switch c.Remote {
	case RemoteScript, RemoteSheets:
	default:
		return fmt.Errorf("unknown remote %q", c.Remote)
	}
	return nil
}

// RemoteConfigured reports whether the selected remote has its endpoint set.
func (c *Config) RemoteConfigured() bool {
	if c.Remote == RemoteSheets {
		return c.SpreadsheetID != ""
	}
	return c.ScriptURL != ""
}

// Save writes the config to Path with owner-only permissions.
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

// SaveTo writes the config to path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
