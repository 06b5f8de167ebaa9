// Package config defines the top-level configuration for trade-raven and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by RAVEN_* environment variables.
type Config struct {
	League   LeagueConfig   `toml:"league"`
	Values   ValuesConfig   `toml:"values"`
	Week     WeekConfig     `toml:"week"`
	Watcher  WatcherConfig  `toml:"watcher"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	Notify   NotifyConfig   `toml:"notify"`
	Server   ServerConfig   `toml:"server"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// LeagueConfig holds the Sleeper league identity and API endpoint.
type LeagueConfig struct {
	ID      string `toml:"id"`
	BaseURL string `toml:"base_url"`
}

// ValuesConfig holds the bulk value source, its refresh schedule, the fuzzy
// matcher cutoff, and the manual alias-to-canonical override table. The
// override table is loaded once and never mutated at runtime.
type ValuesConfig struct {
	SourceURL       string            `toml:"source_url"`
	RefreshInterval duration          `toml:"refresh_interval"`
	FuzzyCutoff     float64           `toml:"fuzzy_cutoff"`
	Overrides       map[string]string `toml:"overrides"`
}

// WeekConfig holds the season week-2 start and the week recompute schedule.
type WeekConfig struct {
	Week2Start        rfc3339Time `toml:"week2_start"`
	RecomputeInterval duration    `toml:"recompute_interval"`
}

// WatcherConfig holds the trade-polling schedule and the fairness band in
// value units.
type WatcherConfig struct {
	PollInterval duration `toml:"poll_interval"`
	FairnessBand float64  `toml:"fairness_band"`
}

// PostgresConfig holds PostgreSQL connection parameters for the value store.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters for the directory cache.
type RedisConfig struct {
	Addr         string   `toml:"addr"`
	Password     string   `toml:"password"`
	DB           int      `toml:"db"`
	PoolSize     int      `toml:"pool_size"`
	MaxRetries   int      `toml:"max_retries"`
	TLSEnabled   bool     `toml:"tls_enabled"`
	DirectoryTTL duration `toml:"directory_ttl"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	Events            []string `toml:"events"`
}

// ServerConfig holds the control API parameters.
type ServerConfig struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "30s", "24h").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "30s" or "24h".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// rfc3339Time is a wrapper around time.Time that decodes RFC 3339 strings from
// TOML and environment overrides.
type rfc3339Time struct {
	time.Time
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *rfc3339Time) UnmarshalText(text []byte) error {
	parsed, err := time.Parse(time.RFC3339, string(text))
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (t rfc3339Time) MarshalText() ([]byte, error) {
	return []byte(t.Format(time.RFC3339)), nil
}

// DefaultOverrides is the built-in alias table consulted before any matching
// logic. TOML [values.overrides] entries are merged on top of it.
func DefaultOverrides() map[string]string {
	return map[string]string{
		"Ken Walker": "Kenneth Walker III",
		"DJ Moore":   "D.J. Moore",
		"CMC":        "Christian McCaffrey",
		"JJ":         "Justin Jefferson",
		"Bijan":      "Bijan Robinson",
		"Tyreek":     "Tyreek Hill",
	}
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		League: LeagueConfig{
			BaseURL: "https://api.sleeper.app/v1",
		},
		Values: ValuesConfig{
			SourceURL:       "https://raw.githubusercontent.com/dynastyprocess/data/refs/heads/master/files/values-players.csv",
			RefreshInterval: duration{24 * time.Hour},
			FuzzyCutoff:     0.5,
			Overrides:       DefaultOverrides(),
		},
		Week: WeekConfig{
			RecomputeInterval: duration{24 * time.Hour},
		},
		Watcher: WatcherConfig{
			PollInterval: duration{30 * time.Second},
			FairnessBand: 200,
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "traderaven",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:         "localhost:6379",
			DB:           0,
			PoolSize:     10,
			MaxRetries:   3,
			TLSEnabled:   false,
			DirectoryTTL: duration{24 * time.Hour},
		},
		Notify: NotifyConfig{
			Events: []string{"trade_completed", "values_refreshed", "error"},
		},
		Server: ServerConfig{
			Enabled: true,
			Port:    8000,
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"watch": true,
	"serve": true,
	"full":  true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: watch, serve, full)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// League
	if strings.TrimSpace(c.League.ID) == "" {
		errs = append(errs, "league: id must not be empty")
	}
	if c.League.BaseURL == "" {
		errs = append(errs, "league: base_url must not be empty")
	}

	// Values
	if c.Values.SourceURL == "" {
		errs = append(errs, "values: source_url must not be empty")
	}
	if c.Values.RefreshInterval.Duration <= 0 {
		errs = append(errs, "values: refresh_interval must be positive")
	}
	if c.Values.FuzzyCutoff <= 0 || c.Values.FuzzyCutoff > 1 {
		errs = append(errs, fmt.Sprintf("values: fuzzy_cutoff must be in (0, 1], got %g", c.Values.FuzzyCutoff))
	}

	// Week
	needsWeek := c.Mode == "watch" || c.Mode == "full"
	if needsWeek && c.Week.Week2Start.IsZero() {
		errs = append(errs, "week: week2_start must be set for mode "+c.Mode)
	}
	if c.Week.RecomputeInterval.Duration <= 0 {
		errs = append(errs, "week: recompute_interval must be positive")
	}

	// Watcher
	if c.Watcher.PollInterval.Duration <= 0 {
		errs = append(errs, "watcher: poll_interval must be positive")
	}
	if c.Watcher.FairnessBand <= 0 {
		errs = append(errs, "watcher: fairness_band must be > 0")
	}

	// Postgres
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}
	if c.Redis.DirectoryTTL.Duration <= 0 {
		errs = append(errs, "redis: directory_ttl must be positive")
	}

	// Telegram credentials come in pairs.
	tt := c.Notify.TelegramToken != ""
	tc := c.Notify.TelegramChatID != ""
	if tt != tc {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
