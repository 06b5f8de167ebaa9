package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies RAVEN_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// TOML [values.overrides] replaces the whole map when present; merge the
	// built-in aliases back underneath so partial tables extend rather than
	// erase them.
	merged := DefaultOverrides()
	for alias, canonical := range cfg.Values.Overrides {
		merged[alias] = canonical
	}
	cfg.Values.Overrides = merged

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known RAVEN_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── League ──
	setStr(&cfg.League.ID, "RAVEN_LEAGUE_ID")
	setStr(&cfg.League.BaseURL, "RAVEN_LEAGUE_BASE_URL")

	// ── Values ──
	setStr(&cfg.Values.SourceURL, "RAVEN_VALUES_SOURCE_URL")
	setDuration(&cfg.Values.RefreshInterval, "RAVEN_VALUES_REFRESH_INTERVAL")
	setFloat64(&cfg.Values.FuzzyCutoff, "RAVEN_VALUES_FUZZY_CUTOFF")

	// ── Week ──
	setTime(&cfg.Week.Week2Start, "RAVEN_WEEK_WEEK2_START")
	setDuration(&cfg.Week.RecomputeInterval, "RAVEN_WEEK_RECOMPUTE_INTERVAL")

	// ── Watcher ──
	setDuration(&cfg.Watcher.PollInterval, "RAVEN_WATCHER_POLL_INTERVAL")
	setFloat64(&cfg.Watcher.FairnessBand, "RAVEN_WATCHER_FAIRNESS_BAND")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "RAVEN_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "RAVEN_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "RAVEN_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "RAVEN_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "RAVEN_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "RAVEN_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "RAVEN_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "RAVEN_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "RAVEN_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "RAVEN_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "RAVEN_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "RAVEN_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "RAVEN_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "RAVEN_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "RAVEN_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "RAVEN_REDIS_TLS_ENABLED")
	setDuration(&cfg.Redis.DirectoryTTL, "RAVEN_REDIS_DIRECTORY_TTL")

	// ── Notify ──
	setStr(&cfg.Notify.DiscordWebhookURL, "RAVEN_NOTIFY_DISCORD_WEBHOOK_URL")
	setStr(&cfg.Notify.TelegramToken, "RAVEN_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "RAVEN_NOTIFY_TELEGRAM_CHAT_ID")
	setStringSlice(&cfg.Notify.Events, "RAVEN_NOTIFY_EVENTS")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "RAVEN_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "RAVEN_SERVER_PORT")

	// ── Top-level ──
	setStr(&cfg.Mode, "RAVEN_MODE")
	setStr(&cfg.LogLevel, "RAVEN_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setTime(dst *rfc3339Time, key string) {
	if v := os.Getenv(key); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			dst.Time = t
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
