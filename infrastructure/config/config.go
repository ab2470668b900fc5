// Package config reads process settings from the environment, after loading
// optional .env files.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type Config struct {
	Addr            string        `env:"APP_ADDR" envDefault:":8080"`
	SQLitePath      string        `env:"SQLITE_PATH" envDefault:"wmsadmin.db"`
	MigrationsDir   string        `env:"MIGRATIONS_DIR" envDefault:"infrastructure/sqlite/migrations"`
	Backend         string        `env:"BACKEND" envDefault:"sqlite"`
	PostgresDSN     string        `env:"POSTGRES_DSN"`
	RedisURL        string        `env:"REDIS_URL"`
	PollInterval    time.Duration `env:"POLL_INTERVAL" envDefault:"5m"`
	ImportDropDir   string        `env:"IMPORT_DROP_DIR"`
	ImportBatchSize int           `env:"IMPORT_BATCH_SIZE" envDefault:"100"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	MetricsEnabled  bool          `env:"METRICS_ENABLED" envDefault:"true"`
	SecureCookies   bool          `env:"SECURE_COOKIES" envDefault:"false"`
}

// LoadEnvFiles loads whichever of files exist. Variables already set in the
// process environment win.
func LoadEnvFiles(files ...string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if st, err := os.Stat(f); err == nil && !st.IsDir() {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load reads .env and .env.local, then parses the environment.
func Load() (Config, error) {
	if _, err := LoadEnvFiles(".env", ".env.local"); err != nil {
		return Config{}, fmt.Errorf("load env files: %w", err)
	}
	return Parse()
}

// Parse reads the process environment only.
func Parse() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendSQLite:
	case BackendPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return errors.New("POSTGRES_DSN is required when BACKEND=postgres")
		}
	default:
		return fmt.Errorf("unsupported BACKEND %q", c.Backend)
	}
	if c.ImportBatchSize < 1 || c.ImportBatchSize > 1000 {
		return fmt.Errorf("IMPORT_BATCH_SIZE must be between 1 and 1000, got %d", c.ImportBatchSize)
	}
	if c.PollInterval <= 0 {
		return errors.New("POLL_INTERVAL must be positive")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}

// SlogLevel maps LOG_LEVEL onto slog levels; unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
