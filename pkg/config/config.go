// Package config loads workhours settings from the environment.
//
// Variables carry the WORKHOURS_ prefix and use a double underscore to
// descend into sections, e.g. WORKHOURS_DATABASE__MAX_OPEN_CONNS maps to
// database.max_open_conns. A .env file in the working directory is loaded
// first when present.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// DefaultPrefix is the environment prefix read by Load.
const DefaultPrefix = "WORKHOURS_"

// Config is the root configuration object.
type Config struct {
	Database DatabaseConfig `koanf:"database" validate:"required"`
	Manager  ManagerConfig  `koanf:"manager"`
	Log      LogConfig      `koanf:"log"`
}

// DatabaseConfig selects the driver and tunes the pool.
type DatabaseConfig struct {
	Driver          string        `koanf:"driver" validate:"required,oneof=postgres pgx sqlite"`
	DSN             string        `koanf:"dsn" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"gte=0"`
	QueryTimeout    time.Duration `koanf:"query_timeout" validate:"gte=0"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

// ManagerConfig holds hour-tracking defaults.
type ManagerConfig struct {
	Scope string `koanf:"scope" validate:"oneof=eager lazy"`
}

// LogConfig controls log level and the optional rotating log file.
type LogConfig struct {
	Level      string `koanf:"level" validate:"oneof=trace debug info warn error"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `koanf:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `koanf:"max_age_days" validate:"gte=0"`
	Compress   bool   `koanf:"compress"`
}

var defaults = map[string]any{
	"database.driver":            "sqlite",
	"database.dsn":               "workhours.db",
	"database.max_open_conns":    10,
	"database.max_idle_conns":    5,
	"database.conn_max_lifetime": 30 * time.Minute,
	"database.query_timeout":     5 * time.Second,
	"database.auto_migrate":      true,
	"manager.scope":              "lazy",
	"log.level":                  "info",
	"log.max_size_mb":            50,
	"log.max_backups":            5,
	"log.max_age_days":           30,
	"log.compress":               true,
}

// Load reads configuration from variables carrying prefix, on top of the
// defaults, and validates the result.
func Load(prefix string) (*Config, error) {
	k := koanf.New(".")
	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("set default %s: %w", key, err)
		}
	}

	err := k.Load(env.Provider(prefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, prefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags of cfg.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
