package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// Errors
var (
	ErrMissingSecret      = errors.New("SESSIONGATE_TOKEN_SECRET is required")
	ErrInvalidStorageType = errors.New("invalid SESSIONGATE_STORAGE_TYPE: must be 'memory', 'redis' or 'sqlite'")
	ErrInvalidLogLevel    = errors.New("invalid SESSIONGATE_LOG_LEVEL")
)

// Config is the server configuration, read from SESSIONGATE_* environment variables
type Config struct {
	Host            string        `env:"SESSIONGATE_HOST"`
	Port            int           `env:"SESSIONGATE_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"SESSIONGATE_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"SESSIONGATE_WRITE_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SESSIONGATE_SHUTDOWN_TIMEOUT" envDefault:"30s"`

	TokenSecret string        `env:"SESSIONGATE_TOKEN_SECRET"`
	TokenTTL    time.Duration `env:"SESSIONGATE_TOKEN_TTL" envDefault:"4h"`

	// AdminPasswordHash is a bcrypt hash. AdminPassword is a plaintext
	// alternative for development, hashed at startup. Admin login is
	// disabled when neither is set.
	AdminPasswordHash string `env:"SESSIONGATE_ADMIN_PASSWORD_HASH"`
	AdminPassword     string `env:"SESSIONGATE_ADMIN_PASSWORD"`

	StorageType string `env:"SESSIONGATE_STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"SESSIONGATE_REDIS_URL" envDefault:"redis://localhost:6379"`
	RedisPool   int    `env:"SESSIONGATE_REDIS_POOL_SIZE" envDefault:"10"`
	SQLitePath  string `env:"SESSIONGATE_SQLITE_PATH" envDefault:"sessiongate.db"`

	TickInterval   time.Duration `env:"SESSIONGATE_TICK_INTERVAL" envDefault:"5ms"`
	AcceptBacklog  int           `env:"SESSIONGATE_ACCEPT_BACKLOG" envDefault:"64"`
	AllowedOrigins []string      `env:"SESSIONGATE_ALLOWED_ORIGINS" envSeparator:","`

	StatsAttempts int           `env:"SESSIONGATE_STATS_ATTEMPTS" envDefault:"8"`
	StatsInterval time.Duration `env:"SESSIONGATE_STATS_INTERVAL" envDefault:"1ms"`

	LogLevel string `env:"SESSIONGATE_LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from the environment and validates it
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that cfg can start a server
func (c Config) Validate() error {
	if c.TokenSecret == "" {
		return ErrMissingSecret
	}
	switch c.StorageType {
	case StorageTypeMemory, StorageTypeRedis, StorageTypeSQLite:
	default:
		return ErrInvalidStorageType
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the configured log level
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	return level, nil
}
