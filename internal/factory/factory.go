package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/sessiongate/internal/api"
	"github.com/mcoot/sessiongate/internal/config"
	"github.com/mcoot/sessiongate/internal/dependencies/clock"
	"github.com/mcoot/sessiongate/internal/dependencies/random"
	"github.com/mcoot/sessiongate/internal/realtime"
	"github.com/mcoot/sessiongate/internal/services/auth"
	"github.com/mcoot/sessiongate/internal/services/session"
	"github.com/mcoot/sessiongate/internal/storage"
	"github.com/mcoot/sessiongate/internal/storage/memory"
	redisstorage "github.com/mcoot/sessiongate/internal/storage/redis"
	"github.com/mcoot/sessiongate/internal/storage/sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	AuthService       *auth.Service
	SessionController *session.Controller

	// Realtime
	Bus    *realtime.Bus
	Worker *realtime.Worker
	Gate   *realtime.Gate

	logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// AuthConfig holds configuration for the auth service. Secret is required.
	AuthConfig auth.Config
	// SessionConfig holds configuration for the session controller
	SessionConfig session.Config
	// WorkerConfig holds configuration for the realtime worker
	WorkerConfig realtime.Config
	// GateConfig holds configuration for the handshake gate
	GateConfig realtime.GateConfig
}

// ConfigFromEnv converts environment configuration into factory configuration.
// A plaintext admin password is hashed here.
func ConfigFromEnv(env config.Config, logger *slog.Logger) (Config, error) {
	cfg := Config{
		Logger:      logger,
		StorageType: env.StorageType,
		SQLitePath:  env.SQLitePath,
		AuthConfig: auth.Config{
			Secret:   []byte(env.TokenSecret),
			TokenTTL: env.TokenTTL,
		},
		SessionConfig: session.Config{
			StatsAttempts: env.StatsAttempts,
			StatsInterval: env.StatsInterval,
		},
		WorkerConfig: realtime.Config{
			TickInterval:  env.TickInterval,
			AcceptBacklog: env.AcceptBacklog,
		},
		GateConfig: realtime.GateConfig{
			PathPrefix:     api.WebsocketPath + "/",
			AllowedOrigins: env.AllowedOrigins,
		},
	}

	if env.StorageType == config.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = env.RedisURL
		if env.RedisPool > 0 {
			redisCfg.PoolSize = env.RedisPool
		}
		cfg.RedisConfig = &redisCfg
	}

	switch {
	case env.AdminPasswordHash != "":
		cfg.SessionConfig.AdminPasswordHash = []byte(env.AdminPasswordHash)
	case env.AdminPassword != "":
		hash, err := session.HashPassword(env.AdminPassword)
		if err != nil {
			return Config{}, fmt.Errorf("hash admin password: %w", err)
		}
		cfg.SessionConfig.AdminPasswordHash = hash
	}

	return cfg, nil
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	app, err := newWithDependencies(store, clock.New(), random.New(), cfg, logger)
	if err != nil {
		if closer, ok := store.(io.Closer); ok {
			_ = closer.Close()
		}
		return nil, err
	}
	return app, nil
}

// newStorage creates storage based on type
func newStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = config.StorageTypeMemory
	}

	switch storageType {
	case config.StorageTypeMemory:
		return memory.New(), nil
	case config.StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		return redisStore, nil
	case config.StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		sqliteStore, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return sqliteStore, nil
	default:
		return nil, config.ErrInvalidStorageType
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) (*App, error) {
	authService, err := auth.New(clk, cfg.AuthConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create auth service: %w", err)
	}

	gateCfg := cfg.GateConfig
	if gateCfg.PathPrefix == "" {
		gateCfg.PathPrefix = api.WebsocketPath + "/"
	}

	bus := realtime.NewBus(logger)
	worker := realtime.NewWorker(bus, clk, cfg.WorkerConfig, logger)
	gate := realtime.NewGate(authService, worker, gateCfg, logger)
	sessionController := session.NewController(store, authService, bus, clk, rnd, cfg.SessionConfig, logger)

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		AuthService:       authService,
		SessionController: sessionController,
		Bus:               bus,
		Worker:            worker,
		Gate:              gate,
		logger:            logger,
	}, nil
}

// Router builds the HTTP handler serving the API and websocket upgrades
func (a *App) Router() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:            a.logger,
		AuthService:       a.AuthService,
		SessionController: a.SessionController,
		Gate:              a.Gate,
	})
}

// Close releases storage resources
func (a *App) Close() error {
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
