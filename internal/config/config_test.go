package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSIONGATE_TOKEN_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 4*time.Hour, cfg.TokenTTL)
	assert.Equal(t, StorageTypeMemory, cfg.StorageType)
	assert.Equal(t, 5*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 8, cfg.StatsAttempts)
	assert.Empty(t, cfg.AllowedOrigins)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SESSIONGATE_TOKEN_SECRET", "s3cret")
	t.Setenv("SESSIONGATE_PORT", "9090")
	t.Setenv("SESSIONGATE_TOKEN_TTL", "30m")
	t.Setenv("SESSIONGATE_STORAGE_TYPE", "sqlite")
	t.Setenv("SESSIONGATE_SQLITE_PATH", "/tmp/x.db")
	t.Setenv("SESSIONGATE_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("SESSIONGATE_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, StorageTypeSQLite, cfg.StorageType)
	assert.Equal(t, "/tmp/x.db", cfg.SQLitePath)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{
			name:    "missing secret",
			env:     map[string]string{},
			wantErr: ErrMissingSecret,
		},
		{
			name:    "unknown storage",
			env:     map[string]string{"SESSIONGATE_TOKEN_SECRET": "x", "SESSIONGATE_STORAGE_TYPE": "postgres"},
			wantErr: ErrInvalidStorageType,
		},
		{
			name:    "unknown log level",
			env:     map[string]string{"SESSIONGATE_TOKEN_SECRET": "x", "SESSIONGATE_LOG_LEVEL": "loud"},
			wantErr: ErrInvalidLogLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SESSIONGATE_TOKEN_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadBadDuration(t *testing.T) {
	t.Setenv("SESSIONGATE_TOKEN_SECRET", "x")
	t.Setenv("SESSIONGATE_TOKEN_TTL", "forever")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}
