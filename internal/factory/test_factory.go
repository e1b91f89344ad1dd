package factory

import (
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/sessiongate/internal/dependencies/mocks"
	"github.com/mcoot/sessiongate/internal/realtime"
	"github.com/mcoot/sessiongate/internal/services/auth"
	"github.com/mcoot/sessiongate/internal/services/session"
	"github.com/mcoot/sessiongate/internal/storage/memory"
	"github.com/mcoot/sessiongate/internal/testutil"
)

// Credentials used by TestApp
const (
	TestSecret        = "test-secret"
	TestAdminPassword = "hunter2"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithLogger(testutil.NopLogger())
}

// NewTestAppWithLogger is NewTestApp writing its logs to logger
func NewTestAppWithLogger(logger *slog.Logger) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestAdminPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	authCfg := auth.DefaultConfig()
	authCfg.Secret = []byte(TestSecret)
	sessionCfg := session.DefaultConfig()
	sessionCfg.AdminPasswordHash = hash
	sessionCfg.StatsAttempts = 500

	app, err := newWithDependencies(store, mockClock, mockRandom, Config{
		AuthConfig:    authCfg,
		SessionConfig: sessionCfg,
		WorkerConfig:  realtime.Config{TickInterval: time.Millisecond},
	}, logger)
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
