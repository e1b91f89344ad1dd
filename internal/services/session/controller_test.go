package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/sessiongate/internal/dependencies/mocks"
	"github.com/mcoot/sessiongate/internal/model"
	"github.com/mcoot/sessiongate/internal/realtime"
	"github.com/mcoot/sessiongate/internal/services/auth"
	"github.com/mcoot/sessiongate/internal/storage/memory"
	"github.com/mcoot/sessiongate/internal/testutil"
)

type recordingBus struct {
	mu        sync.Mutex
	sent      []realtime.Notification
	count     int
	answering bool
}

func (b *recordingBus) Send(n realtime.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, n)
}

func (b *recordingBus) ConnectionCount(ctx context.Context, attempts int, interval time.Duration) (int, bool) {
	if !b.answering {
		return 0, false
	}
	return b.count, true
}

func (b *recordingBus) notifications() []realtime.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]realtime.Notification(nil), b.sent...)
}

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	auth       *auth.Service
	bus        *recordingBus
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.bus = &recordingBus{}

	authService, err := auth.New(s.clock, auth.Config{Secret: []byte("test-secret")}, logger)
	s.Require().NoError(err)
	s.auth = authService

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	s.Require().NoError(err)

	cfg := DefaultConfig()
	cfg.AdminPasswordHash = hash
	s.controller = NewController(s.storage, s.auth, s.bus, s.clock, s.random, cfg, logger)
	s.ctx = context.Background()
}

func (s *ControllerSuite) createSession(code string) *model.Session {
	s.random.QueueString(code)
	session, err := s.controller.CreateSession(s.ctx, "")
	s.Require().NoError(err)
	return session
}

// CreateSession tests

func (s *ControllerSuite) TestCreateSession() {
	session := s.createSession("ABCDEFGH")

	s.Equal("ABCDEFGH", session.ID.String())
	s.True(session.Active)
	s.Equal(s.clock.Now(), session.CreatedAt)

	stored, err := s.storage.GetSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.True(stored.Active)
}

func (s *ControllerSuite) TestCreateSessionRetriesOnCollision() {
	s.createSession("ABCDEFGH")

	s.random.QueueString("ABCDEFGH", "ABCDEFGH", "12345678")
	session, err := s.controller.CreateSession(s.ctx, `{"rounds":2}`)
	s.Require().NoError(err)
	s.Equal("12345678", session.ID.String())
	s.Equal(`{"rounds":2}`, session.Settings)
}

func (s *ControllerSuite) TestCreateSessionGivesUp() {
	s.createSession("00000000")

	// the mock falls back to the alphabet's first character, which is taken
	_, err := s.controller.CreateSession(s.ctx, "")
	s.ErrorIs(err, ErrNoFreeSessionID)
}

// Join tests

func (s *ControllerSuite) TestJoin() {
	session := s.createSession("ABCDEFGH")

	result, err := s.controller.Join(s.ctx, "ABCDEFGH", "  alice ")
	s.Require().NoError(err)
	s.Equal("alice", result.Player.Name)

	player, err := s.auth.Player(result.Token)
	s.Require().NoError(err)
	s.Equal(session.ID, player.SessionID)
	s.Equal("alice", player.DisplayName)
	s.Equal("", player.Role)
	s.Equal(model.PlayerStateWaiting, player.PlayerState)
	uid, ok := player.UserID()
	s.True(ok)
	s.Equal(result.Player.UserID, uid)

	s.Equal([]realtime.Notification{realtime.PlayerListChanged{SessionID: session.ID}}, s.bus.notifications())
}

func (s *ControllerSuite) TestJoinErrors() {
	s.createSession("ABCDEFGH")
	inactive := s.createSession("INACTIVE")
	_, err := s.controller.SetActive(s.ctx, inactive.ID, false)
	s.Require().NoError(err)
	_, err = s.controller.Join(s.ctx, "ABCDEFGH", "alice")
	s.Require().NoError(err)

	tests := []struct {
		name    string
		sid     string
		player  string
		wantErr error
	}{
		{name: "malformed session", sid: "abc", player: "bob", wantErr: model.ErrInvalidSessionID},
		{name: "lowercase session", sid: "abcdefgh", player: "bob", wantErr: model.ErrInvalidSessionID},
		{name: "missing session", sid: "ZZZZZZZZ", player: "bob", wantErr: model.ErrSessionNotFound},
		{name: "inactive session", sid: "INACTIVE", player: "bob", wantErr: model.ErrSessionInactive},
		{name: "duplicate name", sid: "ABCDEFGH", player: "alice", wantErr: model.ErrDuplicateName},
		{name: "empty name", sid: "ABCDEFGH", player: "   ", wantErr: ErrInvalidName},
		{name: "long name", sid: "ABCDEFGH", player: "abcdefghijklmnopqrstuvwxyz0123456789", wantErr: ErrInvalidName},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.controller.Join(s.ctx, tt.sid, tt.player)
			s.ErrorIs(err, tt.wantErr)
		})
	}

	// only the successful join notified
	s.Len(s.bus.notifications(), 1)
}

func (s *ControllerSuite) TestJoinFailsWhenClockBeforeEpoch() {
	s.createSession("ABCDEFGH")
	s.clock.Set(time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC))

	_, err := s.controller.Join(s.ctx, "ABCDEFGH", "alice")
	s.ErrorIs(err, auth.ErrClockBeforeEpoch)
	s.Empty(s.bus.notifications())
}

// AdminLogin tests

func (s *ControllerSuite) TestAdminLogin() {
	token, err := s.controller.AdminLogin("hunter2")
	s.Require().NoError(err)

	_, err = s.auth.Admin(token)
	s.NoError(err)
}

func (s *ControllerSuite) TestAdminLoginWrongPassword() {
	_, err := s.controller.AdminLogin("hunter3")
	s.ErrorIs(err, ErrInvalidPassword)
}

func (s *ControllerSuite) TestAdminLoginWithoutConfiguredPassword() {
	controller := NewController(s.storage, s.auth, s.bus, s.clock, s.random, DefaultConfig(), testutil.NopLogger())
	_, err := controller.AdminLogin("")
	s.ErrorIs(err, ErrInvalidPassword)
}

// Session management tests

func (s *ControllerSuite) TestSetActive() {
	session := s.createSession("ABCDEFGH")

	updated, err := s.controller.SetActive(s.ctx, session.ID, false)
	s.Require().NoError(err)
	s.False(updated.Active)

	_, err = s.controller.SetActive(s.ctx, model.MustParseSessionID("ZZZZZZZZ"), false)
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ControllerSuite) TestSessionsIncludePlayerCounts() {
	a := s.createSession("AAAAAAAA")
	s.clock.Advance(time.Minute)
	b := s.createSession("BBBBBBBB")
	_, err := s.controller.Join(s.ctx, "AAAAAAAA", "alice")
	s.Require().NoError(err)
	_, err = s.controller.Join(s.ctx, "AAAAAAAA", "bob")
	s.Require().NoError(err)

	summaries, err := s.controller.Sessions(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(summaries, 2)
	s.Equal(a.ID, summaries[0].Session.ID)
	s.Equal(2, summaries[0].PlayerCount)
	s.Equal(b.ID, summaries[1].Session.ID)
	s.Equal(0, summaries[1].PlayerCount)
}

func (s *ControllerSuite) TestPlayers() {
	session := s.createSession("ABCDEFGH")
	_, err := s.controller.Join(s.ctx, "ABCDEFGH", "alice")
	s.Require().NoError(err)

	players, err := s.controller.Players(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Require().Len(players, 1)
	s.Equal("alice", players[0].Name)

	_, err = s.controller.Players(s.ctx, model.MustParseSessionID("ZZZZZZZZ"))
	s.ErrorIs(err, model.ErrSessionNotFound)
}

// Notification tests

func (s *ControllerSuite) TestBroadcast() {
	session := s.createSession("ABCDEFGH")

	s.Require().NoError(s.controller.Broadcast(s.ctx, session.ID, "round.start"))
	s.Equal([]realtime.Notification{
		realtime.SessionBroadcast{SessionID: session.ID, Payload: "round.start"},
	}, s.bus.notifications())

	err := s.controller.Broadcast(s.ctx, model.MustParseSessionID("ZZZZZZZZ"), "x")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ControllerSuite) TestMessage() {
	session := s.createSession("ABCDEFGH")
	joined, err := s.controller.Join(s.ctx, "ABCDEFGH", "alice")
	s.Require().NoError(err)

	s.Require().NoError(s.controller.Message(s.ctx, session.ID, joined.Player.UserID, "hi"))
	sent := s.bus.notifications()
	s.Equal(realtime.DirectMessage{SessionID: session.ID, UserID: joined.Player.UserID, Payload: "hi"}, sent[len(sent)-1])

	err = s.controller.Message(s.ctx, session.ID, joined.Player.UserID+100, "hi")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Stats tests

func (s *ControllerSuite) TestStats() {
	s.createSession("AAAAAAAA")
	inactive := s.createSession("BBBBBBBB")
	_, err := s.controller.SetActive(s.ctx, inactive.ID, false)
	s.Require().NoError(err)

	s.bus.answering = true
	s.bus.count = 3

	stats, err := s.controller.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(Stats{WSConnected: 3, SessionsActive: 1, UniqueUsers: 0}, stats)
}

func (s *ControllerSuite) TestStatsFallsBackToZeroConnections() {
	s.createSession("AAAAAAAA")

	stats, err := s.controller.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, stats.WSConnected)
	s.Equal(1, stats.SessionsActive)
}

func (s *ControllerSuite) TestStatsWithRealBus() {
	bus := realtime.NewBus(testutil.NopLogger())
	cfg := DefaultConfig()
	cfg.StatsAttempts = 2
	controller := NewController(s.storage, s.auth, bus, s.clock, s.random, cfg, testutil.NopLogger())

	stats, err := controller.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, stats.WSConnected)
	s.Equal(1, bus.Pending())
}

func (s *ControllerSuite) TestHashPassword() {
	hash, err := HashPassword("secret")
	s.Require().NoError(err)
	s.NoError(bcrypt.CompareHashAndPassword(hash, []byte("secret")))
}
