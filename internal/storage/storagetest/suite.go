// Package storagetest holds behaviour tests shared by every storage backend
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/sessiongate/internal/model"
	"github.com/mcoot/sessiongate/internal/storage"
)

// Suite runs the storage contract against the backend returned by NewStorage.
// Backends embed it and set NewStorage before suite.Run.
type Suite struct {
	suite.Suite
	NewStorage func() storage.Storage

	Storage storage.Storage
	Ctx     context.Context
}

var baseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func (s *Suite) SetupTest() {
	s.Storage = s.NewStorage()
	s.Ctx = context.Background()
}

// MustCreateSession stores a session created offset after a fixed base time
func (s *Suite) MustCreateSession(id string, active bool, offset time.Duration) model.SessionID {
	sid := model.MustParseSessionID(id)
	s.Require().NoError(s.Storage.CreateSession(s.Ctx, &model.Session{
		ID:        sid,
		Active:    active,
		CreatedAt: baseTime.Add(offset),
	}))
	return sid
}

// Session tests

func (s *Suite) TestCreateAndGetSession() {
	sid := model.MustParseSessionID("ABCDEFGH")
	err := s.Storage.CreateSession(s.Ctx, &model.Session{
		ID:        sid,
		Active:    true,
		Settings:  `{"rounds":3}`,
		CreatedAt: baseTime,
	})
	s.Require().NoError(err)

	got, err := s.Storage.GetSession(s.Ctx, sid)
	s.Require().NoError(err)
	s.Equal(sid, got.ID)
	s.True(got.Active)
	s.Equal(`{"rounds":3}`, got.Settings)
	s.True(baseTime.Equal(got.CreatedAt))
}

func (s *Suite) TestCreateSessionRejectsDuplicate() {
	s.MustCreateSession("ABCDEFGH", true, 0)
	err := s.Storage.CreateSession(s.Ctx, &model.Session{ID: model.MustParseSessionID("ABCDEFGH"), CreatedAt: baseTime})
	s.ErrorIs(err, model.ErrSessionExists)
}

func (s *Suite) TestGetSessionNotFound() {
	_, err := s.Storage.GetSession(s.Ctx, model.MustParseSessionID("ZZZZZZZZ"))
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *Suite) TestSetSessionActive() {
	sid := s.MustCreateSession("ABCDEFGH", true, 0)

	s.Require().NoError(s.Storage.SetSessionActive(s.Ctx, sid, false))
	got, err := s.Storage.GetSession(s.Ctx, sid)
	s.Require().NoError(err)
	s.False(got.Active)

	s.Require().NoError(s.Storage.SetSessionActive(s.Ctx, sid, true))
	got, err = s.Storage.GetSession(s.Ctx, sid)
	s.Require().NoError(err)
	s.True(got.Active)

	err = s.Storage.SetSessionActive(s.Ctx, model.MustParseSessionID("ZZZZZZZZ"), true)
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *Suite) TestListSessionsOrderedByCreation() {
	s.MustCreateSession("BBBBBBBB", true, 2*time.Minute)
	s.MustCreateSession("AAAAAAAA", false, time.Minute)
	s.MustCreateSession("CCCCCCCC", true, 3*time.Minute)

	sessions, err := s.Storage.ListSessions(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(sessions, 3)
	s.Equal("AAAAAAAA", sessions[0].ID.String())
	s.Equal("BBBBBBBB", sessions[1].ID.String())
	s.Equal("CCCCCCCC", sessions[2].ID.String())
	s.False(sessions[0].Active)
}

func (s *Suite) TestListSessionsEmpty() {
	sessions, err := s.Storage.ListSessions(s.Ctx)
	s.Require().NoError(err)
	s.Empty(sessions)
}

func (s *Suite) TestCountActiveSessions() {
	count, err := s.Storage.CountActiveSessions(s.Ctx)
	s.Require().NoError(err)
	s.Equal(0, count)

	s.MustCreateSession("AAAAAAAA", true, 0)
	s.MustCreateSession("BBBBBBBB", false, 0)
	sid := s.MustCreateSession("CCCCCCCC", true, 0)

	count, err = s.Storage.CountActiveSessions(s.Ctx)
	s.Require().NoError(err)
	s.Equal(2, count)

	s.Require().NoError(s.Storage.SetSessionActive(s.Ctx, sid, false))
	count, err = s.Storage.CountActiveSessions(s.Ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}

// Player tests

func (s *Suite) TestAddAndListPlayers() {
	sid := s.MustCreateSession("ABCDEFGH", true, 0)

	alice, err := s.Storage.AddPlayer(s.Ctx, sid, "alice", baseTime)
	s.Require().NoError(err)
	bob, err := s.Storage.AddPlayer(s.Ctx, sid, "bob", baseTime.Add(time.Second))
	s.Require().NoError(err)

	s.NotZero(alice.UserID)
	s.NotEqual(alice.UserID, bob.UserID)
	s.Equal(sid, alice.SessionID)
	s.Equal(model.PlayerStateWaiting, alice.State)
	s.Equal("", alice.Role)

	players, err := s.Storage.ListPlayers(s.Ctx, sid)
	s.Require().NoError(err)
	s.Require().Len(players, 2)
	s.Equal("alice", players[0].Name)
	s.Equal(alice.UserID, players[0].UserID)
	s.Equal("bob", players[1].Name)
	s.True(baseTime.Add(time.Second).Equal(players[1].JoinedAt))
}

func (s *Suite) TestAddPlayerSessionMissing() {
	_, err := s.Storage.AddPlayer(s.Ctx, model.MustParseSessionID("ZZZZZZZZ"), "alice", baseTime)
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *Suite) TestAddPlayerSessionInactive() {
	sid := s.MustCreateSession("ABCDEFGH", false, 0)
	_, err := s.Storage.AddPlayer(s.Ctx, sid, "alice", baseTime)
	s.ErrorIs(err, model.ErrSessionInactive)
}

func (s *Suite) TestAddPlayerDuplicateNameInSession() {
	sid := s.MustCreateSession("ABCDEFGH", true, 0)
	_, err := s.Storage.AddPlayer(s.Ctx, sid, "alice", baseTime)
	s.Require().NoError(err)

	_, err = s.Storage.AddPlayer(s.Ctx, sid, "alice", baseTime)
	s.ErrorIs(err, model.ErrDuplicateName)

	players, err := s.Storage.ListPlayers(s.Ctx, sid)
	s.Require().NoError(err)
	s.Len(players, 1)
}

func (s *Suite) TestSameNameAllowedInOtherSession() {
	a := s.MustCreateSession("AAAAAAAA", true, 0)
	b := s.MustCreateSession("BBBBBBBB", true, 0)

	_, err := s.Storage.AddPlayer(s.Ctx, a, "alice", baseTime)
	s.Require().NoError(err)
	_, err = s.Storage.AddPlayer(s.Ctx, b, "alice", baseTime)
	s.NoError(err)
}

func (s *Suite) TestListPlayersUnknownSession() {
	players, err := s.Storage.ListPlayers(s.Ctx, model.MustParseSessionID("ZZZZZZZZ"))
	s.Require().NoError(err)
	s.Empty(players)
}
