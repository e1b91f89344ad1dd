package factory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/sessiongate/internal/model"
	"github.com/mcoot/sessiongate/internal/realtime"
	"github.com/mcoot/sessiongate/internal/services/auth"
)

type IntegrationSuite struct {
	suite.Suite
	app    *TestApp
	ctx    context.Context
	cancel context.CancelFunc
	server *httptest.Server
	done   chan struct{}
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.server = httptest.NewServer(s.app.Router())

	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		s.app.Worker.Run(s.ctx)
	}()
}

func (s *IntegrationSuite) TearDownTest() {
	s.cancel()
	<-s.done
	s.server.Close()
}

func (s *IntegrationSuite) dial(token string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws/" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	s.Equal(http.StatusSwitchingProtocols, resp.StatusCode)
	s.T().Cleanup(func() { _ = conn.Close() })
	return conn
}

func (s *IntegrationSuite) readText(conn *websocket.Conn) string {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	kind, data, err := conn.ReadMessage()
	s.Require().NoError(err)
	s.Equal(websocket.TextMessage, kind)
	return string(data)
}

func (s *IntegrationSuite) waitForConnections(n int) {
	s.Eventually(func() bool {
		stats, err := s.app.SessionController.Stats(s.ctx)
		return err == nil && stats.WSConnected == n
	}, 2*time.Second, 5*time.Millisecond)
}

// Test: a joined player's token derives as a player and not as an admin
func (s *IntegrationSuite) TestJoinIssuesPlayerCredential() {
	s.app.MockRandom.QueueString("1234ABCD")
	session, err := s.app.SessionController.CreateSession(s.ctx, "")
	s.Require().NoError(err)
	s.Equal("1234ABCD", session.ID.String())

	result, err := s.app.SessionController.Join(s.ctx, "1234ABCD", "alice")
	s.Require().NoError(err)

	player, err := s.app.AuthService.Player(result.Token)
	s.Require().NoError(err)
	s.Equal(session.ID, player.SessionID)
	s.Equal("alice", player.DisplayName)
	uid, ok := player.UserID()
	s.True(ok)
	s.Equal(result.Player.UserID, uid)

	_, err = s.app.AuthService.Admin(result.Token)
	s.ErrorIs(err, auth.ErrWrongLevel)

	// Expired after the token lifetime
	s.app.MockClock.Advance(4*time.Hour + time.Second)
	_, err = s.app.AuthService.Player(result.Token)
	s.ErrorIs(err, auth.ErrExpired)
}

// Test: members are told when someone else joins their session
func (s *IntegrationSuite) TestPlayerListUpdateReachesSessionMembers() {
	s.app.MockRandom.QueueString("ABCDEFGH", "QRSTUVWX")
	_, err := s.app.SessionController.CreateSession(s.ctx, "")
	s.Require().NoError(err)
	_, err = s.app.SessionController.CreateSession(s.ctx, "")
	s.Require().NoError(err)

	alice, err := s.app.SessionController.Join(s.ctx, "ABCDEFGH", "alice")
	s.Require().NoError(err)
	other, err := s.app.SessionController.Join(s.ctx, "QRSTUVWX", "carol")
	s.Require().NoError(err)

	aliceConn := s.dial(alice.Token)
	otherConn := s.dial(other.Token)
	s.waitForConnections(2)

	_, err = s.app.SessionController.Join(s.ctx, "ABCDEFGH", "bob")
	s.Require().NoError(err)

	s.Equal(realtime.PlayerListMessage, s.readText(aliceConn))

	// Carol's session is untouched; the next thing she sees is a broadcast
	s.Require().NoError(s.app.SessionController.Broadcast(s.ctx, model.MustParseSessionID("QRSTUVWX"), "hello"))
	s.Equal("hello", s.readText(otherConn))
}

// Test: admins receive every session's broadcasts, players only their own
func (s *IntegrationSuite) TestAdminReceivesBroadcasts() {
	s.app.MockRandom.QueueString("ABCDEFGH")
	_, err := s.app.SessionController.CreateSession(s.ctx, "")
	s.Require().NoError(err)

	adminToken, err := s.app.SessionController.AdminLogin(TestAdminPassword)
	s.Require().NoError(err)
	alice, err := s.app.SessionController.Join(s.ctx, "ABCDEFGH", "alice")
	s.Require().NoError(err)

	adminConn := s.dial(adminToken)
	aliceConn := s.dial(alice.Token)
	s.waitForConnections(2)

	sid := model.MustParseSessionID("ABCDEFGH")
	s.Require().NoError(s.app.SessionController.Broadcast(s.ctx, sid, "round 1"))
	s.Equal("round 1", s.readText(adminConn))
	s.Equal("round 1", s.readText(aliceConn))

	s.Require().NoError(s.app.SessionController.Message(s.ctx, sid, alice.Player.UserID, "psst"))
	s.Equal("psst", s.readText(aliceConn))
}

// Test: closed clients are reaped and no longer counted
func (s *IntegrationSuite) TestClosedConnectionIsReaped() {
	s.app.MockRandom.QueueString("ABCDEFGH")
	_, err := s.app.SessionController.CreateSession(s.ctx, "")
	s.Require().NoError(err)
	alice, err := s.app.SessionController.Join(s.ctx, "ABCDEFGH", "alice")
	s.Require().NoError(err)

	conn := s.dial(alice.Token)
	s.waitForConnections(1)

	s.Require().NoError(conn.Close())
	s.waitForConnections(0)
}

// Test: upgrades without a usable credential are refused before the handshake
func (s *IntegrationSuite) TestUpgradeRejectedWithoutCredential() {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws/not-a-token"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().Error(err)
	s.Require().NotNil(resp)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

// Test: stopping the worker closes client connections
func (s *IntegrationSuite) TestShutdownClosesConnections() {
	adminToken, err := s.app.SessionController.AdminLogin(TestAdminPassword)
	s.Require().NoError(err)
	conn := s.dial(adminToken)
	s.waitForConnections(1)

	s.cancel()
	<-s.done

	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	_, _, err = conn.ReadMessage()
	s.Error(err)

	// Later sends are dropped rather than queued
	s.app.Bus.Send(realtime.SessionBroadcast{SessionID: model.MustParseSessionID("ABCDEFGH"), Payload: "late"})
	s.Zero(s.app.Bus.Pending())
}
