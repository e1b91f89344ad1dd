package response

import (
	"time"

	"github.com/mcoot/sessiongate/internal/model"
	"github.com/mcoot/sessiongate/internal/services/auth"
	"github.com/mcoot/sessiongate/internal/services/session"
)

// Player represents a player in API responses
type Player struct {
	UserID   model.UserID `json:"user_id"`
	Name     string       `json:"name"`
	Role     string       `json:"role"`
	State    string       `json:"state"`
	JoinedAt time.Time    `json:"joined_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		UserID:   p.UserID,
		Name:     p.Name,
		Role:     p.Role,
		State:    p.State,
		JoinedAt: p.JoinedAt,
	}
}

// PlayersFromModel converts a slice of players
func PlayersFromModel(players []*model.Player) []Player {
	result := make([]Player, len(players))
	for i, p := range players {
		result[i] = PlayerFromModel(p)
	}
	return result
}

// PlayerList is the response listing the players of a session
type PlayerList struct {
	SessionID model.SessionID `json:"session_id"`
	Players   []Player        `json:"players"`
}

// ConnectClientResponse is the response for a successful join
type ConnectClientResponse struct {
	Token  string       `json:"token"`
	UserID model.UserID `json:"user_id"`
}

// ConnectCtrlResponse is the response for a successful admin login
type ConnectCtrlResponse struct {
	Token string `json:"token"`
}

// AuthStatus describes the credential a request was made with
type AuthStatus struct {
	Level     string    `json:"level"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthStatusFromBasic converts a basic credential
func AuthStatusFromBasic(b auth.Basic) AuthStatus {
	return AuthStatus{
		Level:     string(b.Level()),
		ExpiresAt: b.Claims().ExpiresAt(),
	}
}

// Session represents a session in API responses
type Session struct {
	ID          model.SessionID `json:"id"`
	Active      bool            `json:"active"`
	Settings    string          `json:"settings,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	PlayerCount int             `json:"player_count"`
}

// SessionFromModel converts a model.Session to a response Session
func SessionFromModel(s *model.Session, playerCount int) Session {
	return Session{
		ID:          s.ID,
		Active:      s.Active,
		Settings:    s.Settings,
		CreatedAt:   s.CreatedAt,
		PlayerCount: playerCount,
	}
}

// SessionsFromSummaries converts session summaries
func SessionsFromSummaries(summaries []session.Summary) []Session {
	result := make([]Session, len(summaries))
	for i, s := range summaries {
		result[i] = SessionFromModel(s.Session, s.PlayerCount)
	}
	return result
}

// SessionList is the response listing sessions
type SessionList struct {
	Sessions []Session `json:"sessions"`
}

// Stats is the response for the stats endpoint
type Stats struct {
	WSConnected    int `json:"ws_connected"`
	SessionsActive int `json:"sessions_active"`
	UniqueUsers    int `json:"unique_users"`
}

// StatsFromService converts session.Stats
func StatsFromService(s session.Stats) Stats {
	return Stats{
		WSConnected:    s.WSConnected,
		SessionsActive: s.SessionsActive,
		UniqueUsers:    s.UniqueUsers,
	}
}
