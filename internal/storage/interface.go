package storage

import (
	"context"
	"time"

	"github.com/mcoot/sessiongate/internal/model"
)

// Storage defines the interface for session and player persistence
type Storage interface {
	// Session operations
	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	SetSessionActive(ctx context.Context, id model.SessionID, active bool) error
	ListSessions(ctx context.Context) ([]*model.Session, error)
	CountActiveSessions(ctx context.Context) (int, error)

	// Player operations

	// AddPlayer adds name to an active session. Display names are unique
	// within a session.
	AddPlayer(ctx context.Context, sid model.SessionID, name string, joined time.Time) (*model.Player, error)
	ListPlayers(ctx context.Context, sid model.SessionID) ([]*model.Player, error)
}
