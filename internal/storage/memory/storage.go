package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mcoot/sessiongate/internal/model"
	"github.com/mcoot/sessiongate/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	sessions   map[model.SessionID]*model.Session
	players    map[model.SessionID][]*model.Player
	nextUserID model.UserID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		sessions:   make(map[model.SessionID]*model.Session),
		players:    make(map[model.SessionID][]*model.Player),
		nextUserID: 1,
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Session operations

func (s *Storage) CreateSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; ok {
		return model.ErrSessionExists
	}
	stored := *session
	s.sessions[session.ID] = &stored
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	out := *session
	return &out, nil
}

func (s *Storage) SetSessionActive(ctx context.Context, id model.SessionID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return model.ErrSessionNotFound
	}
	session.Active = active
	return nil
}

func (s *Storage) ListSessions(ctx context.Context) ([]*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessions := make([]*model.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out := *session
		sessions = append(sessions, &out)
	}
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
		}
		return sessions[i].ID.String() < sessions[j].ID.String()
	})
	return sessions, nil
}

func (s *Storage) CountActiveSessions(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, session := range s.sessions {
		if session.Active {
			count++
		}
	}
	return count, nil
}

// Player operations

func (s *Storage) AddPlayer(ctx context.Context, sid model.SessionID, name string, joined time.Time) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sid]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	if !session.Active {
		return nil, model.ErrSessionInactive
	}
	for _, p := range s.players[sid] {
		if p.Name == name {
			return nil, model.ErrDuplicateName
		}
	}

	player := &model.Player{
		UserID:    s.nextUserID,
		SessionID: sid,
		Name:      name,
		State:     model.PlayerStateWaiting,
		JoinedAt:  joined,
	}
	s.nextUserID++
	s.players[sid] = append(s.players[sid], player)

	out := *player
	return &out, nil
}

func (s *Storage) ListPlayers(ctx context.Context, sid model.SessionID) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	players := make([]*model.Player, 0, len(s.players[sid]))
	for _, p := range s.players[sid] {
		out := *p
		players = append(players, &out)
	}
	return players, nil
}
