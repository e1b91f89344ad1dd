package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/sessiongate/internal/model"
	"github.com/mcoot/sessiongate/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Session operations

func (s *Storage) CreateSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	created, err := s.client.SetNX(ctx, sessionKey(session.ID), data, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return model.ErrSessionExists
	}

	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, sessionsIndexKey(), redis.Z{
		Score:  float64(session.CreatedAt.Unix()),
		Member: session.ID.String(),
	})
	if session.Active {
		pipe.SAdd(ctx, activeSessionsIndexKey(), session.ID.String())
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) SetSessionActive(ctx context.Context, id model.SessionID, active bool) error {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return err
	}
	session.Active = active

	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(id), data, 0)
	if active {
		pipe.SAdd(ctx, activeSessionsIndexKey(), id.String())
	} else {
		pipe.SRem(ctx, activeSessionsIndexKey(), id.String())
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListSessions(ctx context.Context) ([]*model.Session, error) {
	ids, err := s.client.ZRange(ctx, sessionsIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Session{}, nil
	}

	keys := make([]string, len(ids))
	for i, raw := range ids {
		sid, err := model.ParseSessionID(raw)
		if err != nil {
			return nil, fmt.Errorf("session index entry %q: %w", raw, err)
		}
		keys[i] = sessionKey(sid)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	sessions := make([]*model.Session, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			// index entry without a record
			continue
		}
		var session model.Session
		if err := json.Unmarshal([]byte(str), &session); err != nil {
			return nil, err
		}
		sessions = append(sessions, &session)
	}
	return sessions, nil
}

func (s *Storage) CountActiveSessions(ctx context.Context) (int, error) {
	n, err := s.client.SCard(ctx, activeSessionsIndexKey()).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Player operations

func (s *Storage) AddPlayer(ctx context.Context, sid model.SessionID, name string, joined time.Time) (*model.Player, error) {
	session, err := s.GetSession(ctx, sid)
	if err != nil {
		return nil, err
	}
	if !session.Active {
		return nil, model.ErrSessionInactive
	}

	// SADD is the uniqueness gate: it adds nothing if the name is taken
	added, err := s.client.SAdd(ctx, playerNamesKey(sid), name).Result()
	if err != nil {
		return nil, err
	}
	if added == 0 {
		return nil, model.ErrDuplicateName
	}

	id, err := s.client.Incr(ctx, userIDSequenceKey()).Result()
	if err != nil {
		_ = s.client.SRem(ctx, playerNamesKey(sid), name).Err()
		return nil, err
	}

	player := &model.Player{
		UserID:    model.UserID(id),
		SessionID: sid,
		Name:      name,
		State:     model.PlayerStateWaiting,
		JoinedAt:  joined,
	}
	data, err := json.Marshal(player)
	if err != nil {
		return nil, err
	}
	if err := s.client.RPush(ctx, playersKey(sid), data).Err(); err != nil {
		_ = s.client.SRem(ctx, playerNamesKey(sid), name).Err()
		return nil, err
	}
	return player, nil
}

func (s *Storage) ListPlayers(ctx context.Context, sid model.SessionID) ([]*model.Player, error) {
	values, err := s.client.LRange(ctx, playersKey(sid), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	players := make([]*model.Player, 0, len(values))
	for _, v := range values {
		var player model.Player
		if err := json.Unmarshal([]byte(v), &player); err != nil {
			return nil, err
		}
		players = append(players, &player)
	}
	return players, nil
}
