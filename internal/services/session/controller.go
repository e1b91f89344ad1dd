package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/sessiongate/internal/dependencies/clock"
	"github.com/mcoot/sessiongate/internal/dependencies/random"
	"github.com/mcoot/sessiongate/internal/model"
	"github.com/mcoot/sessiongate/internal/realtime"
	"github.com/mcoot/sessiongate/internal/storage"
)

// Errors
var (
	ErrInvalidPassword = errors.New("invalid admin password")
	ErrInvalidName     = errors.New("invalid display name")
	ErrNoFreeSessionID = errors.New("could not generate an unused session id")
)

// Maximum attempts at generating an unused session id
const maxSessionIDAttempts = 16

// Issuer mints signed credentials
type Issuer interface {
	IssuePlayer(sid model.SessionID, displayName, role string, userID model.UserID) (string, error)
	IssueAdmin() (string, error)
}

// Bus accepts notifications for the realtime worker
type Bus interface {
	Send(n realtime.Notification)
	ConnectionCount(ctx context.Context, attempts int, interval time.Duration) (int, bool)
}

// Config holds configuration for the session controller
type Config struct {
	// AdminPasswordHash is a bcrypt hash. Admin login is refused when empty.
	AdminPasswordHash []byte
	// MaxNameLength bounds display names, in runes
	MaxNameLength int
	// StatsAttempts and StatsInterval bound the wait for a live connection count
	StatsAttempts int
	StatsInterval time.Duration
}

// DefaultConfig returns default controller configuration
func DefaultConfig() Config {
	return Config{
		MaxNameLength: 32,
		StatsAttempts: 8,
		StatsInterval: time.Millisecond,
	}
}

// JoinResult is the outcome of a successful join
type JoinResult struct {
	Token  string
	Player *model.Player
}

// Summary is a session with its player count
type Summary struct {
	Session     *model.Session
	PlayerCount int
}

// Stats is a snapshot of server activity
type Stats struct {
	WSConnected    int
	SessionsActive int
	UniqueUsers    int
}

// Controller manages sessions and their players, and publishes changes to
// connected clients through the bus
type Controller struct {
	storage storage.Storage
	issuer  Issuer
	bus     Bus
	clock   clock.Clock
	random  random.Random
	cfg     Config
	logger  *slog.Logger
}

// NewController creates a new session Controller
func NewController(
	storage storage.Storage,
	issuer Issuer,
	bus Bus,
	clock clock.Clock,
	random random.Random,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	defaults := DefaultConfig()
	if cfg.MaxNameLength <= 0 {
		cfg.MaxNameLength = defaults.MaxNameLength
	}
	if cfg.StatsAttempts <= 0 {
		cfg.StatsAttempts = defaults.StatsAttempts
	}
	if cfg.StatsInterval <= 0 {
		cfg.StatsInterval = defaults.StatsInterval
	}
	return &Controller{
		storage: storage,
		issuer:  issuer,
		bus:     bus,
		clock:   clock,
		random:  random,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "session")),
	}
}

// CreateSession creates a new active session under a freshly generated id
func (c *Controller) CreateSession(ctx context.Context, settings string) (*model.Session, error) {
	for attempt := 0; attempt < maxSessionIDAttempts; attempt++ {
		sid, err := model.ParseSessionID(c.random.String(model.SessionIDLength, model.SessionIDAlphabet))
		if err != nil {
			return nil, fmt.Errorf("generated session id: %w", err)
		}

		session := &model.Session{
			ID:        sid,
			Active:    true,
			Settings:  settings,
			CreatedAt: c.clock.Now(),
		}
		err = c.storage.CreateSession(ctx, session)
		if errors.Is(err, model.ErrSessionExists) {
			continue
		}
		if err != nil {
			return nil, err
		}

		c.logger.Info("session created", slog.String("session_id", sid.String()))
		return session, nil
	}
	return nil, ErrNoFreeSessionID
}

// GetSession returns a session by id
func (c *Controller) GetSession(ctx context.Context, sid model.SessionID) (*model.Session, error) {
	return c.storage.GetSession(ctx, sid)
}

// SetActive opens or closes a session for joining
func (c *Controller) SetActive(ctx context.Context, sid model.SessionID, active bool) (*model.Session, error) {
	if err := c.storage.SetSessionActive(ctx, sid, active); err != nil {
		return nil, err
	}
	c.logger.Info("session activity changed",
		slog.String("session_id", sid.String()),
		slog.Bool("active", active))
	return c.storage.GetSession(ctx, sid)
}

// Sessions lists every session with its player count
func (c *Controller) Sessions(ctx context.Context) ([]Summary, error) {
	sessions, err := c.storage.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]Summary, 0, len(sessions))
	for _, s := range sessions {
		players, err := c.storage.ListPlayers(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, Summary{Session: s, PlayerCount: len(players)})
	}
	return summaries, nil
}

// Join adds a player named name to the session identified by rawSID and
// issues their credential. Other members are told the player list changed.
func (c *Controller) Join(ctx context.Context, rawSID, name string) (*JoinResult, error) {
	sid, err := model.ParseSessionID(rawSID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > c.cfg.MaxNameLength {
		return nil, ErrInvalidName
	}

	player, err := c.storage.AddPlayer(ctx, sid, name, c.clock.Now())
	if err != nil {
		c.logger.Info("join rejected",
			slog.String("session_id", sid.String()),
			slog.String("name", name),
			slog.Any("error", err))
		return nil, err
	}

	token, err := c.issuer.IssuePlayer(sid, player.Name, player.Role, player.UserID)
	if err != nil {
		c.logger.Error("failed to issue player credential",
			slog.String("session_id", sid.String()),
			slog.Int("user_id", int(player.UserID)),
			slog.Any("error", err))
		return nil, err
	}

	c.bus.Send(realtime.PlayerListChanged{SessionID: sid})
	c.logger.Info("player joined",
		slog.String("session_id", sid.String()),
		slog.Int("user_id", int(player.UserID)))

	return &JoinResult{Token: token, Player: player}, nil
}

// AdminLogin checks password against the configured hash and issues an admin credential
func (c *Controller) AdminLogin(password string) (string, error) {
	if len(c.cfg.AdminPasswordHash) == 0 {
		c.logger.Warn("admin login attempted but no admin password is configured")
		return "", ErrInvalidPassword
	}
	if err := bcrypt.CompareHashAndPassword(c.cfg.AdminPasswordHash, []byte(password)); err != nil {
		c.logger.Warn("admin login failed")
		return "", ErrInvalidPassword
	}
	return c.issuer.IssueAdmin()
}

// Players lists the players of a session
func (c *Controller) Players(ctx context.Context, sid model.SessionID) ([]*model.Player, error) {
	if _, err := c.storage.GetSession(ctx, sid); err != nil {
		return nil, err
	}
	return c.storage.ListPlayers(ctx, sid)
}

// Broadcast sends payload to every connection in a session, admins included
func (c *Controller) Broadcast(ctx context.Context, sid model.SessionID, payload string) error {
	if _, err := c.storage.GetSession(ctx, sid); err != nil {
		return err
	}
	c.bus.Send(realtime.SessionBroadcast{SessionID: sid, Payload: payload})
	return nil
}

// Message sends payload to one player's connections
func (c *Controller) Message(ctx context.Context, sid model.SessionID, uid model.UserID, payload string) error {
	players, err := c.Players(ctx, sid)
	if err != nil {
		return err
	}
	for _, p := range players {
		if p.UserID == uid {
			c.bus.Send(realtime.DirectMessage{SessionID: sid, UserID: uid, Payload: payload})
			return nil
		}
	}
	return model.ErrPlayerNotFound
}

// Stats reports live connections and active sessions. An unanswered
// connection count is reported as zero.
func (c *Controller) Stats(ctx context.Context) (Stats, error) {
	active, err := c.storage.CountActiveSessions(ctx)
	if err != nil {
		return Stats{}, err
	}
	connected, ok := c.bus.ConnectionCount(ctx, c.cfg.StatsAttempts, c.cfg.StatsInterval)
	if !ok {
		c.logger.Error("realtime worker did not report connection count")
	}
	return Stats{
		WSConnected:    connected,
		SessionsActive: active,
	}, nil
}

// HashPassword returns a bcrypt hash of password for use as AdminPasswordHash
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}
