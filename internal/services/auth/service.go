package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/sessiongate/internal/dependencies/clock"
	"github.com/mcoot/sessiongate/internal/model"
)

// Errors
var (
	// ErrMalformedToken covers bad signatures, unparsable structure and
	// malformed numeric or enumerated fields
	ErrMalformedToken = errors.New("malformed token")

	// ErrTierRejected is the parent of every tier-specific rejection
	ErrTierRejected = errors.New("credential rejected for tier")
	ErrExpired      = fmt.Errorf("%w: expired", ErrTierRejected)
	ErrWrongLevel   = fmt.Errorf("%w: wrong level", ErrTierRejected)
	ErrMissingField = fmt.Errorf("%w: missing field", ErrTierRejected)

	// ErrClockBeforeEpoch is fatal for token issuance
	ErrClockBeforeEpoch = errors.New("cannot compute credential expiry")
)

// MissingFieldError names the claim a tier required but did not find
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "missing field " + e.Field
}

// Is makes errors.Is(err, ErrMissingField) and errors.Is(err, ErrTierRejected) hold
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField || target == ErrTierRejected
}

// Config holds configuration for the auth service
type Config struct {
	Secret   []byte
	TokenTTL time.Duration
}

// DefaultConfig returns default auth configuration. Secret must still be set.
func DefaultConfig() Config {
	return Config{
		TokenTTL: 4 * time.Hour,
	}
}

// Service issues signed credentials and authenticates presented tokens
type Service struct {
	codec     *Codec
	hierarchy *Hierarchy
	clock     clock.Clock
	tokenTTL  time.Duration
	logger    *slog.Logger
}

// New creates a new auth Service
func New(clk clock.Clock, cfg Config, logger *slog.Logger) (*Service, error) {
	codec, err := NewCodec(cfg.Secret)
	if err != nil {
		return nil, err
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultConfig().TokenTTL
	}
	return &Service{
		codec:     codec,
		hierarchy: NewHierarchy(clk),
		clock:     clk,
		tokenTTL:  cfg.TokenTTL,
		logger:    logger.With(slog.String("component", "auth")),
	}, nil
}

// Codec exposes the service's codec
func (s *Service) Codec() *Codec {
	return s.codec
}

// IssuePlayer mints a player credential for a member of sid
func (s *Service) IssuePlayer(sid model.SessionID, displayName, role string, userID model.UserID) (string, error) {
	exp, err := s.expiry()
	if err != nil {
		return "", err
	}
	return s.codec.Sign(Claims{
		Expiry:      exp,
		Level:       LevelPlayer,
		SessionID:   Ptr(sid.String()),
		DisplayName: Ptr(displayName),
		Role:        Ptr(role),
		PlayerState: Ptr(model.PlayerStateWaiting),
		UserID:      Ptr(userID),
	})
}

// IssueAdmin mints an admin credential
func (s *Service) IssueAdmin() (string, error) {
	exp, err := s.expiry()
	if err != nil {
		return "", err
	}
	return s.codec.Sign(Claims{
		Expiry: exp,
		Level:  LevelAdmin,
	})
}

func (s *Service) expiry() (uint64, error) {
	now, err := clock.UnixSeconds(s.clock)
	if err != nil {
		s.logger.Error("clock before epoch, refusing to issue credential", slog.Any("error", err))
		return 0, fmt.Errorf("%w: %w", ErrClockBeforeEpoch, err)
	}
	return now + uint64(s.tokenTTL/time.Second), nil
}

// Authenticate verifies token and derives the requested tier
func (s *Service) Authenticate(token string, tier Tier) (Credential, error) {
	claims, err := s.codec.Verify(token)
	if err != nil {
		return nil, err
	}
	return s.hierarchy.Derive(claims, tier)
}

// Basic authenticates token as any unexpired credential
func (s *Service) Basic(token string) (Basic, error) {
	claims, err := s.codec.Verify(token)
	if err != nil {
		return Basic{}, err
	}
	return s.hierarchy.DeriveBasic(claims)
}

// Player authenticates token as a player credential
func (s *Service) Player(token string) (Player, error) {
	claims, err := s.codec.Verify(token)
	if err != nil {
		return Player{}, err
	}
	return s.hierarchy.DerivePlayer(claims)
}

// Admin authenticates token as an admin credential
func (s *Service) Admin(token string) (Admin, error) {
	claims, err := s.codec.Verify(token)
	if err != nil {
		return Admin{}, err
	}
	return s.hierarchy.DeriveAdmin(claims)
}
