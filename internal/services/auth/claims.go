package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/sessiongate/internal/model"
)

// Level is the authorization level a credential was minted for
type Level string

const (
	LevelBasic  Level = "basic"
	LevelPlayer Level = "player"
	LevelAdmin  Level = "admin"
)

// ParseLevel validates a wire level value
func ParseLevel(s string) (Level, error) {
	switch l := Level(s); l {
	case LevelBasic, LevelPlayer, LevelAdmin:
		return l, nil
	default:
		return "", fmt.Errorf("unknown level %q", s)
	}
}

// Claims is the signed payload of a credential. Optional fields are nil when
// absent; an empty string is a present value.
type Claims struct {
	Expiry      uint64
	Level       Level
	SessionID   *string
	DisplayName *string
	Role        *string
	PlayerState *string
	UserID      *model.UserID
}

// MaxExpiresAt is the latest expiry ExpiresAt reports. Later expiries are
// clamped to it so they still render as RFC 3339.
var MaxExpiresAt = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// ExpiresAt returns the expiry as a time
func (c Claims) ExpiresAt() time.Time {
	return expiryTime(c.Expiry)
}

func expiryTime(exp uint64) time.Time {
	if exp > uint64(MaxExpiresAt.Unix()) {
		return MaxExpiresAt
	}
	return time.Unix(int64(exp), 0).UTC()
}

// Ptr returns a pointer to v, for filling optional claim fields
func Ptr[T any](v T) *T {
	return &v
}

// tokenClaims is the JWT wire form of Claims
type tokenClaims struct {
	Exp         *uint64 `json:"exp"`
	Level       string  `json:"level"`
	SessionID   *string `json:"session_id,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	Role        *string `json:"role,omitempty"`
	PlayerState *string `json:"player_state,omitempty"`
	UserID      *uint32 `json:"user_id,omitempty"`
}

var _ jwt.Claims = (*tokenClaims)(nil)

func toTokenClaims(c Claims) *tokenClaims {
	exp := c.Expiry
	tc := &tokenClaims{
		Exp:         &exp,
		Level:       string(c.Level),
		SessionID:   c.SessionID,
		DisplayName: c.DisplayName,
		Role:        c.Role,
		PlayerState: c.PlayerState,
	}
	if c.UserID != nil {
		uid := uint32(*c.UserID)
		tc.UserID = &uid
	}
	return tc
}

func (tc *tokenClaims) toClaims() (Claims, error) {
	if tc.Exp == nil {
		return Claims{}, fmt.Errorf("missing exp")
	}
	level, err := ParseLevel(tc.Level)
	if err != nil {
		return Claims{}, err
	}
	c := Claims{
		Expiry:      *tc.Exp,
		Level:       level,
		SessionID:   tc.SessionID,
		DisplayName: tc.DisplayName,
		Role:        tc.Role,
		PlayerState: tc.PlayerState,
	}
	if tc.UserID != nil {
		uid := model.UserID(*tc.UserID)
		c.UserID = &uid
	}
	return c, nil
}

// The registered-claim accessors only exist to satisfy jwt.Claims. Parsing
// runs without claims validation; expiry is checked by the Hierarchy.

func (tc *tokenClaims) GetExpirationTime() (*jwt.NumericDate, error) {
	if tc.Exp == nil {
		return nil, nil
	}
	return jwt.NewNumericDate(expiryTime(*tc.Exp)), nil
}

func (tc *tokenClaims) GetIssuedAt() (*jwt.NumericDate, error)  { return nil, nil }
func (tc *tokenClaims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }
func (tc *tokenClaims) GetIssuer() (string, error)              { return "", nil }
func (tc *tokenClaims) GetSubject() (string, error)             { return "", nil }
func (tc *tokenClaims) GetAudience() (jwt.ClaimStrings, error)  { return nil, nil }
