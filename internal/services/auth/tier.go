package auth

import (
	"fmt"

	"github.com/mcoot/sessiongate/internal/dependencies/clock"
	"github.com/mcoot/sessiongate/internal/model"
)

// Tier is a credential tier a caller can ask for
type Tier int

const (
	TierBasic Tier = iota
	TierPlayer
	TierAdmin
)

func (t Tier) String() string {
	switch t {
	case TierBasic:
		return "basic"
	case TierPlayer:
		return "player"
	case TierAdmin:
		return "admin"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// Credential is a verified, tier-checked credential
type Credential interface {
	Tier() Tier
	Claims() Claims
}

// Basic is any unexpired, well-formed credential
type Basic struct {
	claims Claims
}

func (b Basic) Tier() Tier     { return TierBasic }
func (b Basic) Claims() Claims { return b.claims }
func (b Basic) Level() Level   { return b.claims.Level }
func (b Basic) Expiry() uint64 { return b.claims.Expiry }

// Player is a credential bound to a single session under a display name
type Player struct {
	Basic
	SessionID   model.SessionID
	DisplayName string
	Role        string
	PlayerState string
	userID      *model.UserID
}

func (p Player) Tier() Tier { return TierPlayer }

// UserID returns the player's user id when the credential carries one
func (p Player) UserID() (model.UserID, bool) {
	if p.userID == nil {
		return 0, false
	}
	return *p.userID, true
}

// Admin is a credential with administrative access to every session
type Admin struct {
	Basic
}

func (a Admin) Tier() Tier { return TierAdmin }

var (
	_ Credential = Basic{}
	_ Credential = Player{}
	_ Credential = Admin{}
)

// Hierarchy narrows verified claims into tier-specific credentials.
// Every derivation re-checks expiry against the clock.
type Hierarchy struct {
	clock clock.Clock
}

// NewHierarchy creates a Hierarchy using clk for expiry checks
func NewHierarchy(clk clock.Clock) *Hierarchy {
	return &Hierarchy{clock: clk}
}

// Derive dispatches to the derivation for tier
func (h *Hierarchy) Derive(claims Claims, tier Tier) (Credential, error) {
	switch tier {
	case TierBasic:
		return h.DeriveBasic(claims)
	case TierPlayer:
		return h.DerivePlayer(claims)
	case TierAdmin:
		return h.DeriveAdmin(claims)
	default:
		return nil, fmt.Errorf("unknown tier %s", tier)
	}
}

// DeriveBasic accepts any claims whose expiry is strictly in the future
func (h *Hierarchy) DeriveBasic(claims Claims) (Basic, error) {
	now, err := clock.UnixSeconds(h.clock)
	if err != nil {
		return Basic{}, fmt.Errorf("%w: %w", ErrClockBeforeEpoch, err)
	}
	if claims.Expiry <= now {
		return Basic{}, ErrExpired
	}
	return Basic{claims: claims}, nil
}

// DerivePlayer requires level player with session_id, display_name and role present
func (h *Hierarchy) DerivePlayer(claims Claims) (Player, error) {
	basic, err := h.DeriveBasic(claims)
	if err != nil {
		return Player{}, err
	}
	if claims.Level != LevelPlayer {
		return Player{}, ErrWrongLevel
	}
	if claims.SessionID == nil {
		return Player{}, &MissingFieldError{Field: "session_id"}
	}
	if claims.DisplayName == nil {
		return Player{}, &MissingFieldError{Field: "display_name"}
	}
	if claims.Role == nil {
		return Player{}, &MissingFieldError{Field: "role"}
	}
	sid, err := model.ParseSessionID(*claims.SessionID)
	if err != nil {
		return Player{}, fmt.Errorf("%w: session_id: %w", ErrTierRejected, err)
	}

	p := Player{
		Basic:       basic,
		SessionID:   sid,
		DisplayName: *claims.DisplayName,
		Role:        *claims.Role,
		userID:      claims.UserID,
	}
	if claims.PlayerState != nil {
		p.PlayerState = *claims.PlayerState
	}
	return p, nil
}

// DeriveAdmin requires level admin
func (h *Hierarchy) DeriveAdmin(claims Claims) (Admin, error) {
	basic, err := h.DeriveBasic(claims)
	if err != nil {
		return Admin{}, err
	}
	if claims.Level != LevelAdmin {
		return Admin{}, ErrWrongLevel
	}
	return Admin{Basic: basic}, nil
}
