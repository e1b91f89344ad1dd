package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/sessiongate/internal/dependencies/mocks"
	"github.com/mcoot/sessiongate/internal/model"
)

var tierTestNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestHierarchy() *Hierarchy {
	return NewHierarchy(mocks.NewMockClock(tierTestNow))
}

func future() uint64 {
	return uint64(tierTestNow.Unix()) + 14400
}

func playerClaims() Claims {
	return Claims{
		Expiry:      future(),
		Level:       LevelPlayer,
		SessionID:   Ptr("1234ABCD"),
		DisplayName: Ptr("alice"),
		Role:        Ptr("scout"),
	}
}

func TestDeriveBasicAcceptsAnyLevel(t *testing.T) {
	h := newTestHierarchy()
	for _, level := range []Level{LevelBasic, LevelPlayer, LevelAdmin} {
		b, err := h.DeriveBasic(Claims{Expiry: future(), Level: level})
		require.NoError(t, err, level)
		assert.Equal(t, level, b.Level())
		assert.Equal(t, TierBasic, b.Tier())
	}
}

func TestDeriveBasicExpiryIsStrict(t *testing.T) {
	h := newTestHierarchy()
	now := uint64(tierTestNow.Unix())

	_, err := h.DeriveBasic(Claims{Expiry: now, Level: LevelBasic})
	assert.ErrorIs(t, err, ErrExpired)

	_, err = h.DeriveBasic(Claims{Expiry: now + 1, Level: LevelBasic})
	assert.NoError(t, err)
}

func TestPastExpiryFailsEveryTier(t *testing.T) {
	h := newTestHierarchy()
	now := uint64(tierTestNow.Unix())

	fieldSets := []Claims{
		{},
		{SessionID: Ptr("1234ABCD")},
		{SessionID: Ptr("1234ABCD"), DisplayName: Ptr("alice"), Role: Ptr("scout")},
		{SessionID: Ptr("bad"), DisplayName: Ptr("alice"), Role: Ptr("")},
	}
	expiries := []uint64{0, 1, now - 14400, now - 1, now}

	for _, level := range []Level{LevelBasic, LevelPlayer, LevelAdmin} {
		for _, fields := range fieldSets {
			for _, exp := range expiries {
				c := fields
				c.Level = level
				c.Expiry = exp
				for _, tier := range []Tier{TierBasic, TierPlayer, TierAdmin} {
					_, err := h.Derive(c, tier)
					assert.ErrorIs(t, err, ErrExpired, "level=%s exp=%d tier=%s", level, exp, tier)
				}
			}
		}
	}
}

func TestDerivePlayerRoundTripsFields(t *testing.T) {
	h := newTestHierarchy()
	c := playerClaims()
	c.UserID = Ptr(model.UserID(3))
	c.PlayerState = Ptr("ready")

	p, err := h.DerivePlayer(c)
	require.NoError(t, err)
	assert.Equal(t, "1234ABCD", p.SessionID.String())
	assert.Equal(t, "alice", p.DisplayName)
	assert.Equal(t, "scout", p.Role)
	assert.Equal(t, "ready", p.PlayerState)
	uid, ok := p.UserID()
	assert.True(t, ok)
	assert.Equal(t, model.UserID(3), uid)
	assert.Equal(t, c, p.Claims())
	assert.Equal(t, TierPlayer, p.Tier())
}

func TestDerivePlayerWithoutUserID(t *testing.T) {
	p, err := newTestHierarchy().DerivePlayer(playerClaims())
	require.NoError(t, err)
	_, ok := p.UserID()
	assert.False(t, ok)
}

func TestDerivePlayerAcceptsEmptyRole(t *testing.T) {
	c := playerClaims()
	c.Role = Ptr("")
	p, err := newTestHierarchy().DerivePlayer(c)
	require.NoError(t, err)
	assert.Equal(t, "", p.Role)
}

func TestDerivePlayerRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Claims)
		wantErr error
		field   string
	}{
		{name: "admin level", mutate: func(c *Claims) { c.Level = LevelAdmin }, wantErr: ErrWrongLevel},
		{name: "basic level", mutate: func(c *Claims) { c.Level = LevelBasic }, wantErr: ErrWrongLevel},
		{name: "no session id", mutate: func(c *Claims) { c.SessionID = nil }, wantErr: ErrMissingField, field: "session_id"},
		{name: "no display name", mutate: func(c *Claims) { c.DisplayName = nil }, wantErr: ErrMissingField, field: "display_name"},
		{name: "no role", mutate: func(c *Claims) { c.Role = nil }, wantErr: ErrMissingField, field: "role"},
		{name: "bad session id", mutate: func(c *Claims) { c.SessionID = Ptr("1234abcd") }, wantErr: model.ErrInvalidSessionID},
	}

	h := newTestHierarchy()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := playerClaims()
			tt.mutate(&c)
			_, err := h.DerivePlayer(c)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrTierRejected)
			if tt.field != "" {
				var mf *MissingFieldError
				require.ErrorAs(t, err, &mf)
				assert.Equal(t, tt.field, mf.Field)
			}
		})
	}
}

func TestDeriveAdmin(t *testing.T) {
	h := newTestHierarchy()

	a, err := h.DeriveAdmin(Claims{Expiry: future(), Level: LevelAdmin})
	require.NoError(t, err)
	assert.Equal(t, TierAdmin, a.Tier())

	_, err = h.DeriveAdmin(playerClaims())
	assert.ErrorIs(t, err, ErrWrongLevel)

	_, err = h.DeriveAdmin(Claims{Expiry: future(), Level: LevelBasic})
	assert.ErrorIs(t, err, ErrWrongLevel)
}

func TestDeriveUnknownTier(t *testing.T) {
	_, err := newTestHierarchy().Derive(playerClaims(), Tier(42))
	assert.Error(t, err)
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "basic", TierBasic.String())
	assert.Equal(t, "player", TierPlayer.String())
	assert.Equal(t, "admin", TierAdmin.String())
	assert.Equal(t, "tier(9)", Tier(9).String())
}
