package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mcoot/sessiongate/internal/api/apierr"
	"github.com/mcoot/sessiongate/internal/services/auth"
)

type contextKey string

const credentialContextKey contextKey = "credential"

// Authenticator derives tier-specific credentials from raw tokens
type Authenticator interface {
	Basic(token string) (auth.Basic, error)
	Player(token string) (auth.Player, error)
	Admin(token string) (auth.Admin, error)
}

// RequireBasic admits requests carrying any unexpired credential
func RequireBasic(authn Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return requireTier(auth.TierBasic, logger, func(token string) (auth.Credential, error) {
		return authn.Basic(token)
	})
}

// RequirePlayer admits requests carrying a player credential
func RequirePlayer(authn Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return requireTier(auth.TierPlayer, logger, func(token string) (auth.Credential, error) {
		return authn.Player(token)
	})
}

// RequireAdmin admits requests carrying an admin credential
func RequireAdmin(authn Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return requireTier(auth.TierAdmin, logger, func(token string) (auth.Credential, error) {
		return authn.Admin(token)
	})
}

// requireTier tries each token the request carries, header before cookie, and
// stores the first credential that derives at tier in the request context.
// Every failure is reported to the client as the same unauthorized error.
func requireTier(tier auth.Tier, logger *slog.Logger, derive func(string) (auth.Credential, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, src := range auth.RequestTokens(r) {
				cred, err := derive(src.Token)
				if err != nil {
					logger.Debug("credential rejected",
						slog.String("source", src.Name),
						slog.String("tier", tier.String()),
						slog.Any("error", err))
					continue
				}
				ctx := context.WithValue(r.Context(), credentialContextKey, cred)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			apierr.WriteError(w, apierr.NewUnauthorizedError())
		})
	}
}

// GetCredential returns the authenticated credential from the request context
func GetCredential(ctx context.Context) auth.Credential {
	cred, _ := ctx.Value(credentialContextKey).(auth.Credential)
	return cred
}

// MustGetBasic returns the credential's basic view or panics
func MustGetBasic(ctx context.Context) auth.Basic {
	switch cred := GetCredential(ctx).(type) {
	case auth.Basic:
		return cred
	case auth.Player:
		return cred.Basic
	case auth.Admin:
		return cred.Basic
	}
	panic("no credential in context - auth middleware not applied?")
}

// MustGetPlayer returns the authenticated player credential or panics
func MustGetPlayer(ctx context.Context) auth.Player {
	player, ok := GetCredential(ctx).(auth.Player)
	if !ok {
		panic("no player credential in context - RequirePlayer not applied?")
	}
	return player
}
