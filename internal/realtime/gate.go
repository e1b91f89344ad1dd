package realtime

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/mcoot/sessiongate/internal/model"
	"github.com/mcoot/sessiongate/internal/services/auth"
)

// Errors
var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrInvalidSession = errors.New("invalid session")
)

// Path tokens shorter than this are not considered credentials
const minPathTokenLength = 3

// Authenticator derives tier-specific credentials from raw tokens
type Authenticator interface {
	Player(token string) (auth.Player, error)
	Admin(token string) (auth.Admin, error)
}

// Acceptor takes ownership of admitted sockets
type Acceptor interface {
	Accept(adm Admission, sock Socket) error
}

// GateConfig holds configuration for the handshake gate
type GateConfig struct {
	// PathPrefix precedes the credential in upgrade paths, e.g. "/ws/"
	PathPrefix string
	// AllowedOrigins lists extra browser origins allowed to connect. Same
	// origin requests and requests without an Origin header are always allowed.
	AllowedOrigins []string
}

// Gate authenticates websocket upgrade requests and hands accepted sockets
// to the worker
type Gate struct {
	authn      Authenticator
	acceptor   Acceptor
	pathPrefix string
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewGate creates a Gate
func NewGate(authn Authenticator, acceptor Acceptor, cfg GateConfig, logger *slog.Logger) *Gate {
	g := &Gate{
		authn:      authn,
		acceptor:   acceptor,
		pathPrefix: cfg.PathPrefix,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.With(slog.String("component", "gate")),
	}
	if len(cfg.AllowedOrigins) > 0 {
		allowed := slices.Clone(cfg.AllowedOrigins)
		g.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || slices.Contains(allowed, origin) {
				return true
			}
			u, err := url.Parse(origin)
			return err == nil && strings.EqualFold(u.Host, r.Host)
		}
	}
	return g
}

// Admit finds a credential in r and decides what kind of connection it may
// open. Sources are tried in order: bearer header, cookie, then the upgrade
// path segment. For each source a player credential is tried before an admin
// one, and the first success wins.
//
// Rejection reasons are logged but the returned error is always
// ErrInvalidToken, or ErrInvalidSession when a correctly signed player
// credential named a malformed session.
func (g *Gate) Admit(r *http.Request) (Admission, error) {
	sources := auth.RequestTokens(r)
	if token, ok := g.pathToken(r); ok {
		sources = append(sources, auth.TokenSource{Name: auth.SourcePath, Token: token})
	}

	invalidSession := false
	for _, src := range sources {
		player, err := g.authn.Player(src.Token)
		if err == nil {
			uid, hasUID := player.UserID()
			adm := Admission{
				Kind:        KindPlayer,
				SessionID:   player.SessionID,
				DisplayName: player.DisplayName,
				Source:      src.Name,
			}
			if hasUID {
				adm.UserID = &uid
			}
			return adm, nil
		}
		if errors.Is(err, model.ErrInvalidSessionID) {
			invalidSession = true
		}
		g.logger.Debug("credential rejected",
			slog.String("source", src.Name),
			slog.String("tier", auth.TierPlayer.String()),
			slog.Any("error", err))

		if _, err := g.authn.Admin(src.Token); err == nil {
			return Admission{Kind: KindAdmin, Source: src.Name}, nil
		} else if !errors.Is(err, auth.ErrWrongLevel) {
			g.logger.Debug("credential rejected",
				slog.String("source", src.Name),
				slog.String("tier", auth.TierAdmin.String()),
				slog.Any("error", err))
		}
	}

	g.logger.Warn("handshake rejected",
		slog.String("remote_addr", r.RemoteAddr),
		slog.Int("candidates", len(sources)))
	if invalidSession {
		return Admission{}, ErrInvalidSession
	}
	return Admission{}, ErrInvalidToken
}

// pathToken returns the sole path segment after the gate's prefix
func (g *Gate) pathToken(r *http.Request) (string, bool) {
	rest, ok := strings.CutPrefix(r.URL.Path, g.pathPrefix)
	if !ok || strings.Contains(rest, "/") || len(rest) < minPathTokenLength {
		return "", false
	}
	return rest, true
}

// ServeHTTP upgrades authenticated requests and hands the socket to the worker
func (g *Gate) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	adm, err := g.Admit(r)
	if err != nil {
		if errors.Is(err, ErrInvalidSession) {
			http.Error(w, "invalid session", http.StatusBadRequest)
			return
		}
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already replied
		g.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	sock := NewSocket(conn)
	if err := g.acceptor.Accept(adm, sock); err != nil {
		g.logger.Error("worker refused connection", slog.Any("error", err))
		_ = sock.Close()
		return
	}
	g.logger.Info("websocket admitted",
		slog.String("kind", adm.Kind.String()),
		slog.String("session_id", adm.SessionID.String()),
		slog.String("source", adm.Source))
}
