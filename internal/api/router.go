package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/sessiongate/internal/api/handler"
	"github.com/mcoot/sessiongate/internal/api/middleware"
	"github.com/mcoot/sessiongate/internal/services/auth"
	"github.com/mcoot/sessiongate/internal/services/session"
)

// WebsocketPath is where clients open their realtime connection. The
// credential may follow as a single extra path segment.
const WebsocketPath = "/ws"

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	AuthService       *auth.Service
	SessionController *session.Controller
	// Gate serves websocket upgrades. Upgrade routes are omitted when nil.
	Gate http.Handler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.SessionController)
	sessionHandler := handler.NewSessionHandler(cfg.SessionController)

	// Create middleware
	requireBasic := middleware.RequireBasic(cfg.AuthService, cfg.Logger)
	requirePlayer := middleware.RequirePlayer(cfg.AuthService, cfg.Logger)
	requireAdmin := middleware.RequireAdmin(cfg.AuthService, cfg.Logger)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Credential issuing (no auth required)
	api.HandleFunc("/auth/connect/client", authHandler.ConnectClient).Methods(http.MethodPost)
	api.HandleFunc("/auth/connect/ctrl", authHandler.ConnectCtrl).Methods(http.MethodPost)

	// Any valid credential
	authStatus := api.PathPrefix("/auth/status").Subrouter()
	authStatus.Use(requireBasic)
	authStatus.HandleFunc("", authHandler.Status).Methods(http.MethodGet)

	// Player routes. Registered before the admin subrouter so that
	// "playerlist" is not taken for a session id.
	playerRoutes := api.PathPrefix("/sessions/playerlist").Subrouter()
	playerRoutes.Use(requirePlayer)
	playerRoutes.HandleFunc("", sessionHandler.PlayerList).Methods(http.MethodGet)

	// Admin session routes
	sessions := api.PathPrefix("/sessions").Subrouter()
	sessions.Use(requireAdmin)
	sessions.HandleFunc("", sessionHandler.Create).Methods(http.MethodPost)
	sessions.HandleFunc("", sessionHandler.List).Methods(http.MethodGet)
	sessions.HandleFunc("/{sid}", sessionHandler.Update).Methods(http.MethodPatch)
	sessions.HandleFunc("/{sid}/players", sessionHandler.Players).Methods(http.MethodGet)
	sessions.HandleFunc("/{sid}/broadcast", sessionHandler.Broadcast).Methods(http.MethodPost)
	sessions.HandleFunc("/{sid}/players/{uid}/message", sessionHandler.Message).Methods(http.MethodPost)

	// Public endpoints
	api.HandleFunc("/stats", sessionHandler.Stats).Methods(http.MethodGet)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Websocket upgrades
	if cfg.Gate != nil {
		ws := r.PathPrefix(WebsocketPath).Subrouter()
		ws.Use(recoveryMiddleware)
		ws.Use(loggingMiddleware)
		ws.Handle("", cfg.Gate).Methods(http.MethodGet)
		ws.Handle("/{token}", cfg.Gate).Methods(http.MethodGet)
	}

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
