package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/sessiongate/internal/api/middleware"
	"github.com/mcoot/sessiongate/internal/api/request"
	"github.com/mcoot/sessiongate/internal/api/response"
	"github.com/mcoot/sessiongate/internal/model"
	"github.com/mcoot/sessiongate/internal/services/session"
)

// SessionHandler handles session endpoints
type SessionHandler struct {
	sessionController *session.Controller
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionController *session.Controller) *SessionHandler {
	return &SessionHandler{
		sessionController: sessionController,
	}
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, NewInvalidRequestError("invalid request body"))
			return
		}
	}

	s, err := h.sessionController.CreateSession(r.Context(), req.Settings)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SessionFromModel(s, 0))
}

// List handles GET /api/v1/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.sessionController.Sessions(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionList{
		Sessions: response.SessionsFromSummaries(summaries),
	})
}

// Update handles PATCH /api/v1/sessions/{sid}
func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionIDFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.UpdateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Active == nil {
		WriteError(w, NewInvalidRequestError("active is required"))
		return
	}

	s, err := h.sessionController.SetActive(r.Context(), sid, *req.Active)
	if err != nil {
		WriteError(w, err)
		return
	}

	players, err := h.sessionController.Players(r.Context(), sid)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(s, len(players)))
}

// Players handles GET /api/v1/sessions/{sid}/players
func (h *SessionHandler) Players(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionIDFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.writePlayers(w, r, sid)
}

// PlayerList handles GET /api/v1/sessions/playerlist, listing the players
// of the caller's own session
func (h *SessionHandler) PlayerList(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	h.writePlayers(w, r, player.SessionID)
}

func (h *SessionHandler) writePlayers(w http.ResponseWriter, r *http.Request, sid model.SessionID) {
	players, err := h.sessionController.Players(r.Context(), sid)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerList{
		SessionID: sid,
		Players:   response.PlayersFromModel(players),
	})
}

// Broadcast handles POST /api/v1/sessions/{sid}/broadcast
func (h *SessionHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionIDFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if err := h.sessionController.Broadcast(r.Context(), sid, req.Payload); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Message handles POST /api/v1/sessions/{sid}/players/{uid}/message
func (h *SessionHandler) Message(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionIDFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	uid, err := strconv.ParseUint(mux.Vars(r)["uid"], 10, 32)
	if err != nil {
		WriteError(w, NewInvalidRequestError("invalid user id"))
		return
	}

	var req request.MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if err := h.sessionController.Message(r.Context(), sid, model.UserID(uid), req.Payload); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Stats handles GET /api/v1/stats
func (h *SessionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.sessionController.Stats(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StatsFromService(stats))
}

// sessionIDFromPath parses the {sid} path variable
func sessionIDFromPath(r *http.Request) (model.SessionID, error) {
	return model.ParseSessionID(mux.Vars(r)["sid"])
}
