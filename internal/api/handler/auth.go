package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/sessiongate/internal/api/middleware"
	"github.com/mcoot/sessiongate/internal/api/request"
	"github.com/mcoot/sessiongate/internal/api/response"
	"github.com/mcoot/sessiongate/internal/services/session"
)

// AuthHandler handles credential issuing endpoints
type AuthHandler struct {
	sessionController *session.Controller
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessionController *session.Controller) *AuthHandler {
	return &AuthHandler{
		sessionController: sessionController,
	}
}

// ConnectClient handles POST /api/v1/auth/connect/client
func (h *AuthHandler) ConnectClient(w http.ResponseWriter, r *http.Request) {
	var req request.ConnectClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}
	if req.SessionID == "" {
		WriteError(w, NewInvalidRequestError("session_id is required"))
		return
	}

	result, err := h.sessionController.Join(r.Context(), req.SessionID, req.Username)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ConnectClientResponse{
		Token:  result.Token,
		UserID: result.Player.UserID,
	})
}

// ConnectCtrl handles POST /api/v1/auth/connect/ctrl
func (h *AuthHandler) ConnectCtrl(w http.ResponseWriter, r *http.Request) {
	var req request.ConnectCtrlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	token, err := h.sessionController.AdminLogin(req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ConnectCtrlResponse{Token: token})
}

// Status handles GET /api/v1/auth/status
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	basic := middleware.MustGetBasic(r.Context())
	response.JSON(w, http.StatusOK, response.AuthStatusFromBasic(basic))
}
