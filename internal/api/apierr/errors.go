package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/sessiongate/internal/model"
	"github.com/mcoot/sessiongate/internal/services/auth"
	"github.com/mcoot/sessiongate/internal/services/session"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidSession     = "INVALID_SESSION"
	CodeSessionNotFound    = "SESSION_NOT_FOUND"
	CodeSessionInactive    = "SESSION_INACTIVE"
	CodeDuplicateName      = "DUPLICATE_NAME"
	CodeInvalidName        = "INVALID_NAME"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError. Credential failures of any
// kind collapse to one generic response.
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrInvalidSessionID):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidSession, "Invalid session"}}
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSessionNotFound, "Session doesn't exist"}}
	case errors.Is(err, model.ErrSessionInactive):
		return &httpError{http.StatusConflict, APIError{CodeSessionInactive, "Session inactive"}}
	case errors.Is(err, model.ErrDuplicateName):
		return &httpError{http.StatusConflict, APIError{CodeDuplicateName, "A user with the same name exists"}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}

	case errors.Is(err, session.ErrInvalidName):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidName, "Invalid display name"}}
	case errors.Is(err, session.ErrInvalidPassword):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid password"}}

	case errors.Is(err, auth.ErrMalformedToken), errors.Is(err, auth.ErrTierRejected):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid token"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid token"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
