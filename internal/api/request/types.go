package request

// ConnectClientRequest is the request body for joining a session as a player
type ConnectClientRequest struct {
	Username  string `json:"username"`
	SessionID string `json:"session_id"`
}

// ConnectCtrlRequest is the request body for administrator login
type ConnectCtrlRequest struct {
	Password string `json:"password"`
}

// CreateSessionRequest is the request body for creating a session
type CreateSessionRequest struct {
	Settings string `json:"settings,omitempty"`
}

// UpdateSessionRequest is the request body for opening or closing a session
type UpdateSessionRequest struct {
	Active *bool `json:"active"`
}

// MessageRequest is the request body for broadcasts and direct messages
type MessageRequest struct {
	Payload string `json:"payload"`
}
