package model

import "time"

// UserID identifies a player within the persistence layer
type UserID uint32

// PlayerStateWaiting is the state every player starts in after joining
const PlayerStateWaiting = "waiting"

// Player is a participant who joined a session under a display name
type Player struct {
	UserID    UserID    `json:"user_id"`
	SessionID SessionID `json:"session_id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	State     string    `json:"state"`
	JoinedAt  time.Time `json:"joined_at"`
}
