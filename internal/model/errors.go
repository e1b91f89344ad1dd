package model

import "errors"

// Common errors used across the application
var (
	// Session errors
	ErrInvalidSessionID = errors.New("invalid session id")
	ErrSessionNotFound  = errors.New("session doesn't exist")
	ErrSessionInactive  = errors.New("session inactive")
	ErrSessionExists    = errors.New("session already exists")

	// Player errors
	ErrDuplicateName  = errors.New("a user with the same name exists")
	ErrPlayerNotFound = errors.New("player not found")
)
