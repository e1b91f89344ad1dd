package model

import (
	"time"
)

const (
	// SessionIDLength is the exact length of every session identifier
	SessionIDLength = 8
	// SessionIDAlphabet is the set of characters a session identifier may contain
	SessionIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// SessionID identifies a game session. The zero value is not a valid identifier;
// every SessionID in circulation was produced by ParseSessionID.
type SessionID struct {
	code [SessionIDLength]byte
}

// ParseSessionID validates s and returns it as a SessionID
func ParseSessionID(s string) (SessionID, error) {
	var sid SessionID
	if len(s) != SessionIDLength {
		return sid, ErrInvalidSessionID
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9') && !(c >= 'A' && c <= 'Z') {
			return SessionID{}, ErrInvalidSessionID
		}
		sid.code[i] = c
	}
	return sid, nil
}

// MustParseSessionID is like ParseSessionID but panics on invalid input.
// Intended for constants and tests.
func MustParseSessionID(s string) SessionID {
	sid, err := ParseSessionID(s)
	if err != nil {
		panic("invalid session id " + s)
	}
	return sid
}

// String returns the raw 8 character code, or "" for the zero value
func (s SessionID) String() string {
	if s.IsZero() {
		return ""
	}
	return string(s.code[:])
}

// IsZero reports whether s is the zero value
func (s SessionID) IsZero() bool {
	return s == SessionID{}
}

// MarshalText implements encoding.TextMarshaler
func (s SessionID) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, validating the input
func (s *SessionID) UnmarshalText(text []byte) error {
	sid, err := ParseSessionID(string(text))
	if err != nil {
		return err
	}
	*s = sid
	return nil
}

// Session is a game session players can join
type Session struct {
	ID        SessionID `json:"id"`
	Active    bool      `json:"active"`
	Settings  string    `json:"settings"`
	CreatedAt time.Time `json:"created_at"`
}
