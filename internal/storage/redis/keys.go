package redis

import (
	"fmt"

	"github.com/mcoot/sessiongate/internal/model"
)

// Key prefix for all sessiongate data
const keyPrefix = "sessiongate"

// sessionKey returns the Redis key for a Session
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// sessionsIndexKey returns the Redis key for the ZSET of session ids scored by creation time
func sessionsIndexKey() string {
	return fmt.Sprintf("%s:idx:sessions", keyPrefix)
}

// activeSessionsIndexKey returns the Redis key for the SET of active session ids
func activeSessionsIndexKey() string {
	return fmt.Sprintf("%s:idx:active_sessions", keyPrefix)
}

// playersKey returns the Redis key for the LIST of players in a session, in join order
func playersKey(sid model.SessionID) string {
	return fmt.Sprintf("%s:players:%s", keyPrefix, sid)
}

// playerNamesKey returns the Redis key for the SET of display names taken in a session
func playerNamesKey(sid model.SessionID) string {
	return fmt.Sprintf("%s:idx:player_names:%s", keyPrefix, sid)
}

// userIDSequenceKey returns the Redis key for the user id counter
func userIDSequenceKey() string {
	return fmt.Sprintf("%s:seq:user_id", keyPrefix)
}
