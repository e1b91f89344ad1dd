package realtime

import (
	"github.com/mcoot/sessiongate/internal/model"
)

// Registry holds the live connections, indexed by session. Admin connections
// are kept apart and match every session.
//
// Registry is not safe for concurrent use. Only the worker that owns it may
// call its methods.
type Registry struct {
	sessions map[model.SessionID][]*Connection
	admins   []*Connection
	size     int
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[model.SessionID][]*Connection),
	}
}

// Insert adds c to the registry
func (r *Registry) Insert(c *Connection) {
	if c.Kind == KindAdmin {
		r.admins = append(r.admins, c)
	} else {
		r.sessions[c.SessionID] = append(r.sessions[c.SessionID], c)
	}
	r.size++
}

// RemoveIf removes every connection for which pred returns true and returns
// the removed connections. Surviving connections keep their relative order.
func (r *Registry) RemoveIf(pred func(*Connection) bool) []*Connection {
	var removed []*Connection

	for sid, conns := range r.sessions {
		kept := conns[:0]
		for _, c := range conns {
			if pred(c) {
				removed = append(removed, c)
			} else {
				kept = append(kept, c)
			}
		}
		clear(conns[len(kept):])
		if len(kept) == 0 {
			delete(r.sessions, sid)
		} else {
			r.sessions[sid] = kept
		}
	}

	kept := r.admins[:0]
	for _, c := range r.admins {
		if pred(c) {
			removed = append(removed, c)
		} else {
			kept = append(kept, c)
		}
	}
	clear(r.admins[len(kept):])
	r.admins = kept

	r.size -= len(removed)
	return removed
}

// ForEachMatching calls fn for every connection matching sid: the players of
// that session, then every admin.
func (r *Registry) ForEachMatching(sid model.SessionID, fn func(*Connection)) {
	for _, c := range r.sessions[sid] {
		fn(c)
	}
	for _, c := range r.admins {
		fn(c)
	}
}

// ForEach calls fn for every registered connection
func (r *Registry) ForEach(fn func(*Connection)) {
	for _, conns := range r.sessions {
		for _, c := range conns {
			fn(c)
		}
	}
	for _, c := range r.admins {
		fn(c)
	}
}

// Len returns the number of registered connections
func (r *Registry) Len() int {
	return r.size
}

// SessionLen returns the number of player connections in sid
func (r *Registry) SessionLen(sid model.SessionID) int {
	return len(r.sessions[sid])
}
