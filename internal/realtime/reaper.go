package realtime

import (
	"log/slog"

	"github.com/google/uuid"
)

// Reaper removes connections that can no longer be used
type Reaper struct {
	logger *slog.Logger
}

// NewReaper creates a Reaper
func NewReaper(logger *slog.Logger) *Reaper {
	return &Reaper{
		logger: logger.With(slog.String("component", "reaper")),
	}
}

// Reap probes every connection in reg and removes those that failed a write
// (listed in unwritable) or whose socket is no longer alive. Dead connections
// are collected first and removed in a single pass, then closed. It returns
// the removed connections.
func (r *Reaper) Reap(reg *Registry, unwritable map[uuid.UUID]struct{}) []*Connection {
	dead := make(map[uuid.UUID]struct{})
	reg.ForEach(func(c *Connection) {
		if _, failed := unwritable[c.ID]; failed || !c.alive() {
			dead[c.ID] = struct{}{}
		}
	})
	if len(dead) == 0 {
		return nil
	}

	removed := reg.RemoveIf(func(c *Connection) bool {
		_, ok := dead[c.ID]
		return ok
	})
	for _, c := range removed {
		if err := c.close(); err != nil {
			r.logger.Debug("error closing reaped connection",
				slog.String("connection_id", c.ID.String()),
				slog.Any("error", err))
		}
		r.logger.Info("connection reaped",
			slog.String("connection_id", c.ID.String()),
			slog.String("kind", c.Kind.String()),
			slog.String("session_id", c.SessionID.String()))
	}
	r.logger.Info("removed dead connections",
		slog.Int("removed", len(removed)),
		slog.Int("remaining", reg.Len()))
	return removed
}
