package realtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/sessiongate/internal/model"
)

// Notification is an event for the worker to route to connections.
// Notifications are values and are never modified after sending.
type Notification interface {
	notification()
}

// PlayerListChanged tells every connection in a session that its player list changed
type PlayerListChanged struct {
	SessionID model.SessionID
}

// DirectMessage is delivered to the player connections of one user in a session
type DirectMessage struct {
	SessionID model.SessionID
	UserID    model.UserID
	Payload   string
}

// SessionBroadcast is delivered verbatim to every connection in a session
type SessionBroadcast struct {
	SessionID model.SessionID
	Payload   string
}

// LivenessQuery asks the worker to write the live connection count into Result
type LivenessQuery struct {
	Result *CountSlot
}

func (PlayerListChanged) notification() {}
func (DirectMessage) notification()     {}
func (SessionBroadcast) notification()  {}
func (LivenessQuery) notification()     {}

// PlayerListMessage is the text sent for PlayerListChanged
const PlayerListMessage = "update.playerlist"

// Bus carries notifications from any goroutine to the worker. The queue is
// unbounded, so Send only ever waits for the lock.
type Bus struct {
	mu     sync.Mutex
	queue  []Notification
	closed bool
	logger *slog.Logger
}

// NewBus creates an open Bus
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		logger: logger.With(slog.String("component", "bus")),
	}
}

// Send enqueues n. After Close the notification is logged and dropped.
func (b *Bus) Send(n Notification) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		b.logger.Error("failed to send notification, bus closed",
			slog.String("notification", notificationName(n)))
		return
	}
	b.queue = append(b.queue, n)
	b.mu.Unlock()
}

// Drain removes and returns everything queued, in enqueue order. It never waits.
func (b *Bus) Drain() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		return nil
	}
	drained := b.queue
	b.queue = nil
	return drained
}

// Pending returns the number of queued notifications
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Close stops the bus accepting notifications and discards anything queued
func (b *Bus) Close() {
	b.mu.Lock()
	dropped := len(b.queue)
	b.closed = true
	b.queue = nil
	b.mu.Unlock()
	if dropped > 0 {
		b.logger.Warn("bus closed with undelivered notifications", slog.Int("dropped", dropped))
	}
}

// ConnectionCount asks the worker for the live connection count, polling up
// to attempts times at interval. It reports false, with a count of zero, if
// the worker did not answer in time or ctx ended first.
func (b *Bus) ConnectionCount(ctx context.Context, attempts int, interval time.Duration) (int, bool) {
	slot := NewCountSlot()
	b.Send(LivenessQuery{Result: slot})
	n, ok := slot.Await(ctx, attempts, interval)
	if !ok {
		b.logger.Warn("liveness query timed out", slog.Int("attempts", attempts))
	}
	return n, ok
}

func notificationName(n Notification) string {
	switch n.(type) {
	case PlayerListChanged:
		return "player_list_changed"
	case DirectMessage:
		return "direct_message"
	case SessionBroadcast:
		return "session_broadcast"
	case LivenessQuery:
		return "liveness_query"
	default:
		return "unknown"
	}
}

// CountSlot is a write-once result cell for a LivenessQuery
type CountSlot struct {
	once sync.Once
	done chan struct{}
	n    int
}

// NewCountSlot creates an empty CountSlot
func NewCountSlot() *CountSlot {
	return &CountSlot{done: make(chan struct{})}
}

// Fill stores n. Only the first call has any effect; it reports whether this
// call was the one that filled the slot.
func (s *CountSlot) Fill(n int) bool {
	filled := false
	s.once.Do(func() {
		s.n = n
		close(s.done)
		filled = true
	})
	return filled
}

// Value returns the stored count without waiting
func (s *CountSlot) Value() (int, bool) {
	select {
	case <-s.done:
		return s.n, true
	default:
		return 0, false
	}
}

// Await waits for the slot to be filled, giving up after attempts intervals.
// On timeout it returns 0 and false.
func (s *CountSlot) Await(ctx context.Context, attempts int, interval time.Duration) (int, bool) {
	if n, ok := s.Value(); ok {
		return n, true
	}
	timer := time.NewTimer(interval)
	defer timer.Stop()
	for i := 0; i < attempts; i++ {
		select {
		case <-s.done:
			return s.n, true
		case <-ctx.Done():
			return 0, false
		case <-timer.C:
			timer.Reset(interval)
		}
	}
	return s.Value()
}
