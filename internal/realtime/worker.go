package realtime

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/sessiongate/internal/dependencies/clock"
)

// Errors
var (
	ErrAcceptQueueFull = errors.New("accept queue full")
	ErrWorkerStopped   = errors.New("worker stopped")
)

// Config holds configuration for the worker
type Config struct {
	// TickInterval is how long the worker sleeps after a tick with nothing to do
	TickInterval time.Duration
	// AcceptBacklog is how many admitted sockets may wait for the next tick
	AcceptBacklog int
}

// DefaultConfig returns default worker configuration
func DefaultConfig() Config {
	return Config{
		TickInterval:  5 * time.Millisecond,
		AcceptBacklog: 64,
	}
}

type pendingAccept struct {
	admission Admission
	socket    Socket
}

// Worker owns the connection registry. It accepts admitted sockets, drains
// the bus, delivers notifications and reaps dead connections, all from the
// goroutine running Run.
type Worker struct {
	registry     *Registry
	bus          *Bus
	reaper       *Reaper
	clock        clock.Clock
	acceptMu     sync.Mutex // guards stopped and sends on accepts
	accepts      chan pendingAccept
	stopped      bool
	tickInterval time.Duration
	unwritable   map[uuid.UUID]struct{}
	logger       *slog.Logger
}

// NewWorker creates a Worker consuming bus
func NewWorker(bus *Bus, clk clock.Clock, cfg Config, logger *slog.Logger) *Worker {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultConfig().TickInterval
	}
	if cfg.AcceptBacklog <= 0 {
		cfg.AcceptBacklog = DefaultConfig().AcceptBacklog
	}
	return &Worker{
		registry:     NewRegistry(),
		bus:          bus,
		reaper:       NewReaper(logger),
		clock:        clk,
		accepts:      make(chan pendingAccept, cfg.AcceptBacklog),
		tickInterval: cfg.TickInterval,
		unwritable:   make(map[uuid.UUID]struct{}),
		logger:       logger.With(slog.String("component", "worker")),
	}
}

// Accept hands an admitted socket to the worker. It never blocks; the socket
// is registered on the next tick. On error the caller still owns the socket.
func (w *Worker) Accept(adm Admission, sock Socket) error {
	w.acceptMu.Lock()
	defer w.acceptMu.Unlock()
	if w.stopped {
		return ErrWorkerStopped
	}
	select {
	case w.accepts <- pendingAccept{admission: adm, socket: sock}:
		return nil
	default:
		return ErrAcceptQueueFull
	}
}

// Run ticks until ctx is cancelled, then closes every connection and returns
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("worker started", slog.Duration("tick_interval", w.tickInterval))
	timer := time.NewTimer(w.tickInterval)
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			w.shutdown()
			return
		}
		if w.Tick() {
			continue
		}
		timer.Reset(w.tickInterval)
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
	}
}

// Tick runs one iteration of the worker loop: register pending sockets,
// deliver queued notifications, then reap. It reports whether there was any
// new input.
func (w *Worker) Tick() bool {
	accepted := w.acceptPending()
	notes := w.bus.Drain()
	for _, n := range notes {
		w.deliver(n)
	}
	w.reaper.Reap(w.registry, w.unwritable)
	clear(w.unwritable)
	return accepted > 0 || len(notes) > 0
}

// Len returns the number of registered connections. Like every registry
// access it must only be called from the worker's goroutine, or while the
// worker is not running.
func (w *Worker) Len() int {
	return w.registry.Len()
}

func (w *Worker) acceptPending() int {
	accepted := 0
	for {
		select {
		case p := <-w.accepts:
			c := newConnection(p.admission, p.socket, w.clock.Now())
			c.open()
			w.registry.Insert(c)
			accepted++
			w.logger.Info("connection registered",
				slog.String("connection_id", c.ID.String()),
				slog.String("kind", c.Kind.String()),
				slog.String("session_id", c.SessionID.String()),
				slog.String("source", p.admission.Source),
				slog.Int("total", w.registry.Len()))
		default:
			return accepted
		}
	}
}

func (w *Worker) deliver(n Notification) {
	switch n := n.(type) {
	case PlayerListChanged:
		w.registry.ForEachMatching(n.SessionID, func(c *Connection) {
			w.write(c, PlayerListMessage)
		})
	case SessionBroadcast:
		w.registry.ForEachMatching(n.SessionID, func(c *Connection) {
			w.write(c, n.Payload)
		})
	case DirectMessage:
		delivered := 0
		w.registry.ForEachMatching(n.SessionID, func(c *Connection) {
			if c.isUser(n.SessionID, n.UserID) {
				w.write(c, n.Payload)
				delivered++
			}
		})
		if delivered == 0 {
			w.logger.Debug("direct message had no recipient",
				slog.String("session_id", n.SessionID.String()),
				slog.Int("user_id", int(n.UserID)))
		}
	case LivenessQuery:
		if n.Result == nil {
			return
		}
		n.Result.Fill(w.registry.Len())
		w.logger.Debug("answered liveness query", slog.Int("connections", w.registry.Len()))
	default:
		w.logger.Warn("unknown notification type", slog.String("notification", notificationName(n)))
	}
}

// write sends msg on c. A failure marks c for reaping at the end of the tick
// and does not interrupt delivery to other connections.
func (w *Worker) write(c *Connection, msg string) {
	if err := c.send(msg); err != nil {
		w.unwritable[c.ID] = struct{}{}
		w.logger.Debug("write failed, marking connection for reaping",
			slog.String("connection_id", c.ID.String()),
			slog.Any("error", err))
	}
}

func (w *Worker) shutdown() {
	w.logger.Info("worker stopping, closing all connections", slog.Int("connections", w.registry.Len()))
	w.acceptMu.Lock()
	w.stopped = true
	w.acceptMu.Unlock()
	w.bus.Close()

drain:
	for {
		select {
		case p := <-w.accepts:
			_ = p.socket.Close()
		default:
			break drain
		}
	}

	removed := w.registry.RemoveIf(func(*Connection) bool { return true })
	for _, c := range removed {
		_ = c.close()
	}
	w.logger.Info("worker stopped", slog.Int("closed", len(removed)))
}
