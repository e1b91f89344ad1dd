package realtime

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum message size accepted from the peer. Clients have nothing to say
	// beyond control frames.
	maxMessageSize = 512
)

// ErrSocketClosed is returned when writing to a socket that has already closed
var ErrSocketClosed = errors.New("socket closed")

// Socket is the worker's handle on a duplex connection
type Socket interface {
	// WriteText sends a single text message
	WriteText(msg string) error
	// Alive reports, without blocking, whether the socket can still be used
	Alive() bool
	// Close closes the socket. Calling it more than once is harmless.
	Close() error
}

// wsSocket adapts a gorilla websocket connection to Socket.
//
// gorilla connections do not support a non-blocking read, and a timed-out
// read leaves the connection unusable, so a dedicated goroutine does the
// blocking reads and only records that the peer went away.
type wsSocket struct {
	conn      *websocket.Conn
	closed    atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
}

// NewSocket wraps an upgraded websocket connection
func NewSocket(conn *websocket.Conn) Socket {
	s := &wsSocket{
		conn: conn,
		done: make(chan struct{}),
	}
	conn.SetReadLimit(maxMessageSize)
	go s.readLoop()
	return s
}

func (s *wsSocket) readLoop() {
	defer close(s.done)
	for {
		// The default close handler replies to close frames, after which
		// ReadMessage returns a *websocket.CloseError.
		if _, _, err := s.conn.ReadMessage(); err != nil {
			s.closed.Store(true)
			return
		}
	}
}

func (s *wsSocket) WriteText(msg string) error {
	if s.closed.Load() {
		return ErrSocketClosed
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		s.closed.Store(true)
		return err
	}
	return nil
}

func (s *wsSocket) Alive() bool {
	return !s.closed.Load()
}

func (s *wsSocket) Close() error {
	var err error
	s.closeOnce.Do(func() {
		wasClosed := s.closed.Swap(true)
		if !wasClosed {
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "")
			_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		}
		err = s.conn.Close()
	})
	return err
}
