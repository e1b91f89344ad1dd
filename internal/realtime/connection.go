package realtime

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/sessiongate/internal/model"
)

// Kind is what a connection was admitted as. It never changes after admission.
type Kind int

const (
	KindPlayer Kind = iota
	KindAdmin
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindAdmin:
		return "admin"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// State is a connection's lifecycle stage
type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Admission is the outcome of a successful handshake: who the socket belongs to
type Admission struct {
	Kind        Kind
	SessionID   model.SessionID
	DisplayName string
	UserID      *model.UserID
	// Source names where the accepted credential was found
	Source string
}

// Connection is a registered socket. Connections are owned by the worker;
// nothing else reads or writes them.
type Connection struct {
	ID          uuid.UUID
	Kind        Kind
	SessionID   model.SessionID
	DisplayName string
	OpenedAt    time.Time

	userID *model.UserID
	socket Socket
	state  State
}

func newConnection(adm Admission, sock Socket, now time.Time) *Connection {
	return &Connection{
		ID:          uuid.New(),
		Kind:        adm.Kind,
		SessionID:   adm.SessionID,
		DisplayName: adm.DisplayName,
		OpenedAt:    now,
		userID:      adm.UserID,
		socket:      sock,
		state:       StateConnecting,
	}
}

// State returns the connection's lifecycle stage
func (c *Connection) State() State {
	return c.state
}

// UserID returns the player's user id, if the credential carried one
func (c *Connection) UserID() (model.UserID, bool) {
	if c.userID == nil {
		return 0, false
	}
	return *c.userID, true
}

// Matches reports whether a notification for sid should reach this connection.
// Admin connections match every session.
func (c *Connection) Matches(sid model.SessionID) bool {
	return c.Kind == KindAdmin || c.SessionID == sid
}

func (c *Connection) isUser(sid model.SessionID, uid model.UserID) bool {
	if c.Kind != KindPlayer || c.SessionID != sid {
		return false
	}
	own, ok := c.UserID()
	return ok && own == uid
}

func (c *Connection) open() bool {
	if c.state != StateConnecting {
		return false
	}
	c.state = StateOpen
	return true
}

func (c *Connection) send(msg string) error {
	if c.state != StateOpen {
		return ErrSocketClosed
	}
	return c.socket.WriteText(msg)
}

func (c *Connection) alive() bool {
	return c.state == StateOpen && c.socket.Alive()
}

func (c *Connection) close() error {
	if c.state == StateClosed {
		return nil
	}
	c.state = StateClosing
	err := c.socket.Close()
	c.state = StateClosed
	return err
}
