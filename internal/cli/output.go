package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case JoinResult:
		o.printJoinResult(v)
	case LoginResult:
		o.printLoginResult(v)
	case AuthStatus:
		o.printAuthStatus(v)
	case Session:
		o.printSession(v)
	case SessionList:
		o.printSessionList(v)
	case PlayerList:
		o.printPlayerList(v)
	case Stats:
		o.printStats(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// JoinResult response type (matches API)
type JoinResult struct {
	Token  string `json:"token"`
	UserID uint32 `json:"user_id"`
}

// LoginResult response type
type LoginResult struct {
	Token string `json:"token"`
}

// AuthStatus response type
type AuthStatus struct {
	Level     string    `json:"level"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Session response type
type Session struct {
	ID          string    `json:"id"`
	Active      bool      `json:"active"`
	Settings    string    `json:"settings,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	PlayerCount int       `json:"player_count"`
}

// SessionList response type
type SessionList struct {
	Sessions []Session `json:"sessions"`
}

// Player response type
type Player struct {
	UserID   uint32    `json:"user_id"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	State    string    `json:"state"`
	JoinedAt time.Time `json:"joined_at"`
}

// PlayerList response type
type PlayerList struct {
	SessionID string   `json:"session_id"`
	Players   []Player `json:"players"`
}

// Stats response type
type Stats struct {
	WSConnected    int `json:"ws_connected"`
	SessionsActive int `json:"sessions_active"`
	UniqueUsers    int `json:"unique_users"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

// Message is a text message received over the websocket
type Message struct {
	Time time.Time `json:"time"`
	Text string    `json:"text"`
}

func (o *Output) printJoinResult(j JoinResult) {
	fmt.Printf("User ID: %d\n", j.UserID)
	fmt.Printf("Token: %s\n", j.Token)
}

func (o *Output) printLoginResult(l LoginResult) {
	fmt.Printf("Token: %s\n", l.Token)
}

func (o *Output) printAuthStatus(a AuthStatus) {
	fmt.Printf("Level: %s\n", a.Level)
	fmt.Printf("Expires: %s\n", a.ExpiresAt.Local().Format(time.RFC1123))
}

func (o *Output) printSession(s Session) {
	state := "inactive"
	if s.Active {
		state = "active"
	}
	fmt.Printf("Session: %s\n", s.ID)
	fmt.Printf("State: %s\n", state)
	fmt.Printf("Players: %d\n", s.PlayerCount)
	if s.Settings != "" {
		fmt.Printf("Settings: %s\n", s.Settings)
	}
}

func (o *Output) printSessionList(l SessionList) {
	if len(l.Sessions) == 0 {
		fmt.Println("No sessions")
		return
	}
	for _, s := range l.Sessions {
		state := "inactive"
		if s.Active {
			state = "active"
		}
		fmt.Printf("%s  %-8s  %d players  created %s\n",
			s.ID, state, s.PlayerCount, s.CreatedAt.Local().Format(time.DateTime))
	}
}

func (o *Output) printPlayerList(l PlayerList) {
	fmt.Printf("Session %s (%d players):\n", l.SessionID, len(l.Players))
	for _, p := range l.Players {
		role := ""
		if p.Role != "" {
			role = " [" + p.Role + "]"
		}
		fmt.Printf("  - %s (%d) - %s%s\n", p.Name, p.UserID, p.State, role)
	}
}

func (o *Output) printStats(s Stats) {
	fmt.Printf("Websocket connections: %d\n", s.WSConnected)
	fmt.Printf("Active sessions: %d\n", s.SessionsActive)
	fmt.Printf("Unique users: %d\n", s.UniqueUsers)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
