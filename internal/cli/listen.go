package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

// Time allowed for the websocket handshake
const handshakeTimeout = 10 * time.Second

func newListenCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Print realtime messages for the current credential",
		Long: `Open a websocket with the saved credential and print every message the
server sends. Players receive their session's broadcasts, direct messages and
"update.playerlist" notices; administrators receive broadcasts for every session.

Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Token == "" {
				return fmt.Errorf("no token: run 'join' or 'admin login' first")
			}
			return listen(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output messages as JSON lines")

	return cmd
}

func listen(jsonOutput bool) error {
	wsURL, err := cfg.WebsocketURL()
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	// Set up cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+cfg.Token)

	conn, resp, err := dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("connection refused: HTTP %d", resp.StatusCode)
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	go func() {
		select {
		case <-sigCh:
			cancel()
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		case <-ctx.Done():
		}
	}()

	if !jsonOutput {
		fmt.Println("Connected")
	}

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			// Interrupt or a normal close from the server is expected
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				if !jsonOutput {
					fmt.Println("Disconnected")
				}
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}
		if kind != websocket.TextMessage {
			continue
		}
		printMessage(string(data), jsonOutput)
	}
}

func printMessage(text string, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		jsonData, _ := json.Marshal(Message{Time: now, Text: text})
		fmt.Println(string(jsonData))
	} else {
		fmt.Printf("[%s] %s\n", now.Format(time.DateTime), text)
	}
}
