package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session management commands",
	}

	cmd.AddCommand(newSessionCreateCmd())
	cmd.AddCommand(newSessionListCmd())
	cmd.AddCommand(newSessionPlayersCmd())
	cmd.AddCommand(newSessionActiveCmd("activate", "Open a session for joining", true))
	cmd.AddCommand(newSessionActiveCmd("deactivate", "Close a session to new players", false))
	cmd.AddCommand(newSessionBroadcastCmd())
	cmd.AddCommand(newSessionMessageCmd())

	return cmd
}

func newSessionCreateCmd() *cobra.Command {
	var settings string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new session",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{}
			if settings != "" {
				req["settings"] = settings
			}

			var result Session

			if err := client.Post("/api/v1/sessions", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&settings, "settings", "", "Opaque session settings")

	return cmd
}

func newSessionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result SessionList

			if err := client.Get("/api/v1/sessions", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionPlayersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "players <session>",
		Short: "List the players of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PlayerList

			if err := client.Get(fmt.Sprintf("/api/v1/sessions/%s/players", args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionActiveCmd(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <session>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]bool{"active": active}
			var result Session

			if err := client.Patch(fmt.Sprintf("/api/v1/sessions/%s", args[0]), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionBroadcastCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "broadcast <session> <text>...",
		Short: "Send a message to every connection in a session",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"payload": strings.Join(args[1:], " ")}

			if err := client.Post(fmt.Sprintf("/api/v1/sessions/%s/broadcast", args[0]), req, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Broadcast sent")
			return nil
		},
	}
}

func newSessionMessageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "message <session> <user-id> <text>...",
		Short: "Send a message to one player",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"payload": strings.Join(args[2:], " ")}

			path := fmt.Sprintf("/api/v1/sessions/%s/players/%s/message", args[0], args[1])
			if err := client.Post(path, req, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Message sent")
			return nil
		},
	}
}
