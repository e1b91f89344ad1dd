package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrator credential commands",
	}

	cmd.AddCommand(newAdminLoginCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

func newAdminLoginCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as administrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("SESSIONCTL_ADMIN_PASSWORD")
			}
			if password == "" {
				return fmt.Errorf("--password is required")
			}

			req := map[string]string{"password": password}
			var result LoginResult

			if err := client.Post("/api/v1/auth/connect/ctrl", req, &result); err != nil {
				return err
			}

			// Save token
			if err := cfg.SaveToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Admin password (env: SESSIONCTL_ADMIN_PASSWORD)")

	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the level and expiry of the current credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result AuthStatus

			if err := client.Get("/api/v1/auth/status", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
