package main

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deskhive/deskhive/internal/service"
)

func newPollMailCmd() *cobra.Command {
	var preview bool

	cmd := &cobra.Command{
		Use:   "poll-mail",
		Short: "Run one mail ingestion poll",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ingestor, err := a.buildIngestor(ingestorOptions{preview: preview})
			if err != nil {
				return err
			}

			summary, err := ingestor.Poll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("processed=%d created=%d updated=%d skipped=%d failed=%d\n",
				summary.Processed, summary.Created, summary.Updated, summary.Skipped, summary.Failed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&preview, "preview", false,
		"classify up to 5 messages without persisting tickets or marking them seen")
	return cmd
}

func newAdminCmd() *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Administrative account operations",
	}

	var email, password, name, setupKey string
	create := &cobra.Command{
		Use:   "create",
		Short: "Bootstrap an admin account (requires SETUP_KEY)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.Auth.SetupKey == "" {
				return fmt.Errorf("SETUP_KEY is not configured")
			}
			if subtle.ConstantTimeCompare([]byte(setupKey), []byte(a.cfg.Auth.SetupKey)) != 1 {
				return fmt.Errorf("setup key mismatch")
			}

			user, err := a.userSvc.Create(context.Background(), nil, service.CreateUserInput{
				Email:    email,
				Password: password,
				FullName: name,
				Role:     "admin",
			})
			if err != nil {
				return err
			}
			fmt.Printf("admin account %d created for %s\n", user.ID, user.Email)
			return nil
		},
	}
	create.Flags().StringVar(&email, "email", "", "admin email address")
	create.Flags().StringVar(&password, "password", "", "admin password (min 8 characters)")
	create.Flags().StringVar(&name, "name", "Administrator", "display name")
	create.Flags().StringVar(&setupKey, "setup-key", "", "must match the SETUP_KEY environment variable")
	create.MarkFlagRequired("email")
	create.MarkFlagRequired("password")
	create.MarkFlagRequired("setup-key")

	admin.AddCommand(create)
	return admin
}

func newSessionsCmd() *cobra.Command {
	sessions := &cobra.Command{
		Use:   "sessions",
		Short: "Session maintenance",
	}

	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired session rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.sessionSvc.CleanupExpired(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("removed %d expired sessions\n", n)
			return nil
		},
	}

	sessions.AddCommand(cleanup)
	return sessions
}
