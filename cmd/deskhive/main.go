// Package main is the deskhive entrypoint: an HTTP helpdesk API with an
// IMAP ingestion poller and a few operational subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "deskhive",
		Short:         "Email-driven helpdesk service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newPollMailCmd())
	root.AddCommand(newAdminCmd())
	root.AddCommand(newSessionsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
