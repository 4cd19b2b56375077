package main

import (
	"context"
	"errors"
	"fmt"

	"hostel-sync-service/internal/app"
	"hostel-sync-service/internal/domain/repository"

	"github.com/spf13/cobra"
)

var syncDir string

var syncCmd = &cobra.Command{
	Use:       "sync transactions|bookings",
	Short:     "Run one sync against the mailbox",
	Long:      `Fetches the configured messages, extracts records and stores the new ones. With --dir the .eml files of a directory stand in for the mailbox.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"transactions", "bookings"},
	RunE: func(cmd *cobra.Command, args []string) error {
		purpose, err := parsePurpose(args[0])
		if err != nil {
			return err
		}

		a, err := app.New(cmd.Context(), cfg, log, app.Options{MailDir: syncDir})
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		pipeline, err := a.Pipeline(purpose)
		if err != nil {
			return err
		}

		summary, err := a.Sync.Run(cmd.Context(), pipeline)
		if summary != nil {
			if perr := printJSON(cmd.OutOrStdout(), summary); perr != nil {
				return perr
			}
		}
		if errors.Is(err, repository.ErrAuthorizationRequired) {
			return fmt.Errorf("%w: run `inboxctl auth %s`", err, purpose)
		}
		return err
	},
}

func init() {
	syncCmd.Flags().StringVarP(&syncDir, "dir", "d", "", "read .eml files from this directory instead of the mailbox")
	rootCmd.AddCommand(syncCmd)
}
