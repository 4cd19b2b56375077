package main

import (
	"context"

	"hostel-sync-service/internal/app"

	"github.com/spf13/cobra"
)

var remindList bool

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send WhatsApp reminders for pending advance payments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cmd.Context(), cfg, log, app.Options{})
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		if remindList {
			pending, err := a.Reminders.Pending(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), pending)
		}

		result, err := a.Reminders.Run(cmd.Context())
		if result != nil {
			if perr := printJSON(cmd.OutOrStdout(), result); perr != nil {
				return perr
			}
		}
		return err
	},
}

func init() {
	remindCmd.Flags().BoolVarP(&remindList, "list", "l", false, "only list the bookings that would be reminded")
	rootCmd.AddCommand(remindCmd)
}
