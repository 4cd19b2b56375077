package main

import (
	"context"
	"fmt"

	"hostel-sync-service/internal/app"
	"hostel-sync-service/internal/domain/entity"

	"github.com/spf13/cobra"
)

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage stored mailbox refresh tokens",
}

var credentialsClearCmd = &cobra.Command{
	Use:       "clear [transactions|bookings]...",
	Short:     "Delete stored refresh tokens, all of them when no purpose is given",
	ValidArgs: []string{"transactions", "bookings"},
	RunE: func(cmd *cobra.Command, args []string) error {
		purposes := entity.AllPurposes
		if len(args) > 0 {
			purposes = make([]entity.Purpose, 0, len(args))
			for _, arg := range args {
				p, err := parsePurpose(arg)
				if err != nil {
					return err
				}
				purposes = append(purposes, p)
			}
		}

		store, release, err := app.NewCredentialStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer release(context.Background())

		for _, p := range purposes {
			if err := store.Delete(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: cleared\n", p)
		}
		return nil
	},
}

func init() {
	credentialsCmd.AddCommand(credentialsClearCmd)
	rootCmd.AddCommand(credentialsCmd)
}
