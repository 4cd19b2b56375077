package main

import (
	"errors"
	"fmt"

	"hostel-sync-service/internal/app"
	"hostel-sync-service/internal/interface/mailfile"
	"hostel-sync-service/internal/usecase"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file.eml>...",
	Short: "Preview extraction without storing anything",
	Long:  `Parses each .eml file, picks the pipeline by sender and subject and prints what it extracts. Nothing is written to the database.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		router := app.NewRouter(cfg, nil, nil, log)

		var failed bool
		for _, path := range args {
			msg, err := mailfile.ReadFile(path)
			if err != nil {
				return err
			}

			result, err := usecase.DryRun(router, msg)
			if errors.Is(err, usecase.ErrNoPipeline) {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: no pipeline for %q from %q\n", path, msg.Subject(), msg.From())
				failed = true
				continue
			}
			if err != nil {
				return err
			}
			if !result.Parsed {
				failed = true
			}
			if err := printJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
		}

		if failed {
			return errors.New("some messages could not be parsed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
