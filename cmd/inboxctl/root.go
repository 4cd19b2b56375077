package main

import (
	"encoding/json"
	"fmt"
	"io"

	"hostel-sync-service/internal/domain/entity"
	"hostel-sync-service/internal/infrastructure/config"
	"hostel-sync-service/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	cfg     *config.Config
	log     logger.Logger

	rootCmd = &cobra.Command{
		Use:          "inboxctl",
		Short:        "Operate the hostel inbox sync",
		Long:         `inboxctl runs the transaction and booking syncs, previews extraction on .eml files, sends advance reminders and manages stored mailbox credentials.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.LoadConfig()
			if err != nil {
				return err
			}
			level := c.LogLevel
			if verbose {
				level = "debug"
			}
			cfg = c
			log = logger.NewLoggerWithLevel(level)
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// parsePurpose accepts only the two known purposes; the HTTP default of
// transactions does not apply on the command line
func parsePurpose(s string) (entity.Purpose, error) {
	for _, p := range entity.AllPurposes {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown purpose %q (want transactions or bookings)", s)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
