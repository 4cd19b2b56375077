package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"hostel-sync-service/internal/app"
	"hostel-sync-service/internal/domain/entity"
	"hostel-sync-service/internal/infrastructure/oauth"

	"github.com/spf13/cobra"
)

const callbackPath = "/api/gmail/callback"

var authListen string

var authCmd = &cobra.Command{
	Use:       "auth transactions|bookings",
	Short:     "Authorize Gmail access and store the refresh token",
	Long:      `Prints the Google consent URL and waits on a local callback for the code. The callback URL http://localhost<listen>/api/gmail/callback must be registered for the OAuth client.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"transactions", "bookings"},
	RunE: func(cmd *cobra.Command, args []string) error {
		purpose, err := parsePurpose(args[0])
		if err != nil {
			return err
		}

		store, release, err := app.NewCredentialStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer release(context.Background())

		listener, err := net.Listen("tcp", authListen)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", authListen, err)
		}
		port := listener.Addr().(*net.TCPAddr).Port
		redirectURL := fmt.Sprintf("http://localhost:%d%s", port, callbackPath)

		provider := oauth.NewCredentialProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, redirectURL, store, log)

		done := make(chan error, 1)
		mux := http.NewServeMux()
		mux.HandleFunc(callbackPath, callbackHandler(provider, purpose, done))
		server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				report(done, err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		}()

		fmt.Fprintf(cmd.OutOrStdout(), "Open this URL in your browser:\n%s\n", provider.AuthURL(purpose))

		select {
		case err := <-done:
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Refresh token stored for %s\n", purpose)
			return nil
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		}
	},
}

// callbackHandler completes one consent flow for purpose and reports the
// outcome on done
func callbackHandler(provider *oauth.CredentialProvider, purpose entity.Purpose, done chan<- error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if e := q.Get("error"); e != "" {
			http.Error(w, e, http.StatusBadRequest)
			report(done, fmt.Errorf("authorization denied: %s", e))
			return
		}
		if got := oauth.ParseState(q.Get("state")); got != purpose {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		token, err := provider.Exchange(r.Context(), q.Get("code"))
		if err != nil {
			http.Error(w, "Failed to authenticate with Google", http.StatusInternalServerError)
			report(done, err)
			return
		}
		if token.RefreshToken == "" {
			http.Error(w, "No refresh token received", http.StatusBadRequest)
			report(done, errors.New("no refresh token received, revoke the app's access and retry"))
			return
		}
		if err := provider.Store(r.Context(), purpose, token.RefreshToken); err != nil {
			http.Error(w, "Failed to store refresh token", http.StatusInternalServerError)
			report(done, err)
			return
		}

		fmt.Fprint(w, "Authentication successful! You can close this window.")
		report(done, nil)
	}
}

// report delivers the first outcome; later callbacks are dropped
func report(done chan<- error, err error) {
	select {
	case done <- err:
	default:
	}
}

func init() {
	authCmd.Flags().StringVar(&authListen, "listen", "localhost:8090", "address of the local callback server")
	rootCmd.AddCommand(authCmd)
}
