package httpapi

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/url"
	"time"

	"hostel-sync-service/internal/domain/entity"
	"hostel-sync-service/internal/domain/repository"
	"hostel-sync-service/internal/infrastructure/oauth"
	"hostel-sync-service/internal/usecase"
	"hostel-sync-service/pkg/logger"

	"golang.org/x/oauth2"
)

// Syncer runs one pipeline against its mailbox
type Syncer interface {
	Run(ctx context.Context, pipeline usecase.Pipeline) (*entity.SyncSummary, error)
}

// Authorizer drives the Gmail consent flow
type Authorizer interface {
	AuthURL(purpose entity.Purpose) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Store(ctx context.Context, purpose entity.Purpose, refreshToken string) error
}

// Reminders sends and lists advance payment reminders
type Reminders interface {
	Run(ctx context.Context) (*entity.ReminderResult, error)
	Pending(ctx context.Context) ([]*entity.Booking, error)
}

// Handler serves the sync, authorization and reminder endpoints
type Handler struct {
	syncer     Syncer
	pipelines  map[entity.Purpose]usecase.Pipeline
	auth       Authorizer
	reminders  Reminders
	cronSecret string
	logger     logger.Logger
	now        func() time.Time
}

// NewHandler creates a new handler. auth may be nil when the mail source
// is not Gmail; the authorization endpoints then answer 404.
func NewHandler(
	syncer Syncer,
	pipelines []usecase.Pipeline,
	auth Authorizer,
	reminders Reminders,
	cronSecret string,
	logger logger.Logger,
) *Handler {
	byPurpose := make(map[entity.Purpose]usecase.Pipeline, len(pipelines))
	for _, p := range pipelines {
		byPurpose[p.Purpose()] = p
	}
	return &Handler{
		syncer:     syncer,
		pipelines:  byPurpose,
		auth:       auth,
		reminders:  reminders,
		cronSecret: cronSecret,
		logger:     logger,
		now:        time.Now,
	}
}

// Register mounts every route on mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/transactions/sync", h.sync(entity.PurposeTransactions))
	mux.HandleFunc("GET /api/bookings/sync", h.sync(entity.PurposeBookings))
	mux.HandleFunc("GET /api/bookings/advance-pending", h.AdvancePending)
	mux.HandleFunc("GET /api/cron/send-advance-reminders", h.SendAdvanceReminders)
	mux.HandleFunc("GET /api/gmail/auth", h.GmailAuth)
	mux.HandleFunc("GET /api/gmail/callback", h.GmailCallback)
	mux.HandleFunc("GET /health", h.Health)
}

func (h *Handler) sync(purpose entity.Purpose) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pipeline, ok := h.pipelines[purpose]
		if !ok {
			WriteError(w, http.StatusNotFound, "Sync not configured")
			return
		}

		summary, err := h.syncer.Run(r.Context(), pipeline)
		if err != nil {
			if errors.Is(err, repository.ErrAuthorizationRequired) {
				authURL := oauth.ReauthPath(purpose)
				var authErr *oauth.AuthRequiredError
				if errors.As(err, &authErr) && authErr.AuthURL != "" {
					authURL = authErr.AuthURL
				}
				WriteJSON(w, http.StatusUnauthorized, map[string]interface{}{
					"error":        "Auth Required",
					"message":      err.Error(),
					"authUrl":      authURL,
					"authRequired": true,
				})
				return
			}
			h.logger.Error("Sync failed", "purpose", purpose.String(), "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to sync "+purpose.String())
			return
		}

		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success":        true,
			"runId":          summary.RunID,
			"added":          summary.Added,
			"totalProcessed": summary.TotalProcessed,
			"skipped":        summary.Skipped,
			"unparsed":       summary.Unparsed,
			"failed":         summary.Failed,
		})
	}
}

// AdvancePending handles GET /api/bookings/advance-pending
func (h *Handler) AdvancePending(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.reminders.Pending(r.Context())
	if err != nil {
		h.logger.Error("Failed to fetch advance pending bookings", "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to fetch bookings")
		return
	}
	if bookings == nil {
		bookings = []*entity.Booking{}
	}
	WriteJSON(w, http.StatusOK, bookings)
}

// SendAdvanceReminders handles GET /api/cron/send-advance-reminders. When a
// cron secret is configured the caller must present it as a bearer token.
func (h *Handler) SendAdvanceReminders(w http.ResponseWriter, r *http.Request) {
	if h.cronSecret != "" {
		want := "Bearer " + h.cronSecret
		got := r.Header.Get("Authorization")
		if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
			WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
	}

	result, err := h.reminders.Run(r.Context())
	if err != nil {
		h.logger.Error("Advance reminder job failed", "error", err)
		WriteJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "Cron job failed",
			"details": err.Error(),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   "Advance reminders processed",
		"results":   result,
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// GmailAuth handles GET /api/gmail/auth?type=bookings|transactions
func (h *Handler) GmailAuth(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		http.NotFound(w, r)
		return
	}
	purpose := entity.ParsePurpose(r.URL.Query().Get("type"))
	http.Redirect(w, r, h.auth.AuthURL(purpose), http.StatusFound)
}

// GmailCallback handles the OAuth redirect, storing the refresh token for
// the purpose carried in state
func (h *Handler) GmailCallback(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		WriteError(w, http.StatusBadRequest, e)
		return
	}
	code := q.Get("code")
	if code == "" {
		WriteError(w, http.StatusBadRequest, "No code provided")
		return
	}

	purpose := oauth.ParseState(q.Get("state"))

	token, err := h.auth.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("Error exchanging code for token", "purpose", purpose.String(), "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to authenticate with Google")
		return
	}

	if token.RefreshToken != "" {
		if err := h.auth.Store(r.Context(), purpose, token.RefreshToken); err != nil {
			h.logger.Error("Failed to store refresh token", "purpose", purpose.String(), "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to authenticate with Google")
			return
		}
	} else {
		h.logger.Warn("No refresh token received, consent may have been granted before", "purpose", purpose.String())
	}

	http.Redirect(w, r, callbackRedirect(purpose), http.StatusFound)
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Healthy"))
}

// callbackRedirect is the page the callback returns the user to
func callbackRedirect(purpose entity.Purpose) string {
	path := "/transactions"
	if purpose == entity.PurposeBookings {
		path = "/bookings"
	}
	return path + "?" + url.Values{"gmail_sync": {"connected"}}.Encode()
}
