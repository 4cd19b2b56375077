package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"hostel-sync-service/internal/domain/entity"
	"hostel-sync-service/internal/infrastructure/oauth"
	"hostel-sync-service/internal/usecase"
	"hostel-sync-service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type stubPipeline struct {
	purpose entity.Purpose
}

func (p stubPipeline) Purpose() entity.Purpose { return p.purpose }
func (p stubPipeline) Query() entity.MailQuery { return entity.MailQuery{} }
func (p stubPipeline) MaxResults() int64 { return 5 }
func (p stubPipeline) SnippetLength() int { return 200 }
func (p stubPipeline) CanHandle(_, _ string) bool { return true }
func (p stubPipeline) Save(context.Context, interface{}) (string, error) { return "", nil }
func (p stubPipeline) Extract(*entity.RawMessage, string) (interface{}, bool) {
	return nil, false
}

type stubSyncer struct {
	summary *entity.SyncSummary
	err     error
	ran     []entity.Purpose
}

func (s *stubSyncer) Run(_ context.Context, p usecase.Pipeline) (*entity.SyncSummary, error) {
	s.ran = append(s.ran, p.Purpose())
	return s.summary, s.err
}

type stubAuth struct {
	token    *oauth2.Token
	err      error
	storeErr error
	stored   map[entity.Purpose]string
}

func (a *stubAuth) AuthURL(p entity.Purpose) string {
	return "https://accounts.example.com/auth?type=" + p.String()
}

func (a *stubAuth) Exchange(context.Context, string) (*oauth2.Token, error) {
	return a.token, a.err
}

func (a *stubAuth) Store(_ context.Context, p entity.Purpose, rt string) error {
	if a.storeErr != nil {
		return a.storeErr
	}
	if a.stored == nil {
		a.stored = map[entity.Purpose]string{}
	}
	a.stored[p] = rt
	return nil
}

type stubReminders struct {
	result  *entity.ReminderResult
	pending []*entity.Booking
	err     error
	runs    int
}

func (s *stubReminders) Run(context.Context) (*entity.ReminderResult, error) {
	s.runs++
	return s.result, s.err
}

func (s *stubReminders) Pending(context.Context) ([]*entity.Booking, error) {
	return s.pending, s.err
}

func newTestServer(syncer Syncer, auth Authorizer, reminders Reminders, secret string) http.Handler {
	pipelines := []usecase.Pipeline{
		stubPipeline{purpose: entity.PurposeTransactions},
		stubPipeline{purpose: entity.PurposeBookings},
	}
	h := NewHandler(syncer, pipelines, auth, reminders, secret, logger.NewNopLogger())
	h.now = func() time.Time { return time.Date(2026, 1, 7, 3, 30, 0, 0, time.UTC) }

	mux := http.NewServeMux()
	h.Register(mux)
	return Chain(mux, Recovery(logger.NewNopLogger()), Logging(logger.NewNopLogger()))
}

func do(t *testing.T, h http.Handler, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSync_Success(t *testing.T) {
	syncer := &stubSyncer{summary: &entity.SyncSummary{RunID: "r1", TotalProcessed: 3, Added: 1, Skipped: 1, Unparsed: 1}}
	srv := newTestServer(syncer, nil, &stubReminders{}, "")

	rec := do(t, srv, "/api/bookings/sync", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 1, body["added"])
	assert.EqualValues(t, 3, body["totalProcessed"])
	assert.EqualValues(t, 1, body["skipped"])
	assert.EqualValues(t, 0, body["failed"])
	assert.Equal(t, []entity.Purpose{entity.PurposeBookings}, syncer.ran)
}

func TestSync_AuthRequired(t *testing.T) {
	syncer := &stubSyncer{err: &oauth.AuthRequiredError{
		Purpose: entity.PurposeTransactions,
		AuthURL: oauth.ReauthPath(entity.PurposeTransactions),
	}}
	srv := newTestServer(syncer, nil, &stubReminders{}, "")

	rec := do(t, srv, "/api/transactions/sync", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "Auth Required", body["error"])
	assert.Equal(t, "/api/gmail/auth?type=transactions", body["authUrl"])
	assert.Equal(t, true, body["authRequired"])
	assert.NotEmpty(t, body["message"])
}

func TestSync_AuthRequiredWithoutURL(t *testing.T) {
	syncer := &stubSyncer{err: oauth.ErrAuthorizationRequired}
	srv := newTestServer(syncer, nil, &stubReminders{}, "")

	rec := do(t, srv, "/api/bookings/sync", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "/api/gmail/auth?type=bookings", decode(t, rec)["authUrl"])
}

func TestSync_Failure(t *testing.T) {
	syncer := &stubSyncer{err: errors.New("mongo down")}
	srv := newTestServer(syncer, nil, &stubReminders{}, "")

	rec := do(t, srv, "/api/bookings/sync", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to sync bookings", decode(t, rec)["error"])
}

func TestGmailAuth_Redirects(t *testing.T) {
	srv := newTestServer(&stubSyncer{}, &stubAuth{}, &stubReminders{}, "")

	rec := do(t, srv, "/api/gmail/auth?type=bookings", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://accounts.example.com/auth?type=bookings", rec.Header().Get("Location"))

	rec = do(t, srv, "/api/gmail/auth", nil)
	assert.Equal(t, "https://accounts.example.com/auth?type=transactions", rec.Header().Get("Location"))
}

func TestGmailAuth_NotConfigured(t *testing.T) {
	srv := newTestServer(&stubSyncer{}, nil, &stubReminders{}, "")

	rec := do(t, srv, "/api/gmail/auth?type=bookings", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGmailCallback(t *testing.T) {
	state := url.QueryEscape(`{"type":"bookings"}`)

	t.Run("stores token and redirects", func(t *testing.T) {
		auth := &stubAuth{token: &oauth2.Token{AccessToken: "at", RefreshToken: "rt"}}
		srv := newTestServer(&stubSyncer{}, auth, &stubReminders{}, "")

		rec := do(t, srv, "/api/gmail/callback?code=abc&state="+state, nil)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/bookings?gmail_sync=connected", rec.Header().Get("Location"))
		assert.Equal(t, "rt", auth.stored[entity.PurposeBookings])
	})

	t.Run("default purpose", func(t *testing.T) {
		auth := &stubAuth{token: &oauth2.Token{RefreshToken: "rt"}}
		srv := newTestServer(&stubSyncer{}, auth, &stubReminders{}, "")

		rec := do(t, srv, "/api/gmail/callback?code=abc", nil)
		assert.Equal(t, "/transactions?gmail_sync=connected", rec.Header().Get("Location"))
		assert.Equal(t, "rt", auth.stored[entity.PurposeTransactions])
	})

	t.Run("no refresh token still redirects", func(t *testing.T) {
		auth := &stubAuth{token: &oauth2.Token{AccessToken: "at"}}
		srv := newTestServer(&stubSyncer{}, auth, &stubReminders{}, "")

		rec := do(t, srv, "/api/gmail/callback?code=abc&state="+state, nil)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Empty(t, auth.stored)
	})

	t.Run("store failure", func(t *testing.T) {
		auth := &stubAuth{token: &oauth2.Token{RefreshToken: "rt"}, storeErr: errors.New("write failed")}
		srv := newTestServer(&stubSyncer{}, auth, &stubReminders{}, "")

		rec := do(t, srv, "/api/gmail/callback?code=abc", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("provider error", func(t *testing.T) {
		srv := newTestServer(&stubSyncer{}, &stubAuth{}, &stubReminders{}, "")

		rec := do(t, srv, "/api/gmail/callback?error=access_denied", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "access_denied", decode(t, rec)["error"])
	})

	t.Run("missing code", func(t *testing.T) {
		srv := newTestServer(&stubSyncer{}, &stubAuth{}, &stubReminders{}, "")

		rec := do(t, srv, "/api/gmail/callback", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No code provided", decode(t, rec)["error"])
	})

	t.Run("exchange failure", func(t *testing.T) {
		srv := newTestServer(&stubSyncer{}, &stubAuth{err: errors.New("bad code")}, &stubReminders{}, "")

		rec := do(t, srv, "/api/gmail/callback?code=abc", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to authenticate with Google", decode(t, rec)["error"])
	})
}

func TestSendAdvanceReminders(t *testing.T) {
	result := &entity.ReminderResult{Total: 2, Sent: 1, Failed: 1, Errors: []entity.ReminderError{
		{BookingID: "b2", BookNumber: "NH2", Error: "booking has no phone number"},
	}}

	t.Run("rejects missing secret", func(t *testing.T) {
		reminders := &stubReminders{result: result}
		srv := newTestServer(&stubSyncer{}, nil, reminders, "s3cret")

		rec := do(t, srv, "/api/cron/send-advance-reminders", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Unauthorized", decode(t, rec)["error"])
		assert.Zero(t, reminders.runs)
	})

	t.Run("runs with secret", func(t *testing.T) {
		reminders := &stubReminders{result: result}
		srv := newTestServer(&stubSyncer{}, nil, reminders, "s3cret")

		rec := do(t, srv, "/api/cron/send-advance-reminders", http.Header{"Authorization": {"Bearer s3cret"}})
		require.Equal(t, http.StatusOK, rec.Code)

		body := decode(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "Advance reminders processed", body["message"])
		assert.Equal(t, "2026-01-07T03:30:00Z", body["timestamp"])
		results := body["results"].(map[string]interface{})
		assert.EqualValues(t, 1, results["sent"])
		assert.EqualValues(t, 1, results["failed"])
	})

	t.Run("open when no secret configured", func(t *testing.T) {
		reminders := &stubReminders{result: result}
		srv := newTestServer(&stubSyncer{}, nil, reminders, "")

		rec := do(t, srv, "/api/cron/send-advance-reminders", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, reminders.runs)
	})

	t.Run("job failure", func(t *testing.T) {
		srv := newTestServer(&stubSyncer{}, nil, &stubReminders{err: errors.New("lookup failed")}, "")

		rec := do(t, srv, "/api/cron/send-advance-reminders", nil)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Cron job failed", body["error"])
		assert.Equal(t, "lookup failed", body["details"])
	})
}

func TestAdvancePending(t *testing.T) {
	reminders := &stubReminders{pending: []*entity.Booking{{BookNumber: "NH1"}, {BookNumber: "NH2"}}}
	srv := newTestServer(&stubSyncer{}, nil, reminders, "")

	rec := do(t, srv, "/api/bookings/advance-pending", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var bookings []entity.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bookings))
	require.Len(t, bookings, 2)
	assert.Equal(t, "NH1", bookings[0].BookNumber)

	rec = do(t, newTestServer(&stubSyncer{}, nil, &stubReminders{}, ""), "/api/bookings/advance-pending", nil)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestRecovery(t *testing.T) {
	h := Recovery(logger.NewNopLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := do(t, h, "/", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(&stubSyncer{}, nil, &stubReminders{}, ""), "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Healthy", rec.Body.String())
}
