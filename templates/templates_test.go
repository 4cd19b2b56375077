package templates

import (
	"context"
	"testing"
	"time"

	"hostel-sync-service/internal/domain/entity"
	"hostel-sync-service/pkg/logger"
	"hostel-sync-service/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBookings struct {
	existing *entity.Booking
	inserted []*entity.Booking
	err      error
}

func (s *stubBookings) FindByBookNumber(context.Context, string) (*entity.Booking, error) {
	return s.existing, nil
}

func (s *stubBookings) Insert(_ context.Context, b *entity.Booking) error {
	if s.err != nil {
		return s.err
	}
	s.inserted = append(s.inserted, b)
	return nil
}

func (s *stubBookings) FindAdvancePending(context.Context) ([]*entity.Booking, error) {
	return nil, nil
}

func TestAdvanceReminder(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	b := &entity.Booking{
		BookNumber: "NH78235454389498",
		GuestNames: "Shreyas P A",
		BookedBy:   "MakeMyTrip",
		CheckIn:    time.Date(2026, 1, 6, 18, 30, 0, 0, time.UTC),
		CheckOut:   time.Date(2026, 1, 7, 18, 30, 0, 0, time.UTC),
		Price:      "353.97",
	}

	tmpl := AdvanceReminder(b, "advance_payment_reminder", "en", ist)
	assert.Equal(t, "advance_payment_reminder", tmpl.Name)
	assert.Equal(t, "en", tmpl.Language.Code)
	require.Len(t, tmpl.Components, 1)
	assert.Equal(t, "body", tmpl.Components[0].Type)

	var texts []string
	for _, p := range tmpl.Components[0].Parameters {
		assert.Equal(t, "text", p.Type)
		texts = append(texts, p.Text)
	}
	assert.Equal(t, []string{"Shreyas P A", "NH78235454389498", "7 Jan 2026", "8 Jan 2026", "353.97"}, texts)
}

func TestAdvanceReminderText(t *testing.T) {
	b := &entity.Booking{
		BookNumber: "42",
		BookedBy:   "Booking.com",
		CheckIn:    time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
		Price:      "1800",
	}

	text := AdvanceReminderText(b, "Pathfinders Nest", nil)
	assert.Contains(t, text, "Dear Booking.com,")
	assert.Contains(t, text, "your booking at Pathfinders Nest.")
	assert.Contains(t, text, "Check-in: 1 Feb 2026")
	assert.Contains(t, text, "Total Amount: ₹1800")
}

func TestBookingVoucherHandler_Save(t *testing.T) {
	repo := &stubBookings{}
	h := NewBookingVoucherHandler(repo, entity.MailQuery{}, 50, time.UTC, logger.NewNopLogger())

	outcome, err := h.Save(context.Background(), &entity.Booking{BookNumber: "NH1"})
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeAdded, outcome)
	assert.Len(t, repo.inserted, 1)

	repo.existing = &entity.Booking{BookNumber: "NH1"}
	outcome, err = h.Save(context.Background(), &entity.Booking{BookNumber: "NH1"})
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeSkipped, outcome)
	assert.Len(t, repo.inserted, 1)

	_, err = h.Save(context.Background(), &entity.Transaction{})
	assert.Error(t, err)
}

func TestBookingVoucherHandler_DefaultPolicies(t *testing.T) {
	h := NewBookingVoucherHandler(&stubBookings{}, entity.MailQuery{}, 50, time.UTC, logger.NewNopLogger())
	assert.Equal(t, entity.PurposeBookings, h.Purpose())
	assert.Equal(t, 500, h.SnippetLength())
	assert.NotNil(t, h.Extractor())
}

func TestMatchesQuery(t *testing.T) {
	q := entity.MailQuery{From: "info@sbmbank.co.in", Subject: "Credit Transaction Alert"}

	assert.True(t, matchesQuery(q, "SBM <info@sbmbank.co.in>", "Credit Transaction Alert"))
	assert.True(t, matchesQuery(q, "info@SBMBANK.co.in", "FW: credit transaction alert"))
	assert.False(t, matchesQuery(q, "info@sbmbank.co.in", "Debit Transaction Alert"))
	assert.True(t, matchesQuery(entity.MailQuery{}, "", ""))
}
