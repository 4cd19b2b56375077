package usecase

import (
	"testing"

	"hostel-sync-service/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listRouter []Pipeline

func (r *listRouter) Register(p Pipeline) { *r = append(*r, p) }

func (r *listRouter) GetHandler(from, subject string) Pipeline {
	for _, p := range *r {
		if p.CanHandle(from, subject) {
			return p
		}
	}
	return nil
}

func newDryRunRouter() *listRouter {
	r := &listRouter{}
	r.Register(bookingHandler(nil))
	r.Register(transactionHandler(nil))
	return r
}

func TestDryRun_Voucher(t *testing.T) {
	result, err := DryRun(newDryRunRouter(), htmlMessage("m1", "Sun, 28 Dec 2025 10:28:00 +0530", voucherHTML))
	require.NoError(t, err)

	assert.Equal(t, "bookings", result.Purpose)
	assert.True(t, result.Parsed)
	booking, ok := result.Record.(*entity.Booking)
	require.True(t, ok)
	assert.Equal(t, "NH78235454389498", booking.BookNumber)
	assert.Empty(t, result.Snippet)
}

func TestDryRun_Alert(t *testing.T) {
	result, err := DryRun(newDryRunRouter(), textMessage("m1", "Sun, 28 Dec 2025 10:15:42 +0530", alertBody))
	require.NoError(t, err)

	assert.Equal(t, "transactions", result.Purpose)
	assert.True(t, result.Parsed)
	tx, ok := result.Record.(*entity.Transaction)
	require.True(t, ok)
	assert.Equal(t, 1110.0, tx.Amount)
}

func TestDryRun_Unparsed(t *testing.T) {
	result, err := DryRun(newDryRunRouter(), htmlMessage("m2", "Sun, 28 Dec 2025 11:00:00 +0530", "<p>Your booking was modified</p>"))
	require.NoError(t, err)

	assert.False(t, result.Parsed)
	assert.Nil(t, result.Record)
	assert.Equal(t, "<p>Your booking was modified</p>", result.Snippet)
}

func TestDryRun_NoPipeline(t *testing.T) {
	msg := textMessage("m3", "", "hello")
	msg.Headers[1].Value = "Weekly newsletter"

	_, err := DryRun(newDryRunRouter(), msg)
	assert.ErrorIs(t, err, ErrNoPipeline)
}
