package app

import (
	"testing"

	"hostel-sync-service/internal/domain/entity"
	"hostel-sync-service/internal/infrastructure/config"
	"hostel-sync-service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		PropertyTimezone: "Asia/Kolkata",
		Transactions: config.SourceConfig{
			From:       "info@sbmbank.co.in",
			Subject:    "Credit Transaction Alert",
			MaxResults: 5,
		},
		Bookings: config.SourceConfig{
			From:       "no-reply@go-mmt.com",
			Subject:    "New Booking Received",
			MaxResults: 50,
		},
	}
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(testConfig(), nil, nil, logger.NewNopLogger())

	booking := r.GetHandler("MakeMyTrip <no-reply@go-mmt.com>", "New Booking Received – NH1")
	require.NotNil(t, booking)
	assert.Equal(t, entity.PurposeBookings, booking.Purpose())
	assert.EqualValues(t, 50, booking.MaxResults())

	alert := r.GetHandler("info@sbmbank.co.in", "Credit Transaction Alert for A/c XX5151")
	require.NotNil(t, alert)
	assert.Equal(t, entity.PurposeTransactions, alert.Purpose())
	assert.EqualValues(t, 5, alert.MaxResults())

	assert.Nil(t, r.GetHandler("news@example.com", "Weekly digest"))
}

func TestPipeline(t *testing.T) {
	a := &App{Router: NewRouter(testConfig(), nil, nil, logger.NewNopLogger())}

	p, err := a.Pipeline(entity.PurposeBookings)
	require.NoError(t, err)
	assert.Equal(t, entity.PurposeBookings, p.Purpose())

	_, err = a.Pipeline(entity.Purpose(9))
	assert.Error(t, err)
}
