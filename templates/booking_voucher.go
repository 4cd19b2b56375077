package templates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hostel-sync-service/internal/domain/entity"
	"hostel-sync-service/internal/domain/repository"
	"hostel-sync-service/pkg/logger"
	"hostel-sync-service/pkg/metrics"
	"hostel-sync-service/pkg/parser"
)

// bookingSnippetLength bounds the body logged for unparsed vouchers
const bookingSnippetLength = 500

// BookingVoucherHandler turns travel-agency vouchers into bookings
type BookingVoucherHandler struct {
	extractor  *parser.BookingExtractor
	repo       repository.BookingRepository
	query      entity.MailQuery
	maxResults int64
	logger     logger.Logger
}

// NewBookingVoucherHandler creates a handler for vouchers matching query.
// Voucher dates are read in loc.
func NewBookingVoucherHandler(repo repository.BookingRepository, query entity.MailQuery, maxResults int64, loc *time.Location, logger logger.Logger) *BookingVoucherHandler {
	return &BookingVoucherHandler{
		extractor:  parser.NewBookingExtractor(logger, loc),
		repo:       repo,
		query:      query,
		maxResults: maxResults,
		logger:     logger,
	}
}

// Extractor exposes the date policies for tuning
func (h *BookingVoucherHandler) Extractor() *parser.BookingExtractor { return h.extractor }

func (h *BookingVoucherHandler) Purpose() entity.Purpose { return entity.PurposeBookings }
func (h *BookingVoucherHandler) Query() entity.MailQuery { return h.query }
func (h *BookingVoucherHandler) MaxResults() int64 { return h.maxResults }
func (h *BookingVoucherHandler) SnippetLength() int { return bookingSnippetLength }

// CanHandle determines if this handler can process the given email
func (h *BookingVoucherHandler) CanHandle(from, subject string) bool {
	return matchesQuery(h.query, from, subject)
}

// Extract builds a booking from a decoded voucher body
func (h *BookingVoucherHandler) Extract(msg *entity.RawMessage, body string) (interface{}, bool) {
	booking, ok := h.extractor.Extract(body, msg.Header("Date"), msg.ReceivedAt)
	if !ok {
		return nil, false
	}
	return booking, true
}

// Save inserts the booking unless its book number is already stored
func (h *BookingVoucherHandler) Save(ctx context.Context, record interface{}) (string, error) {
	booking, ok := record.(*entity.Booking)
	if !ok {
		return "", fmt.Errorf("unexpected record type %T", record)
	}

	existing, err := h.repo.FindByBookNumber(ctx, booking.BookNumber)
	if err != nil {
		return "", err
	}
	if existing != nil {
		h.logger.Debug("Booking already exists", "bookNumber", booking.BookNumber)
		return metrics.OutcomeSkipped, nil
	}

	if err := h.repo.Insert(ctx, booking); err != nil {
		// lost a race with a concurrent run
		if errors.Is(err, repository.ErrDuplicate) {
			h.logger.Debug("Booking inserted concurrently", "bookNumber", booking.BookNumber)
			return metrics.OutcomeSkipped, nil
		}
		return "", err
	}

	h.logger.Info("Booking added",
		"bookNumber", booking.BookNumber,
		"guest", booking.GuestNames,
		"checkIn", booking.CheckIn.Format("2006-01-02"),
		"nights", booking.DurationNights)
	return metrics.OutcomeAdded, nil
}
