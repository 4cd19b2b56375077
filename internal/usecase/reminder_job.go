package usecase

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"hostel-sync-service/internal/domain/entity"
	"hostel-sync-service/internal/domain/repository"
	"hostel-sync-service/pkg/logger"
	"hostel-sync-service/pkg/metrics"
	"hostel-sync-service/templates"
)

// DefaultCountryCode is prefixed to bare 10 digit phone numbers
const DefaultCountryCode = "91"

var nonDigitRegex = regexp.MustCompile(`\D`)

// ReminderConfig configures the advance payment reminders
type ReminderConfig struct {
	// Template is the approved WhatsApp template; empty sends plain text
	Template     string
	Language     string
	PropertyName string
	// Delay is waited between two sends
	Delay    time.Duration
	Location *time.Location
}

// ReminderJob messages guests whose advance payment is still pending
type ReminderJob struct {
	bookings repository.BookingRepository
	whatsapp repository.WhatsappRepository
	cfg      ReminderConfig
	metrics  *metrics.Metrics
	logger   logger.Logger
}

// NewReminderJob creates a new reminder job
func NewReminderJob(
	bookings repository.BookingRepository,
	whatsapp repository.WhatsappRepository,
	cfg ReminderConfig,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *ReminderJob {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &ReminderJob{
		bookings: bookings,
		whatsapp: whatsapp,
		cfg:      cfg,
		metrics:  metrics,
		logger:   logger,
	}
}

// Pending lists the bookings that would be reminded, ordered by check-in
func (j *ReminderJob) Pending(ctx context.Context) ([]*entity.Booking, error) {
	return j.bookings.FindAdvancePending(ctx)
}

// Run sends one reminder per pending booking. Failed sends are collected in
// the result; only the lookup failing or ctx ending returns an error.
func (j *ReminderJob) Run(ctx context.Context) (*entity.ReminderResult, error) {
	pending, err := j.bookings.FindAdvancePending(ctx)
	if err != nil {
		j.metrics.ErrorsCount.WithLabelValues("reminders").Inc()
		return nil, err
	}

	result := &entity.ReminderResult{
		Total:  len(pending),
		Errors: []entity.ReminderError{},
	}
	j.logger.Info("Bookings with pending advance", "count", len(pending))

	for i, booking := range pending {
		if i > 0 {
			if err := wait(ctx, j.cfg.Delay); err != nil {
				return result, err
			}
		}

		if err := j.send(ctx, booking); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, entity.ReminderError{
				BookingID:  booking.ID.Hex(),
				BookNumber: booking.BookNumber,
				Error:      err.Error(),
			})
			j.metrics.RemindersSent.WithLabelValues("failed").Inc()
			j.logger.Error("Failed to send reminder", "bookNumber", booking.BookNumber, "error", err)
			continue
		}

		result.Sent++
		j.metrics.RemindersSent.WithLabelValues("sent").Inc()
		j.logger.Info("Reminder sent", "bookNumber", booking.BookNumber)
	}

	j.logger.Info("Reminders processed", "sent", result.Sent, "failed", result.Failed)
	return result, nil
}

func (j *ReminderJob) send(ctx context.Context, booking *entity.Booking) error {
	phone := FormatPhoneNumber(strconv.FormatInt(booking.PhoneNumber, 10))
	if booking.PhoneNumber <= 0 || phone == "" {
		return errors.New("booking has no phone number")
	}

	if j.cfg.Template == "" {
		_, err := j.whatsapp.SendText(ctx, phone, templates.AdvanceReminderText(booking, j.cfg.PropertyName, j.cfg.Location))
		return err
	}

	tmpl := templates.AdvanceReminder(booking, j.cfg.Template, j.cfg.Language, j.cfg.Location)
	_, err := j.whatsapp.SendTemplate(ctx, phone, tmpl)
	return err
}

// FormatPhoneNumber keeps the digits of a phone number and prefixes the
// country code to bare 10 digit numbers
func FormatPhoneNumber(phone string) string {
	cleaned := nonDigitRegex.ReplaceAllString(phone, "")
	if len(cleaned) == 10 && !strings.HasPrefix(cleaned, DefaultCountryCode) {
		return DefaultCountryCode + cleaned
	}
	return cleaned
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
