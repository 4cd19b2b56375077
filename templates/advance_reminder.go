package templates

import (
	"fmt"
	"time"

	"hostel-sync-service/internal/domain/entity"
)

// ReminderDateLayout renders dates the way guests read them, e.g. "7 Jan 2026"
const ReminderDateLayout = "2 Jan 2006"

// AdvanceReminder builds the advance_payment_reminder template. Body
// parameters are guest, book number, check-in, check-out and price.
func AdvanceReminder(b *entity.Booking, name, language string, loc *time.Location) entity.MessageTemplate {
	if loc == nil {
		loc = time.UTC
	}
	text := func(s string) entity.TemplateParameter {
		return entity.TemplateParameter{Type: "text", Text: s}
	}

	return entity.MessageTemplate{
		Name:     name,
		Language: entity.TemplateLanguage{Code: language},
		Components: []entity.TemplateComponent{
			{
				Type: "body",
				Parameters: []entity.TemplateParameter{
					text(b.GuestDisplayName()),
					text(b.BookNumber),
					text(b.CheckIn.In(loc).Format(ReminderDateLayout)),
					text(b.CheckOut.In(loc).Format(ReminderDateLayout)),
					text(b.Price),
				},
			},
		},
	}
}

// AdvanceReminderText is the free-form version of the reminder, used where
// templates cannot be sent
func AdvanceReminderText(b *entity.Booking, property string, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return fmt.Sprintf(`Dear %s,

This is a friendly reminder regarding your booking at %s.

Booking Details:
Booking Number: #%s
Check-in: %s
Check-out: %s
Total Amount: ₹%s

We are yet to receive the advance payment for your booking. Please make the advance payment at your earliest convenience to confirm your reservation.

For payment details or any queries, please contact us.

Thank you,
%s`,
		b.GuestDisplayName(),
		property,
		b.BookNumber,
		b.CheckIn.In(loc).Format(ReminderDateLayout),
		b.CheckOut.In(loc).Format(ReminderDateLayout),
		b.Price,
		property)
}
