package parser

import (
	"regexp"
	"strings"
	"time"

	"hostel-sync-service/internal/domain/entity"
	"hostel-sync-service/pkg/logger"
)

// Voucher field names
const (
	FieldBookingID = "bookingId"
	FieldCheckIn   = "checkIn"
	FieldCheckOut  = "checkOut"
	FieldGuestName = "guestName"
	FieldTotal     = "amount"
)

// Fixed values for fields the MakeMyTrip voucher does not carry
const (
	SourceMakeMyTrip     = "MakeMyTrip"
	DefaultGuestName     = "Guest"
	DefaultRooms         = 1
	DefaultPersons       = 1
	DefaultBookerCountry = "IN"
	DefaultUnitType      = "Dorm"
	DefaultPhoneNumber   = 0
	SyncedRemark         = "Synced from Gmail"
)

const currencyMark = `(?:₹|&#8377;|Rs\.?|INR)`

// VoucherRules extracts fields from the stripped text of a MakeMyTrip host
// voucher
var VoucherRules = RuleSet{
	{
		Name:     FieldBookingID,
		Primary:  regexp.MustCompile(`(?i)Booking ID\s+([A-Z0-9]+)`),
		Fallback: regexp.MustCompile(`\b(NH\d+)`),
	},
	{
		Name:    FieldCheckIn,
		Primary: regexp.MustCompile(`(?s)CHECK-IN.*?` + voucherDatePattern),
	},
	{
		// Vouchers print both labels side by side above both dates; there
		// the first date after CHECK-OUT is the check-in date.
		Name:     FieldCheckOut,
		Primary:  regexp.MustCompile(`(?s)CHECK-IN\s+CHECK-OUT\s+\d{2}\s+[A-Za-z]{3}\s+['’]\d{2}.*?` + voucherDatePattern),
		Fallback: regexp.MustCompile(`(?s)CHECK-OUT.*?` + voucherDatePattern),
	},
	{
		Name:    FieldGuestName,
		Primary: regexp.MustCompile(`(?s)PRIMARY GUEST DETAILS\s+(.+?)\s+CHECK-IN`),
	},
	{
		Name:     FieldTotal,
		Primary:  regexp.MustCompile(`(?s)Payable to Property \(A-B-C\).*?` + currencyMark + `\s*([\d,]+\.?\d*)`),
		Fallback: regexp.MustCompile(`Payable to Property\s+` + currencyMark + `\s*([\d,]+\.?\d*)`),
	},
}

// CheckInPolicy decides what happens when no check-in date is found
type CheckInPolicy int

const (
	// CheckInFromReceivedDate uses the day the voucher was sent
	CheckInFromReceivedDate CheckInPolicy = iota
	// CheckInRequired drops the voucher
	CheckInRequired
)

// CheckOutPolicy decides what happens when no check-out date is found
type CheckOutPolicy int

const (
	// CheckOutNextDay assumes a single night
	CheckOutNextDay CheckOutPolicy = iota
	// CheckOutRequired drops the voucher
	CheckOutRequired
)

// BookingExtractor builds bookings from travel-agency voucher emails
type BookingExtractor struct {
	CheckInPolicy  CheckInPolicy
	CheckOutPolicy CheckOutPolicy

	rules    RuleSet
	location *time.Location
	logger   logger.Logger
}

// NewBookingExtractor creates an extractor using VoucherRules. Voucher dates
// are interpreted in loc.
func NewBookingExtractor(logger logger.Logger, loc *time.Location) *BookingExtractor {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingExtractor{
		CheckInPolicy:  CheckInFromReceivedDate,
		CheckOutPolicy: CheckOutNextDay,
		rules:          VoucherRules,
		location:       loc,
		logger:         logger,
	}
}

// Fields strips the HTML body and applies the voucher rules
func (e *BookingExtractor) Fields(htmlBody string) Fields {
	return e.rules.Apply(StripMarkup(htmlBody))
}

// Extract returns nil, false unless both a booking id and a payable amount
// are present (and the date policies allow the record).
func (e *BookingExtractor) Extract(htmlBody, dateHeader string, receivedAt time.Time) (*entity.Booking, bool) {
	fields := e.Fields(htmlBody)

	bookNumber, hasID := fields.Get(FieldBookingID)
	rawTotal, hasTotal := fields.Get(FieldTotal)
	if !hasID || !hasTotal {
		e.logger.Debug("Voucher missing mandatory fields",
			"hasBookingId", hasID,
			"hasAmount", hasTotal)
		return nil, false
	}

	total, err := ParseAmount(rawTotal)
	if err != nil {
		e.logger.Warn("Unusable voucher amount", "raw", rawTotal, "error", err)
		return nil, false
	}
	price := strings.ReplaceAll(rawTotal, ",", "")

	bookedOn, _ := ParseHeaderDate(dateHeader, receivedAt)

	checkIn, ok := e.voucherDate(fields, FieldCheckIn)
	if !ok {
		if e.CheckInPolicy == CheckInRequired {
			e.logger.Warn("Voucher without check-in date dropped", "bookingId", bookNumber)
			return nil, false
		}
		y, m, d := bookedOn.In(e.location).Date()
		checkIn = time.Date(y, m, d, 0, 0, 0, 0, e.location)
		e.logger.Warn("Check-in not found, using received date", "bookingId", bookNumber, "checkIn", checkIn)
	}

	checkOut, ok := e.voucherDate(fields, FieldCheckOut)
	if !ok {
		if e.CheckOutPolicy == CheckOutRequired {
			e.logger.Warn("Voucher without check-out date dropped", "bookingId", bookNumber)
			return nil, false
		}
		checkOut = checkIn.AddDate(0, 0, 1)
	}

	booking := &entity.Booking{
		BookNumber:        strings.TrimSpace(bookNumber),
		BookedBy:          SourceMakeMyTrip,
		GuestNames:        fields.GetOr(FieldGuestName, DefaultGuestName),
		CheckIn:           checkIn,
		CheckOut:          checkOut,
		BookedOn:          bookedOn,
		Status:            entity.BookingConfirmed,
		Rooms:             DefaultRooms,
		Persons:           DefaultPersons,
		Price:             price,
		CommissionPercent: 0,
		CommissionAmount:  "0",
		Remarks:           SyncedRemark,
		BookerCountry:     DefaultBookerCountry,
		UnitType:          DefaultUnitType,
		DurationNights:    NightsBetween(checkIn, checkOut),
		PhoneNumber:       DefaultPhoneNumber,
		BookingStatus:     entity.BookingActive,
		// MakeMyTrip only settles prepaid bookings with the property
		AdvanceReceived: true,
		AdvanceAmount:   total.InexactFloat64(),
	}

	e.logger.Debug("Booking extracted",
		"bookingId", booking.BookNumber,
		"guest", booking.GuestNames,
		"checkIn", booking.CheckIn,
		"checkOut", booking.CheckOut,
		"price", booking.Price)

	return booking, true
}

func (e *BookingExtractor) voucherDate(fields Fields, name string) (time.Time, bool) {
	raw, ok := fields.Get(name)
	if !ok {
		return time.Time{}, false
	}
	t, err := ParseVoucherDate(raw, e.location)
	if err != nil {
		e.logger.Warn("Unparsable voucher date", "field", name, "raw", raw, "error", err)
		return time.Time{}, false
	}
	return t, true
}
