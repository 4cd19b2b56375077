package parser

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
)

// VoucherDateLayout is the layout of a voucher date once the year is expanded
const VoucherDateLayout = "02 Jan 2006"

// voucherDatePattern matches "07 Jan '26". Vouchers sometimes carry a
// typographic apostrophe instead of an ASCII one.
const voucherDatePattern = `(\d{2}\s+[A-Za-z]{3}\s+['’]\d{2})`

var apostropheRegex = regexp.MustCompile(`\s*['’]`)

// ParseVoucherDate parses "DD Mon 'YY" as midnight in loc. The two digit year
// is always placed in the 2000s.
func ParseVoucherDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	expanded := apostropheRegex.ReplaceAllString(strings.TrimSpace(value), " 20")
	expanded = whitespaceRegex.ReplaceAllString(expanded, " ")

	t, err := time.ParseInLocation(VoucherDateLayout, expanded, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse voucher date %q: %w", value, err)
	}
	return t, nil
}

// ParseHeaderDate parses an RFC 5322 Date header. When the header is missing
// or malformed, fallback is returned with ok=false.
func ParseHeaderDate(header string, fallback time.Time) (time.Time, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return fallback, false
	}
	t, err := mail.ParseDate(header)
	if err != nil {
		return fallback, false
	}
	return t, true
}

// NightsBetween returns the whole number of nights between two dates,
// rounded to the nearest day so DST shifts do not lose a night.
func NightsBetween(checkIn, checkOut time.Time) int {
	days := checkOut.Sub(checkIn).Hours() / 24
	if days < 0 {
		return -int(-days + 0.5)
	}
	return int(days + 0.5)
}
