package entity

import (
	"fmt"
	"time"
)

// Purpose names what a stored mailbox credential is used for
type Purpose int

const (
	PurposeTransactions Purpose = iota + 1
	PurposeBookings
)

// AllPurposes lists every sync purpose
var AllPurposes = []Purpose{PurposeTransactions, PurposeBookings}

// String returns the auth type used in URLs and state payloads
func (p Purpose) String() string {
	switch p {
	case PurposeTransactions:
		return "transactions"
	case PurposeBookings:
		return "bookings"
	default:
		return fmt.Sprintf("purpose(%d)", int(p))
	}
}

// SettingKey is the system settings key holding the refresh token
func (p Purpose) SettingKey() string {
	if p == PurposeBookings {
		return "gmail_refresh_token_bookings"
	}
	return "gmail_refresh_token"
}

// ParsePurpose parses an auth type. Anything other than "bookings" maps to
// transactions, matching the default of the authorization endpoint.
func ParsePurpose(s string) Purpose {
	if s == PurposeBookings.String() {
		return PurposeBookings
	}
	return PurposeTransactions
}

// SystemSetting is a key/value row of the systemsettings collection
type SystemSetting struct {
	Key       string    `bson:"key"`
	Value     string    `bson:"value"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}
