package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking status values
const (
	BookingConfirmed = "confirmed"
	BookingActive    = "active"
	BookingCancelled = "cancelled"
)

// Booking is a reservation at the property
type Booking struct {
	ID                primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	BookNumber        string             `json:"bookNumber" bson:"bookNumber"`
	BookedBy          string             `json:"bookedBy" bson:"bookedBy"`
	GuestNames        string             `json:"guestNames,omitempty" bson:"guestNames,omitempty"`
	CheckIn           time.Time          `json:"checkIn" bson:"checkIn"`
	CheckOut          time.Time          `json:"checkOut" bson:"checkOut"`
	BookedOn          time.Time          `json:"bookedOn" bson:"bookedOn"`
	Status            string             `json:"status" bson:"status"`
	Rooms             int                `json:"rooms" bson:"rooms"`
	Persons           int                `json:"persons" bson:"persons"`
	Price             string             `json:"price" bson:"price"`
	CommissionPercent float64            `json:"commissionPercent" bson:"commissionPercent"`
	CommissionAmount  string             `json:"commissionAmount" bson:"commissionAmount"`
	Remarks           string             `json:"remarks,omitempty" bson:"remarks,omitempty"`
	BookerCountry     string             `json:"bookerCountry" bson:"bookerCountry"`
	UnitType          string             `json:"unitType" bson:"unitType"`
	DurationNights    int                `json:"durationNights" bson:"durationNights"`
	PhoneNumber       int64              `json:"phoneNumber" bson:"phoneNumber"`
	AdvanceReceived   bool               `json:"advanceReceived" bson:"advanceReceived"`
	AdvanceAmount     float64            `json:"advanceAmount,omitempty" bson:"advanceAmount,omitempty"`
	BookingStatus     string             `json:"bookingStatus" bson:"bookingStatus"`
	CreatedAt         time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// GuestDisplayName returns the guest names, or who booked when unknown
func (b *Booking) GuestDisplayName() string {
	if b.GuestNames != "" {
		return b.GuestNames
	}
	return b.BookedBy
}
