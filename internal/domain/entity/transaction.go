package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transaction field defaults for bank credit alerts
const (
	TransactionTypeCredit    = "credit"
	TransactionTypeDebit     = "debit"
	CategoryUncategorized    = "uncategorized"
	PaymentMethodUPI         = "upi"
	TransactionStatusSuccess = "success"
)

// Transaction is a bank movement recorded against the property account
type Transaction struct {
	ID            primitive.ObjectID  `json:"_id,omitempty" bson:"_id,omitempty"`
	Amount        float64             `json:"amount" bson:"amount"`
	Type          string              `json:"type" bson:"type"`
	Category      string              `json:"category" bson:"category"`
	Description   string              `json:"description" bson:"description"`
	Date          time.Time           `json:"date" bson:"date"`
	BookingID     *primitive.ObjectID `json:"bookingId,omitempty" bson:"bookingId,omitempty"`
	InvoiceID     *primitive.ObjectID `json:"invoiceId,omitempty" bson:"invoiceId,omitempty"`
	PaymentMethod string              `json:"paymentMethod" bson:"paymentMethod"`
	Status        string              `json:"status" bson:"status"`
	CreatedAt     time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt" bson:"updatedAt"`
}
