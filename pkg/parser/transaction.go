package parser

import (
	"regexp"
	"strings"
	"time"

	"hostel-sync-service/internal/domain/entity"
	"hostel-sync-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// Bank alert field names
const (
	FieldAmount      = "amount"
	FieldDescription = "description"
)

// DefaultTransactionDescription is used when the alert has no Info: line
const DefaultTransactionDescription = "SBM Bank Transaction"

// BankAlertRules extracts fields from a bank credit alert such as
// "Your account XX5151 is credited with INR 110.00 on 28-12-2025.
// Info:UPI/P2P/132948538720/RANGUVEN/. The Curr bal is 59016.87."
var BankAlertRules = RuleSet{
	{
		Name:    FieldAmount,
		Primary: regexp.MustCompile(`credited with INR\s+([\d,]+\.?\d*)`),
	},
	{
		Name:    FieldDescription,
		Primary: regexp.MustCompile(`Info:([^.\n]+)`),
	},
}

// TransactionExtractor builds credit transactions from bank alert bodies
type TransactionExtractor struct {
	rules              RuleSet
	defaultDescription string
	logger             logger.Logger
}

// NewTransactionExtractor creates an extractor using BankAlertRules
func NewTransactionExtractor(logger logger.Logger) *TransactionExtractor {
	return &TransactionExtractor{
		rules:              BankAlertRules,
		defaultDescription: DefaultTransactionDescription,
		logger:             logger,
	}
}

// Extract returns nil, false when the body has no credited amount. The
// transaction date is taken from the Date header, falling back to receivedAt.
func (e *TransactionExtractor) Extract(body, dateHeader string, receivedAt time.Time) (*entity.Transaction, bool) {
	fields := e.rules.Apply(body)

	rawAmount, ok := fields.Get(FieldAmount)
	if !ok {
		return nil, false
	}

	amount, err := ParseAmount(rawAmount)
	if err != nil || !amount.IsPositive() {
		e.logger.Warn("Unusable transaction amount", "raw", rawAmount, "error", err)
		return nil, false
	}

	date, fromHeader := ParseHeaderDate(dateHeader, receivedAt)
	if !fromHeader {
		e.logger.Warn("Date header unusable, using received time", "dateHeader", dateHeader)
	}

	tx := &entity.Transaction{
		Amount:        amount.InexactFloat64(),
		Description:   fields.GetOr(FieldDescription, e.defaultDescription),
		Date:          date,
		Category:      entity.CategoryUncategorized,
		Type:          entity.TransactionTypeCredit,
		PaymentMethod: entity.PaymentMethodUPI,
		Status:        entity.TransactionStatusSuccess,
	}

	e.logger.Debug("Transaction extracted",
		"amount", tx.Amount,
		"description", tx.Description,
		"date", tx.Date)

	return tx, true
}

// ParseAmount parses a decimal amount with thousands separators
func ParseAmount(raw string) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	clean = strings.TrimSuffix(clean, ".")
	return decimal.NewFromString(clean)
}
