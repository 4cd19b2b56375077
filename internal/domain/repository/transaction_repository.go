package repository

import (
	"context"
	"time"

	"hostel-sync-service/internal/domain/entity"
)

// TransactionRepository defines the interface for transaction storage operations
type TransactionRepository interface {
	// FindDuplicate returns the transaction with exactly this description,
	// amount and date, or nil when none exists
	FindDuplicate(ctx context.Context, description string, amount float64, date time.Time) (*entity.Transaction, error)
	Insert(ctx context.Context, tx *entity.Transaction) error
}
