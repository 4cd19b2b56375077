package repository

import (
	"context"
	"errors"

	"hostel-sync-service/internal/domain/entity"
)

// ErrDuplicate is returned by inserts that violate a uniqueness constraint
var ErrDuplicate = errors.New("duplicate record")

// BookingRepository defines the interface for booking storage operations
type BookingRepository interface {
	// FindByBookNumber returns nil when no booking carries the number
	FindByBookNumber(ctx context.Context, bookNumber string) (*entity.Booking, error)
	// Insert returns ErrDuplicate when the book number already exists
	Insert(ctx context.Context, booking *entity.Booking) error
	// FindAdvancePending lists active bookings whose advance is not received,
	// ordered by check-in
	FindAdvancePending(ctx context.Context) ([]*entity.Booking, error)
}
