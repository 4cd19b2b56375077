package repository

import (
	"context"

	"hostel-sync-service/internal/domain/entity"
)

// MailSource lists and fetches inbound messages
type MailSource interface {
	List(ctx context.Context, query entity.MailQuery, maxResults int64) ([]string, error)
	Get(ctx context.Context, id string) (*entity.RawMessage, error)
}

// MailSourceOpener opens a mail source authorized for a purpose
type MailSourceOpener interface {
	Open(ctx context.Context, purpose entity.Purpose) (MailSource, error)
}
