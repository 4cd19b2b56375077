package repository

import (
	"context"

	"hostel-sync-service/internal/domain/entity"
)

// WhatsappRepository defines the interface for WhatsApp operations
type WhatsappRepository interface {
	// SendTemplate sends a template message and returns the message id
	SendTemplate(ctx context.Context, to string, template entity.MessageTemplate) (string, error)
	SendText(ctx context.Context, to, body string) (string, error)
}
