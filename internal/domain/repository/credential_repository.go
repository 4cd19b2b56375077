package repository

import (
	"context"
	"errors"

	"hostel-sync-service/internal/domain/entity"
)

// ErrCredentialNotFound is returned when no refresh token is stored
var ErrCredentialNotFound = errors.New("credential not found")

// ErrAuthorizationRequired is matched by errors that need a user to
// re-authorize the mailbox before syncing can continue
var ErrAuthorizationRequired = errors.New("mailbox authorization required")

// CredentialRepository stores one refresh token per sync purpose
type CredentialRepository interface {
	Get(ctx context.Context, purpose entity.Purpose) (string, error)
	Save(ctx context.Context, purpose entity.Purpose, refreshToken string) error
	Delete(ctx context.Context, purpose entity.Purpose) error
}
