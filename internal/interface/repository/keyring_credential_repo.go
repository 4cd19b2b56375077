package repository

import (
	"context"
	"errors"
	"fmt"

	"hostel-sync-service/internal/domain/entity"
	"hostel-sync-service/internal/domain/repository"

	"github.com/99designs/keyring"
)

const keyringService = "hostel-sync"

// KeyringCredentialRepository keeps refresh tokens in the OS keyring. It
// serves local CLI runs where no MongoDB is available.
type KeyringCredentialRepository struct {
	ring keyring.Keyring
}

// OpenKeyring opens the system keyring, falling back to an encrypted file
// store under dir
func OpenKeyring(dir string) (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: keyringService,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  dir,
		FilePasswordFunc:         keyring.FixedStringPrompt(keyringService + "-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// NewKeyringCredentialRepository wraps an opened keyring
func NewKeyringCredentialRepository(ring keyring.Keyring) *KeyringCredentialRepository {
	return &KeyringCredentialRepository{ring: ring}
}

var _ repository.CredentialRepository = (*KeyringCredentialRepository)(nil)

// Get returns the refresh token for purpose
func (r *KeyringCredentialRepository) Get(_ context.Context, purpose entity.Purpose) (string, error) {
	item, err := r.ring.Get(purpose.SettingKey())
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", repository.ErrCredentialNotFound
		}
		return "", fmt.Errorf("getting credential %q: %w", purpose.SettingKey(), err)
	}
	if len(item.Data) == 0 {
		return "", repository.ErrCredentialNotFound
	}
	return string(item.Data), nil
}

// Save stores the refresh token for purpose
func (r *KeyringCredentialRepository) Save(_ context.Context, purpose entity.Purpose, refreshToken string) error {
	err := r.ring.Set(keyring.Item{
		Key:         purpose.SettingKey(),
		Data:        []byte(refreshToken),
		Label:       "Gmail refresh token (" + purpose.String() + ")",
		Description: "hostel inbox sync",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", purpose.SettingKey(), err)
	}
	return nil
}

// Delete removes the refresh token for purpose
func (r *KeyringCredentialRepository) Delete(_ context.Context, purpose entity.Purpose) error {
	err := r.ring.Remove(purpose.SettingKey())
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", purpose.SettingKey(), err)
	}
	return nil
}
