package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"hostel-sync-service/internal/domain/entity"
	"hostel-sync-service/internal/domain/repository"
	"hostel-sync-service/pkg/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
)

// ErrAuthorizationRequired means the mailbox must be re-authorized by a user
var ErrAuthorizationRequired = repository.ErrAuthorizationRequired

// AuthRequiredError carries the purpose and the path that starts the
// consent flow for it
type AuthRequiredError struct {
	Purpose entity.Purpose
	AuthURL string
	Err     error
}

func (e *AuthRequiredError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gmail authorization required for %s: %v", e.Purpose, e.Err)
	}
	return fmt.Sprintf("gmail authorization required for %s", e.Purpose)
}

func (e *AuthRequiredError) Is(target error) bool {
	return target == ErrAuthorizationRequired
}

func (e *AuthRequiredError) Unwrap() error {
	return e.Err
}

// ReauthPath is the local endpoint that redirects to the consent screen
func ReauthPath(purpose entity.Purpose) string {
	return "/api/gmail/auth?type=" + url.QueryEscape(purpose.String())
}

// authState is the payload round-tripped through the OAuth state parameter
type authState struct {
	Type string `json:"type"`
}

// CredentialProvider turns stored refresh tokens into Gmail token sources
type CredentialProvider struct {
	config *oauth2.Config
	store  repository.CredentialRepository
	logger logger.Logger
}

// NewCredentialProvider creates a provider against Google's OAuth endpoint
// with the read-only Gmail scope
func NewCredentialProvider(clientID, clientSecret, redirectURL string, store repository.CredentialRepository, logger logger.Logger) *CredentialProvider {
	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailReadonlyScope},
	}
	return NewCredentialProviderWithConfig(config, store, logger)
}

// NewCredentialProviderWithConfig creates a provider with an explicit OAuth
// configuration
func NewCredentialProviderWithConfig(config *oauth2.Config, store repository.CredentialRepository, logger logger.Logger) *CredentialProvider {
	return &CredentialProvider{
		config: config,
		store:  store,
		logger: logger,
	}
}

// TokenSource loads the refresh token for purpose and refreshes it once so
// revoked grants surface here. A missing or revoked token yields an
// *AuthRequiredError; a revoked one is also purged from the store.
func (p *CredentialProvider) TokenSource(ctx context.Context, purpose entity.Purpose) (oauth2.TokenSource, error) {
	refreshToken, err := p.store.Get(ctx, purpose)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return nil, p.authRequired(purpose, nil)
		}
		return nil, fmt.Errorf("failed to load credential for %s: %w", purpose, err)
	}
	if refreshToken == "" {
		return nil, p.authRequired(purpose, nil)
	}

	token := &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now(), // Force refresh
	}
	ts := p.config.TokenSource(ctx, token)

	fresh, err := ts.Token()
	if err != nil {
		if IsInvalidGrant(err) {
			p.logger.Warn("Refresh token rejected, clearing stored credential", "purpose", purpose.String())
			if delErr := p.Invalidate(ctx, purpose); delErr != nil {
				p.logger.Error("Failed to clear revoked credential", "purpose", purpose.String(), "error", delErr)
			}
			return nil, p.authRequired(purpose, err)
		}
		return nil, fmt.Errorf("failed to refresh token for %s: %w", purpose, err)
	}

	if fresh.RefreshToken != "" && fresh.RefreshToken != refreshToken {
		if err := p.store.Save(ctx, purpose, fresh.RefreshToken); err != nil {
			p.logger.Warn("Failed to persist rotated refresh token", "purpose", purpose.String(), "error", err)
		}
	}

	return ts, nil
}

// HandleTokenError converts an invalid_grant error raised mid-run into an
// *AuthRequiredError and purges the stored token. Other errors are returned
// unchanged.
func (p *CredentialProvider) HandleTokenError(ctx context.Context, purpose entity.Purpose, err error) error {
	if err == nil || !IsInvalidGrant(err) {
		return err
	}
	if delErr := p.Invalidate(ctx, purpose); delErr != nil {
		p.logger.Error("Failed to clear revoked credential", "purpose", purpose.String(), "error", delErr)
	}
	return p.authRequired(purpose, err)
}

// Invalidate removes the stored refresh token for purpose
func (p *CredentialProvider) Invalidate(ctx context.Context, purpose entity.Purpose) error {
	err := p.store.Delete(ctx, purpose)
	if err != nil && !errors.Is(err, repository.ErrCredentialNotFound) {
		return fmt.Errorf("failed to delete credential for %s: %w", purpose, err)
	}
	return nil
}

// Store saves a refresh token for purpose
func (p *CredentialProvider) Store(ctx context.Context, purpose entity.Purpose, refreshToken string) error {
	if refreshToken == "" {
		return errors.New("empty refresh token")
	}
	if err := p.store.Save(ctx, purpose, refreshToken); err != nil {
		return fmt.Errorf("failed to save credential for %s: %w", purpose, err)
	}
	p.logger.Info("Refresh token stored", "purpose", purpose.String())
	return nil
}

// AuthURL generates the consent URL for purpose. Offline access with a
// forced prompt makes Google issue a refresh token every time.
func (p *CredentialProvider) AuthURL(purpose entity.Purpose) string {
	state, _ := json.Marshal(authState{Type: purpose.String()})
	return p.config.AuthCodeURL(string(state), oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ParseState returns the purpose encoded in an OAuth state value. Unknown
// or malformed state maps to transactions.
func ParseState(state string) entity.Purpose {
	var s authState
	if err := json.Unmarshal([]byte(state), &s); err != nil {
		return entity.PurposeTransactions
	}
	return entity.ParsePurpose(s.Type)
}

// Exchange exchanges an authorization code for a token
func (p *CredentialProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	return token, nil
}

// IsInvalidGrant reports whether err is the token endpoint rejecting a
// refresh token
func IsInvalidGrant(err error) bool {
	if err == nil {
		return false
	}
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.ErrorCode == "invalid_grant" {
		return true
	}
	return strings.Contains(err.Error(), "invalid_grant")
}

func (p *CredentialProvider) authRequired(purpose entity.Purpose, cause error) error {
	return &AuthRequiredError{
		Purpose: purpose,
		AuthURL: ReauthPath(purpose),
		Err:     cause,
	}
}
