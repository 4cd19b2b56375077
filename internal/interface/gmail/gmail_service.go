package gmail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hostel-sync-service/internal/domain/entity"
	"hostel-sync-service/internal/domain/repository"
	"hostel-sync-service/internal/infrastructure/oauth"
	"hostel-sync-service/pkg/logger"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const userID = "me"

// GmailService lists and fetches messages through the Gmail API
type GmailService struct {
	gmailService *gmail.Service
	logger       logger.Logger
	// mapErr lets the opener turn revoked-token errors into
	// authorization errors
	mapErr func(error) error
}

// NewGmailService creates a new Gmail service authorized by tokenSource
func NewGmailService(ctx context.Context, tokenSource oauth2.TokenSource, logger logger.Logger) (*GmailService, error) {
	return NewGmailServiceWithOptions(ctx, logger, option.WithTokenSource(tokenSource))
}

// NewGmailServiceWithOptions creates a Gmail service from raw client options
func NewGmailServiceWithOptions(ctx context.Context, logger logger.Logger, opts ...option.ClientOption) (*GmailService, error) {
	service, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &GmailService{
		gmailService: service,
		logger:       logger,
		mapErr:       func(err error) error { return err },
	}, nil
}

var _ repository.MailSource = (*GmailService)(nil)

// BuildQuery renders a mailbox query in Gmail search syntax
func BuildQuery(q entity.MailQuery) string {
	var parts []string
	if q.From != "" {
		parts = append(parts, "from:"+q.From)
	}
	if q.Subject != "" {
		parts = append(parts, fmt.Sprintf("subject:%q", q.Subject))
	}
	return strings.Join(parts, " ")
}

// List returns up to maxResults message ids matching query, newest first
func (s *GmailService) List(ctx context.Context, query entity.MailQuery, maxResults int64) ([]string, error) {
	q := BuildQuery(query)
	s.logger.Info("Querying Gmail", "query", q, "maxResults", maxResults)

	req := s.gmailService.Users.Messages.List(userID).Q(q).Context(ctx)
	if maxResults > 0 {
		req = req.MaxResults(maxResults)
	}

	resp, err := req.Do()
	if err != nil {
		return nil, s.mapErr(fmt.Errorf("failed to list messages: %w", err))
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		ids = append(ids, msg.Id)
	}
	return ids, nil
}

// Get fetches the full message with its part tree
func (s *GmailService) Get(ctx context.Context, id string) (*entity.RawMessage, error) {
	msg, err := s.gmailService.Users.Messages.Get(userID, id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, s.mapErr(fmt.Errorf("failed to get message %s: %w", id, err))
	}
	return ConvertMessage(msg), nil
}

// ConvertMessage converts a Gmail message to the provider-neutral form
func ConvertMessage(msg *gmail.Message) *entity.RawMessage {
	raw := &entity.RawMessage{
		ID:         msg.Id,
		ReceivedAt: time.UnixMilli(msg.InternalDate),
	}
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			raw.Headers = append(raw.Headers, entity.Header{Name: h.Name, Value: h.Value})
		}
		raw.Payload = convertPart(msg.Payload)
	}
	return raw
}

func convertPart(p *gmail.MessagePart) *entity.MessagePart {
	part := &entity.MessagePart{
		MimeType: p.MimeType,
		Filename: p.Filename,
	}
	if p.Body != nil {
		part.EncodedData = p.Body.Data
	}
	for _, child := range p.Parts {
		part.Parts = append(part.Parts, convertPart(child))
	}
	return part
}

// Opener opens Gmail sources with the stored credential of each purpose
type Opener struct {
	provider *oauth.CredentialProvider
	logger   logger.Logger
}

// NewOpener creates an opener backed by provider
func NewOpener(provider *oauth.CredentialProvider, logger logger.Logger) *Opener {
	return &Opener{provider: provider, logger: logger}
}

var _ repository.MailSourceOpener = (*Opener)(nil)

// Open refreshes the purpose's token and returns a Gmail source. A missing
// or revoked token yields an *oauth.AuthRequiredError.
func (o *Opener) Open(ctx context.Context, purpose entity.Purpose) (repository.MailSource, error) {
	ts, err := o.provider.TokenSource(ctx, purpose)
	if err != nil {
		return nil, err
	}

	svc, err := NewGmailService(ctx, ts, o.logger.With("purpose", purpose.String()))
	if err != nil {
		return nil, err
	}
	svc.mapErr = func(err error) error {
		return o.provider.HandleTokenError(ctx, purpose, err)
	}
	return svc, nil
}
