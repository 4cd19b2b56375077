// Package imapsource serves a mailbox over IMAP for deployments that do not
// use the Gmail API.
package imapsource

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"hostel-sync-service/internal/domain/entity"
	"hostel-sync-service/internal/domain/repository"
	"hostel-sync-service/internal/interface/mailfile"
	"hostel-sync-service/pkg/logger"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// DefaultMailbox is searched when none is configured
const DefaultMailbox = "INBOX"

// Config holds IMAP connection settings
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	TLS      bool
	Mailbox  string
}

// Source lists and fetches messages over one IMAP session. Message ids are
// UIDs of the selected mailbox.
type Source struct {
	cfg    Config
	logger logger.Logger

	mu     sync.Mutex
	client *imapclient.Client
}

// NewSource creates a source; the connection is opened on first use
func NewSource(cfg Config, logger logger.Logger) *Source {
	if cfg.Mailbox == "" {
		cfg.Mailbox = DefaultMailbox
	}
	return &Source{cfg: cfg, logger: logger}
}

var _ repository.MailSource = (*Source)(nil)

func (s *Source) connect() (*imapclient.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}

	addr := s.cfg.Host + ":" + s.cfg.Port
	var (
		client *imapclient.Client
		err    error
	)
	if s.cfg.TLS {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(s.cfg.Username, s.cfg.Password).Wait(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("IMAP login for %s: %v: %w", s.cfg.Username, err, repository.ErrAuthorizationRequired)
	}

	if _, err := client.Select(s.cfg.Mailbox, &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("selecting %s: %w", s.cfg.Mailbox, err)
	}

	s.client = client
	return client, nil
}

// List searches the FROM and SUBJECT headers and returns the newest
// maxResults UIDs, newest first
func (s *Source) List(ctx context.Context, query entity.MailQuery, maxResults int64) ([]string, error) {
	client, err := s.connect()
	if err != nil {
		return nil, err
	}

	searchData, err := client.UIDSearch(SearchCriteria(query), nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching messages: %w", err)
	}

	uids := searchData.AllUIDs()
	return newestFirst(uids, maxResults), nil
}

// Get fetches the full body of one UID without marking it seen
func (s *Source) Get(ctx context.Context, id string) (*entity.RawMessage, error) {
	uid, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid IMAP uid %q: %w", id, err)
	}

	client, err := s.connect()
	if err != nil {
		return nil, err
	}

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchOpts := &imap.FetchOptions{
		UID:          true,
		InternalDate: true,
		BodySection:  []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := client.Fetch(imap.UIDSetNum(imap.UID(uid)), fetchOpts)
	defer fetchCmd.Close()

	data := fetchCmd.Next()
	if data == nil {
		return nil, fmt.Errorf("message %s not found", id)
	}
	buf, err := data.Collect()
	if err != nil {
		return nil, fmt.Errorf("fetching message %s: %w", id, err)
	}

	raw := buf.FindBodySection(bodySection)
	if raw == nil {
		return nil, fmt.Errorf("message %s has no body", id)
	}

	msg, err := mailfile.Parse(id, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	if !buf.InternalDate.IsZero() {
		msg.ReceivedAt = buf.InternalDate
	}
	return msg, nil
}

// Close logs out of the session
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}
	err := s.client.Logout().Wait()
	_ = s.client.Close()
	s.client = nil
	return err
}

// SearchCriteria turns a mailbox query into IMAP HEADER search keys
func SearchCriteria(query entity.MailQuery) *imap.SearchCriteria {
	criteria := &imap.SearchCriteria{}
	if query.From != "" {
		criteria.Header = append(criteria.Header, imap.SearchCriteriaHeaderField{Key: "From", Value: query.From})
	}
	if query.Subject != "" {
		criteria.Header = append(criteria.Header, imap.SearchCriteriaHeaderField{Key: "Subject", Value: query.Subject})
	}
	return criteria
}

func newestFirst(uids []imap.UID, maxResults int64) []string {
	sorted := append([]imap.UID(nil), uids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })
	if maxResults > 0 && int64(len(sorted)) > maxResults {
		sorted = sorted[:maxResults]
	}

	ids := make([]string, len(sorted))
	for i, uid := range sorted {
		ids[i] = strconv.FormatUint(uint64(uid), 10)
	}
	return ids
}

// Opener hands out IMAP sources. One mailbox serves every purpose.
type Opener struct {
	cfg    Config
	logger logger.Logger
}

// NewOpener creates an opener for cfg
func NewOpener(cfg Config, logger logger.Logger) *Opener {
	return &Opener{cfg: cfg, logger: logger}
}

var _ repository.MailSourceOpener = (*Opener)(nil)

// Open returns a fresh session-backed source
func (o *Opener) Open(_ context.Context, purpose entity.Purpose) (repository.MailSource, error) {
	return NewSource(o.cfg, o.logger.With("purpose", purpose.String())), nil
}
