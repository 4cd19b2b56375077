package mailfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"hostel-sync-service/internal/domain/entity"
	"hostel-sync-service/internal/domain/repository"
)

// DirSource serves the .eml files of one directory as a mailbox. Message ids
// are file names.
type DirSource struct {
	dir string
}

// NewDirSource creates a source over dir
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

var _ repository.MailSource = (*DirSource)(nil)

// List returns the files whose From and Subject headers contain the query
// values, newest first
func (s *DirSource) List(ctx context.Context, query entity.MailQuery, maxResults int64) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.eml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.dir, err)
	}

	var matched []*entity.RawMessage
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		msg, err := s.Get(ctx, filepath.Base(path))
		if err != nil {
			return nil, err
		}
		if Matches(msg, query) {
			matched = append(matched, msg)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].ReceivedAt.After(matched[j].ReceivedAt)
	})

	ids := make([]string, 0, len(matched))
	for _, msg := range matched {
		if maxResults > 0 && int64(len(ids)) >= maxResults {
			break
		}
		ids = append(ids, msg.ID)
	}
	return ids, nil
}

// Get parses one file of the directory
func (s *DirSource) Get(_ context.Context, id string) (*entity.RawMessage, error) {
	path := filepath.Join(s.dir, filepath.Base(id))
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	msg, err := Parse(filepath.Base(id), f)
	if err != nil {
		return nil, err
	}
	if info, err := f.Stat(); err == nil {
		receivedOr(msg, info.ModTime())
	}
	return msg, nil
}

// ReadFile parses a single .eml file
func ReadFile(path string) (*entity.RawMessage, error) {
	return NewDirSource(filepath.Dir(path)).Get(context.Background(), filepath.Base(path))
}

// Matches reports whether the message satisfies a mailbox query using
// case-insensitive substring matching
func Matches(msg *entity.RawMessage, query entity.MailQuery) bool {
	if query.From != "" && !containsFold(msg.From(), query.From) {
		return false
	}
	if query.Subject != "" && !containsFold(msg.Subject(), query.Subject) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// DirOpener serves the same directory for every purpose
type DirOpener struct {
	dir string
}

// NewDirOpener creates an opener over dir
func NewDirOpener(dir string) *DirOpener {
	return &DirOpener{dir: dir}
}

var _ repository.MailSourceOpener = (*DirOpener)(nil)

// Open returns a source over the directory
func (o *DirOpener) Open(_ context.Context, _ entity.Purpose) (repository.MailSource, error) {
	if _, err := os.Stat(o.dir); err != nil {
		return nil, fmt.Errorf("failed to open mail directory: %w", err)
	}
	return NewDirSource(o.dir), nil
}
