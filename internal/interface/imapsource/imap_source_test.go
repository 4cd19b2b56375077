package imapsource

import (
	"context"
	"testing"

	"hostel-sync-service/internal/domain/entity"
	"hostel-sync-service/pkg/logger"

	"github.com/emersion/go-imap/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchCriteria(t *testing.T) {
	c := SearchCriteria(entity.MailQuery{From: "info@sbmbank.co.in", Subject: "Credit Transaction Alert"})
	require.Len(t, c.Header, 2)
	assert.Equal(t, imap.SearchCriteriaHeaderField{Key: "From", Value: "info@sbmbank.co.in"}, c.Header[0])
	assert.Equal(t, imap.SearchCriteriaHeaderField{Key: "Subject", Value: "Credit Transaction Alert"}, c.Header[1])

	assert.Empty(t, SearchCriteria(entity.MailQuery{}).Header)
}

func TestNewestFirst(t *testing.T) {
	uids := []imap.UID{3, 10, 7, 1}

	assert.Equal(t, []string{"10", "7", "3", "1"}, newestFirst(uids, 0))
	assert.Equal(t, []string{"10", "7"}, newestFirst(uids, 2))
	assert.Equal(t, []imap.UID{3, 10, 7, 1}, uids)
	assert.Empty(t, newestFirst(nil, 5))
}

func TestGet_InvalidUID(t *testing.T) {
	src := NewSource(Config{Host: "127.0.0.1", Port: "1"}, logger.NewNopLogger())
	_, err := src.Get(context.Background(), "not-a-uid")
	assert.Error(t, err)
	assert.NoError(t, src.Close())
}

func TestOpener_DefaultMailbox(t *testing.T) {
	src, err := NewOpener(Config{}, logger.NewNopLogger()).Open(context.Background(), entity.PurposeBookings)
	require.NoError(t, err)
	assert.Equal(t, DefaultMailbox, src.(*Source).cfg.Mailbox)
}
