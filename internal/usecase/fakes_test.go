package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"hostel-sync-service/internal/domain/entity"
	"hostel-sync-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeSource struct {
	ids      []string
	messages map[string]*entity.RawMessage
	getErr   map[string]error
	listErr  error
	queries  []entity.MailQuery
	closed   bool
}

func (f *fakeSource) List(_ context.Context, q entity.MailQuery, max int64) ([]string, error) {
	f.queries = append(f.queries, q)
	if f.listErr != nil {
		return nil, f.listErr
	}
	ids := f.ids
	if max > 0 && int64(len(ids)) > max {
		ids = ids[:max]
	}
	return ids, nil
}

func (f *fakeSource) Get(_ context.Context, id string) (*entity.RawMessage, error) {
	if err, ok := f.getErr[id]; ok {
		return nil, err
	}
	msg, ok := f.messages[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return msg, nil
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

type fakeOpener struct {
	source *fakeSource
	err    error
}

func (o *fakeOpener) Open(context.Context, entity.Purpose) (repository.MailSource, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.source, nil
}

type fakeBookings struct {
	mu       sync.Mutex
	byNumber map[string]*entity.Booking
	pending  []*entity.Booking
	err      error
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{byNumber: map[string]*entity.Booking{}}
}

func (f *fakeBookings) FindByBookNumber(_ context.Context, n string) (*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byNumber[n], nil
}

func (f *fakeBookings) Insert(_ context.Context, b *entity.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byNumber[b.BookNumber]; ok {
		return repository.ErrDuplicate
	}
	b.ID = primitive.NewObjectID()
	f.byNumber[b.BookNumber] = b
	return nil
}

func (f *fakeBookings) FindAdvancePending(context.Context) ([]*entity.Booking, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pending, nil
}

type fakeTransactions struct {
	stored []*entity.Transaction
}

func (f *fakeTransactions) FindDuplicate(_ context.Context, d string, a float64, date time.Time) (*entity.Transaction, error) {
	for _, tx := range f.stored {
		if tx.Description == d && tx.Amount == a && tx.Date.Equal(date) {
			return tx, nil
		}
	}
	return nil, nil
}

func (f *fakeTransactions) Insert(_ context.Context, tx *entity.Transaction) error {
	tx.ID = primitive.NewObjectID()
	f.stored = append(f.stored, tx)
	return nil
}

type fakeRuns struct {
	recorded []*entity.SyncSummary
}

func (f *fakeRuns) Record(_ context.Context, s *entity.SyncSummary) error {
	c := *s
	f.recorded = append(f.recorded, &c)
	return nil
}

func (f *fakeRuns) Recent(context.Context, string, int) ([]*entity.SyncSummary, error) {
	return f.recorded, nil
}

type sentMessage struct {
	to       string
	template *entity.MessageTemplate
	text     string
}

type fakeWhatsapp struct {
	sent    []sentMessage
	failFor map[string]error
}

func (f *fakeWhatsapp) SendTemplate(_ context.Context, to string, t entity.MessageTemplate) (string, error) {
	if err, ok := f.failFor[to]; ok {
		return "", err
	}
	f.sent = append(f.sent, sentMessage{to: to, template: &t})
	return "wamid." + to, nil
}

func (f *fakeWhatsapp) SendText(_ context.Context, to, body string) (string, error) {
	if err, ok := f.failFor[to]; ok {
		return "", err
	}
	f.sent = append(f.sent, sentMessage{to: to, text: body})
	return "wamid." + to, nil
}

func htmlMessage(id, date, html string) *entity.RawMessage {
	return &entity.RawMessage{
		ID: id,
		Headers: []entity.Header{
			{Name: "From", Value: "no-reply@go-mmt.com"},
			{Name: "Subject", Value: "New Booking Received"},
			{Name: "Date", Value: date},
		},
		Payload: &entity.MessagePart{
			MimeType: "multipart/alternative",
			Parts: []*entity.MessagePart{
				{MimeType: "text/html", Data: []byte(html)},
			},
		},
		ReceivedAt: time.Date(2025, 12, 28, 5, 0, 0, 0, time.UTC),
	}
}

func textMessage(id, date, body string) *entity.RawMessage {
	return &entity.RawMessage{
		ID: id,
		Headers: []entity.Header{
			{Name: "From", Value: "info@sbmbank.co.in"},
			{Name: "Subject", Value: "Credit Transaction Alert"},
			{Name: "Date", Value: date},
		},
		Payload:    &entity.MessagePart{MimeType: "text/plain", Data: []byte(body)},
		ReceivedAt: time.Date(2025, 12, 28, 5, 0, 0, 0, time.UTC),
	}
}
