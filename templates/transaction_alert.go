package templates

import (
	"context"
	"fmt"

	"hostel-sync-service/internal/domain/entity"
	"hostel-sync-service/internal/domain/repository"
	"hostel-sync-service/pkg/logger"
	"hostel-sync-service/pkg/metrics"
	"hostel-sync-service/pkg/parser"
)

// transactionSnippetLength bounds the body logged for unparsed alerts
const transactionSnippetLength = 200

// TransactionAlertHandler turns bank credit alerts into transactions
type TransactionAlertHandler struct {
	extractor  *parser.TransactionExtractor
	repo       repository.TransactionRepository
	query      entity.MailQuery
	maxResults int64
	logger     logger.Logger
}

// NewTransactionAlertHandler creates a handler for alerts matching query
func NewTransactionAlertHandler(repo repository.TransactionRepository, query entity.MailQuery, maxResults int64, logger logger.Logger) *TransactionAlertHandler {
	return &TransactionAlertHandler{
		extractor:  parser.NewTransactionExtractor(logger),
		repo:       repo,
		query:      query,
		maxResults: maxResults,
		logger:     logger,
	}
}

func (h *TransactionAlertHandler) Purpose() entity.Purpose { return entity.PurposeTransactions }
func (h *TransactionAlertHandler) Query() entity.MailQuery { return h.query }
func (h *TransactionAlertHandler) MaxResults() int64 { return h.maxResults }
func (h *TransactionAlertHandler) SnippetLength() int { return transactionSnippetLength }

// CanHandle determines if this handler can process the given email
func (h *TransactionAlertHandler) CanHandle(from, subject string) bool {
	return matchesQuery(h.query, from, subject)
}

// Extract builds a transaction from a decoded alert body
func (h *TransactionAlertHandler) Extract(msg *entity.RawMessage, body string) (interface{}, bool) {
	tx, ok := h.extractor.Extract(body, msg.Header("Date"), msg.ReceivedAt)
	if !ok {
		return nil, false
	}
	return tx, true
}

// Save inserts the transaction unless one with the same description, amount
// and date already exists
func (h *TransactionAlertHandler) Save(ctx context.Context, record interface{}) (string, error) {
	tx, ok := record.(*entity.Transaction)
	if !ok {
		return "", fmt.Errorf("unexpected record type %T", record)
	}

	existing, err := h.repo.FindDuplicate(ctx, tx.Description, tx.Amount, tx.Date)
	if err != nil {
		return "", err
	}
	if existing != nil {
		h.logger.Debug("Transaction already recorded",
			"description", tx.Description,
			"amount", tx.Amount,
			"date", tx.Date)
		return metrics.OutcomeSkipped, nil
	}

	if err := h.repo.Insert(ctx, tx); err != nil {
		return "", err
	}

	h.logger.Info("Transaction added",
		"id", tx.ID.Hex(),
		"amount", tx.Amount,
		"description", tx.Description)
	return metrics.OutcomeAdded, nil
}
