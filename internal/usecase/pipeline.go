package usecase

import (
	"context"

	"hostel-sync-service/internal/domain/entity"
)

// Pipeline turns one kind of inbound email into stored records
type Pipeline interface {
	Purpose() entity.Purpose

	// Query selects the messages of this pipeline in the mailbox
	Query() entity.MailQuery

	// MaxResults caps the messages listed per run
	MaxResults() int64

	// SnippetLength bounds the body excerpt logged when extraction fails
	SnippetLength() int

	// CanHandle determines if this pipeline can process the given email
	CanHandle(from, subject string) bool

	// Extract returns the record carried by a decoded body, or false when
	// mandatory fields are missing
	Extract(msg *entity.RawMessage, body string) (interface{}, bool)

	// Save stores a record unless it already exists and returns the
	// outcome (metrics.OutcomeAdded or metrics.OutcomeSkipped)
	Save(ctx context.Context, record interface{}) (string, error)
}

// SubjectRouter routes emails to the appropriate pipeline
type SubjectRouter interface {
	// Register registers a pipeline
	Register(pipeline Pipeline)

	// GetHandler returns the first pipeline accepting the email, or nil
	GetHandler(from, subject string) Pipeline
}
