package usecase

import (
	"errors"

	"hostel-sync-service/internal/domain/entity"
	"hostel-sync-service/pkg/parser"
)

// ErrNoPipeline is returned when no registered pipeline accepts a message
var ErrNoPipeline = errors.New("no pipeline accepts the message")

// DryRunResult is what a pipeline extracts from one message, without storing
// anything
type DryRunResult struct {
	MessageID string      `json:"messageId"`
	Purpose   string      `json:"purpose"`
	Parsed    bool        `json:"parsed"`
	Record    interface{} `json:"record,omitempty"`
	Snippet   string      `json:"snippet,omitempty"`
}

// DryRun routes msg to a pipeline by sender and subject and runs extraction
// only. Unparsed messages carry a body snippet.
func DryRun(router SubjectRouter, msg *entity.RawMessage) (*DryRunResult, error) {
	pipeline := router.GetHandler(msg.From(), msg.Subject())
	if pipeline == nil {
		return nil, ErrNoPipeline
	}

	body := parser.DecodeBody(msg.Payload)
	result := &DryRunResult{
		MessageID: msg.ID,
		Purpose:   pipeline.Purpose().String(),
	}

	record, ok := pipeline.Extract(msg, body)
	if !ok {
		result.Snippet = Snippet(body, pipeline.SnippetLength())
		return result, nil
	}
	result.Parsed = true
	result.Record = record
	return result, nil
}
