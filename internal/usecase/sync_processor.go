package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"hostel-sync-service/internal/domain/entity"
	"hostel-sync-service/internal/domain/repository"
	"hostel-sync-service/pkg/logger"
	"hostel-sync-service/pkg/metrics"
	"hostel-sync-service/pkg/parser"

	"github.com/google/uuid"
)

// SyncProcessor runs the fetch, decode, extract, dedup and insert loop of a
// pipeline over its mailbox
type SyncProcessor struct {
	opener  repository.MailSourceOpener
	runs    repository.SyncRunRepository
	metrics *metrics.Metrics
	logger  logger.Logger
	now     func() time.Time

	locksMu sync.Mutex
	locks   map[entity.Purpose]*sync.Mutex
}

// NewSyncProcessor creates a new sync processor. runs may be nil when no
// audit store is configured.
func NewSyncProcessor(
	opener repository.MailSourceOpener,
	runs repository.SyncRunRepository,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *SyncProcessor {
	return &SyncProcessor{
		opener:  opener,
		runs:    runs,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
		locks:   make(map[entity.Purpose]*sync.Mutex),
	}
}

// Run syncs one pipeline. Messages are handled one at a time; a message that
// fails is counted and the batch continues. Authorization failures and
// context cancellation end the run early and are returned with the partial
// summary.
func (p *SyncProcessor) Run(ctx context.Context, pipeline Pipeline) (*entity.SyncSummary, error) {
	purpose := pipeline.Purpose()

	// Runs of the same purpose never overlap
	lock := p.lockFor(purpose)
	lock.Lock()
	defer lock.Unlock()

	summary := &entity.SyncSummary{
		RunID:     uuid.NewString(),
		Purpose:   purpose.String(),
		StartedAt: p.now(),
	}
	log := p.logger.With("runId", summary.RunID, "purpose", summary.Purpose)

	err := p.run(ctx, pipeline, summary, log)

	summary.FinishedAt = p.now()
	if err != nil {
		summary.Error = err.Error()
		p.metrics.ErrorsCount.WithLabelValues("sync_" + summary.Purpose).Inc()
	}
	p.metrics.SyncDuration.WithLabelValues(summary.Purpose).Observe(summary.FinishedAt.Sub(summary.StartedAt).Seconds())
	p.record(summary, log)

	log.Info("Sync completed",
		"totalProcessed", summary.TotalProcessed,
		"added", summary.Added,
		"skipped", summary.Skipped,
		"unparsed", summary.Unparsed,
		"failed", summary.Failed,
		"duration", summary.FinishedAt.Sub(summary.StartedAt).String())

	return summary, err
}

func (p *SyncProcessor) run(ctx context.Context, pipeline Pipeline, summary *entity.SyncSummary, log logger.Logger) error {
	source, err := p.opener.Open(ctx, pipeline.Purpose())
	if err != nil {
		return fmt.Errorf("failed to open mail source: %w", err)
	}
	if closer, ok := source.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				log.Warn("Failed to close mail source", "error", err)
			}
		}()
	}

	ids, err := source.List(ctx, pipeline.Query(), pipeline.MaxResults())
	if err != nil {
		return fmt.Errorf("failed to list messages: %w", err)
	}
	summary.TotalProcessed = len(ids)
	log.Info("Messages listed", "count", len(ids))

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}

		outcome, err := p.processMessage(ctx, source, pipeline, id, log)
		if err != nil {
			if errors.Is(err, repository.ErrAuthorizationRequired) {
				return err
			}
			log.Error("Failed to process message", "messageId", id, "error", err)
			outcome = metrics.OutcomeFailed
		}

		switch outcome {
		case metrics.OutcomeAdded:
			summary.Added++
		case metrics.OutcomeSkipped:
			summary.Skipped++
		case metrics.OutcomeUnparsed:
			summary.Unparsed++
		default:
			summary.Failed++
		}
		p.metrics.MessagesProcessed.WithLabelValues(summary.Purpose, outcome).Inc()
	}

	return nil
}

func (p *SyncProcessor) processMessage(ctx context.Context, source repository.MailSource, pipeline Pipeline, id string, log logger.Logger) (string, error) {
	msg, err := source.Get(ctx, id)
	if err != nil {
		return "", err
	}

	body := parser.DecodeBody(msg.Payload)
	record, ok := pipeline.Extract(msg, body)
	if !ok {
		log.Warn("Could not parse message",
			"messageId", id,
			"subject", msg.Subject(),
			"snippet", Snippet(body, pipeline.SnippetLength()))
		return metrics.OutcomeUnparsed, nil
	}

	return pipeline.Save(ctx, record)
}

func (p *SyncProcessor) record(summary *entity.SyncSummary, log logger.Logger) {
	if p.runs == nil {
		return
	}
	// The request context may already be cancelled
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.runs.Record(ctx, summary); err != nil {
		log.Warn("Failed to record sync run", "error", err)
	}
}

func (p *SyncProcessor) lockFor(purpose entity.Purpose) *sync.Mutex {
	p.locksMu.Lock()
	defer p.locksMu.Unlock()

	lock, ok := p.locks[purpose]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[purpose] = lock
	}
	return lock
}

// Snippet returns at most n runes of s
func Snippet(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
