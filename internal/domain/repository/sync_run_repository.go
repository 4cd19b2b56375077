package repository

import (
	"context"

	"hostel-sync-service/internal/domain/entity"
)

// SyncRunRepository keeps an audit trail of sync runs
type SyncRunRepository interface {
	Record(ctx context.Context, summary *entity.SyncSummary) error
	Recent(ctx context.Context, purpose string, limit int) ([]*entity.SyncSummary, error)
}
