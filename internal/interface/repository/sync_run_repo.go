package repository

import (
	"context"
	"fmt"
	"time"

	"hostel-sync-service/internal/domain/entity"
	"hostel-sync-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormSyncRunRepository implements the SyncRunRepository interface
type GormSyncRunRepository struct {
	db *gorm.DB
}

// NewGormSyncRunRepository creates a new GORM sync run repository
func NewGormSyncRunRepository(db *gorm.DB) *GormSyncRunRepository {
	return &GormSyncRunRepository{
		db: db,
	}
}

var _ repository.SyncRunRepository = (*GormSyncRunRepository)(nil)

// SyncRuns GORM model for database mapping
type SyncRuns struct {
	gorm.Model
	RunID          string    `gorm:"column:run_id;uniqueIndex;size:36"`
	Purpose        string    `gorm:"column:purpose;index"`
	TotalProcessed int       `gorm:"column:total_processed"`
	Added          int       `gorm:"column:added"`
	Skipped        int       `gorm:"column:skipped"`
	Unparsed       int       `gorm:"column:unparsed"`
	Failed         int       `gorm:"column:failed"`
	StartedAt      time.Time `gorm:"column:started_at"`
	FinishedAt     time.Time `gorm:"column:finished_at"`
	Error          string    `gorm:"column:error"`
}

// TableName overrides the default table name
func (SyncRuns) TableName() string {
	return "sync_runs"
}

// Migrate creates or updates the sync_runs table
func (r *GormSyncRunRepository) Migrate() error {
	if err := r.db.AutoMigrate(&SyncRuns{}); err != nil {
		return fmt.Errorf("failed to migrate sync_runs: %w", err)
	}
	return nil
}

// Record inserts a finished run
func (r *GormSyncRunRepository) Record(ctx context.Context, summary *entity.SyncSummary) error {
	model := SyncRuns{
		RunID:          summary.RunID,
		Purpose:        summary.Purpose,
		TotalProcessed: summary.TotalProcessed,
		Added:          summary.Added,
		Skipped:        summary.Skipped,
		Unparsed:       summary.Unparsed,
		Failed:         summary.Failed,
		StartedAt:      summary.StartedAt,
		FinishedAt:     summary.FinishedAt,
		Error:          summary.Error,
	}

	if result := r.db.WithContext(ctx).Create(&model); result.Error != nil {
		return fmt.Errorf("failed to record sync run: %w", result.Error)
	}
	return nil
}

// Recent returns the latest runs for purpose, newest first. An empty purpose
// returns runs of every purpose.
func (r *GormSyncRunRepository) Recent(ctx context.Context, purpose string, limit int) ([]*entity.SyncSummary, error) {
	query := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit)
	if purpose != "" {
		query = query.Where("purpose = ?", purpose)
	}

	var runs []SyncRuns
	if result := query.Find(&runs); result.Error != nil {
		return nil, fmt.Errorf("failed to list sync runs: %w", result.Error)
	}

	summaries := make([]*entity.SyncSummary, 0, len(runs))
	for _, run := range runs {
		summaries = append(summaries, &entity.SyncSummary{
			RunID:          run.RunID,
			Purpose:        run.Purpose,
			TotalProcessed: run.TotalProcessed,
			Added:          run.Added,
			Skipped:        run.Skipped,
			Unparsed:       run.Unparsed,
			Failed:         run.Failed,
			StartedAt:      run.StartedAt,
			FinishedAt:     run.FinishedAt,
			Error:          run.Error,
		})
	}
	return summaries, nil
}
