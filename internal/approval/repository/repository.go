package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/payora/internal/approval/domain"
	"github.com/smallbiznis/payora/internal/observability/metrics"
	"gorm.io/gorm"
)

// Repository is the gorm-backed workflow store.
type Repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, db *gorm.DB, workflow *domain.Workflow) error {
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Create(workflow).Error
}

func (r *Repository) GetByID(ctx context.Context, id snowflake.ID) (*domain.Workflow, error) {
	var workflow domain.Workflow
	err := r.db.WithContext(ctx).First(&workflow, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrWorkflowNotFound
	}
	if err != nil {
		return nil, err
	}
	return &workflow, nil
}

func (r *Repository) GetByBill(ctx context.Context, billID snowflake.ID) (*domain.Workflow, error) {
	var workflow domain.Workflow
	err := r.db.WithContext(ctx).First(&workflow, "bill_id = ?", billID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrWorkflowNotFound
	}
	if err != nil {
		return nil, err
	}
	return &workflow, nil
}

func (r *Repository) CountOpen(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Workflow{}).
		Where("status = ?", domain.WorkflowPending).
		Count(&count).Error
	return count, err
}

func (r *Repository) UpdateVersioned(ctx context.Context, db *gorm.DB, workflow *domain.Workflow, expectedVersion int64) error {
	if db == nil {
		db = r.db
	}

	workflow.Version = expectedVersion + 1
	workflow.UpdatedAt = time.Now().UTC()

	result := db.WithContext(ctx).
		Model(&domain.Workflow{}).
		Where("id = ? AND version = ?", workflow.ID, expectedVersion).
		Updates(map[string]any{
			"status":       workflow.Status,
			"current_step": workflow.CurrentStep,
			"steps":        workflow.Steps,
			"version":      workflow.Version,
			"completed_at": workflow.CompletedAt,
			"updated_at":   workflow.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		metrics.Portfolio().IncVersionConflict()
		return domain.ErrVersionConflict
	}
	return nil
}
