package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/payora/internal/audit/domain"
	"gorm.io/gorm"
)

const defaultListLimit = 100

// Repository is the gorm-backed audit trail store.
type Repository struct {
	db    *gorm.DB
	genID *snowflake.Node
}

func Provide(db *gorm.DB, genID *snowflake.Node) domain.Repository {
	return &Repository{db: db, genID: genID}
}

func (r *Repository) Insert(ctx context.Context, db *gorm.DB, entry *domain.ApprovalAudit) error {
	if db == nil {
		db = r.db
	}
	if entry.ID == 0 {
		entry.ID = r.genID.Generate()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(entry).Error
}

func (r *Repository) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.ApprovalAudit, error) {
	if db == nil {
		db = r.db
	}

	query := db.WithContext(ctx).Model(&domain.ApprovalAudit{})
	if filter.WorkflowID != 0 {
		query = query.Where("workflow_id = ?", filter.WorkflowID)
	}
	if filter.BillID != 0 {
		query = query.Where("bill_id = ?", filter.BillID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.StartAt != nil {
		query = query.Where("created_at >= ?", *filter.StartAt)
	}
	if filter.EndAt != nil {
		query = query.Where("created_at < ?", *filter.EndAt)
	}

	limit := filter.Limit
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	var entries []*domain.ApprovalAudit
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
