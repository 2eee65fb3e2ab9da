package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListFilter narrows audit trail listings.
type ListFilter struct {
	WorkflowID snowflake.ID
	BillID     snowflake.ID
	Action     string
	StartAt    *time.Time
	EndAt      *time.Time
	Limit      int
}

// Repository writes and reads the approval audit trail. Insert takes the
// caller's *gorm.DB so audit rows commit atomically with the workflow change
// they describe.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *ApprovalAudit) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*ApprovalAudit, error)
}
