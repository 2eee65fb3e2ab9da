package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository persists approval workflows. Methods accept a *gorm.DB handle so
// callers can join writes into an existing transaction, matching the audit
// and outbox stores.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, workflow *Workflow) error
	GetByID(ctx context.Context, id snowflake.ID) (*Workflow, error)
	GetByBill(ctx context.Context, billID snowflake.ID) (*Workflow, error)
	CountOpen(ctx context.Context) (int64, error)

	// UpdateVersioned writes the workflow only if the stored version still
	// equals expectedVersion, bumping it by one. ErrVersionConflict
	// signals a concurrent approver won the race.
	UpdateVersioned(ctx context.Context, db *gorm.DB, workflow *Workflow, expectedVersion int64) error
}
