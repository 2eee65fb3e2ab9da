package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Approval audit actions.
const (
	ActionSubmitted = "submitted"
	ActionApproved  = "approved"
	ActionRejected  = "rejected"
)

// ApprovalAudit is one immutable record in the approval audit trail. Rows
// are append-only; nothing in the engine updates or deletes them.
type ApprovalAudit struct {
	ID         snowflake.ID      `gorm:"primaryKey"`
	WorkflowID snowflake.ID      `gorm:"not null;index"`
	BillID     snowflake.ID      `gorm:"not null;index"`
	ActorRole  string            `gorm:"type:text;not null"`
	Action     string            `gorm:"type:text;not null;index"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (ApprovalAudit) TableName() string { return "approval_audit_logs" }
