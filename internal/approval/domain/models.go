package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// WorkflowStatus is the overall state of an approval workflow. The engine
// never emits escalated itself; it exists for external consumers (timeouts,
// manual escalation).
type WorkflowStatus string

const (
	WorkflowPending   WorkflowStatus = "pending"
	WorkflowApproved  WorkflowStatus = "approved"
	WorkflowRejected  WorkflowStatus = "rejected"
	WorkflowEscalated WorkflowStatus = "escalated"
)

// StepStatus is the state of a single approver step.
type StepStatus string

const (
	StepPending  StepStatus = "pending"
	StepApproved StepStatus = "approved"
	StepRejected StepStatus = "rejected"
)

// ApproverRole identifies an approval tier.
type ApproverRole string

const (
	RoleDepartmentManager ApproverRole = "department_manager"
	RoleCFO               ApproverRole = "cfo"
	RoleCEO               ApproverRole = "ceo"
)

// Compliance issue messages attached to risk assessments.
const (
	IssueVendorInactive    = "Vendor not found or inactive"
	IssueDuplicateBill     = "Potential duplicate bill detected"
	IssueMissingBillNumber = "Missing bill number"
	IssueNoLineItems       = "Bill has no line items"
)

// Step is one approver tier within a workflow. A nil ApprovalLimit means
// unlimited authority.
type Step struct {
	Role          ApproverRole     `json:"role"`
	ApprovalLimit *decimal.Decimal `json:"approval_limit,omitempty"`
	Status        StepStatus       `json:"status"`
	ActedBy       string           `json:"acted_by,omitempty"`
	ActedAt       *time.Time       `json:"acted_at,omitempty"`
	Note          string           `json:"note,omitempty"`
}

// RiskAssessment scores a bill for fraud, duplication and compliance gaps.
type RiskAssessment struct {
	FraudScore       float64  `json:"fraud_score"`
	DuplicateRisk    float64  `json:"duplicate_risk"`
	ComplianceIssues []string `json:"compliance_issues"`
}

// Workflow is the risk-gated approval chain for one bill. Concurrent
// approver actions are serialized through the Version column: every update
// must name the version it read, and a mismatch is rejected.
type Workflow struct {
	ID               snowflake.ID                `gorm:"primaryKey" json:"id"`
	BillID           snowflake.ID                `gorm:"not null;uniqueIndex" json:"bill_id"`
	Status           WorkflowStatus              `gorm:"type:text;not null;default:'pending'" json:"status"`
	CurrentStep      int                         `gorm:"not null;default:0" json:"current_step"`
	TotalSteps       int                         `gorm:"not null;default:0" json:"total_steps"`
	Steps            datatypes.JSONSlice[Step]   `gorm:"type:jsonb;not null;default:'[]'" json:"steps"`
	FraudScore       float64                     `gorm:"not null;default:0" json:"fraud_score"`
	DuplicateRisk    float64                     `gorm:"not null;default:0" json:"duplicate_risk"`
	ComplianceIssues datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'" json:"compliance_issues"`
	Version          int64                       `gorm:"not null;default:1" json:"version"`
	SubmittedAt      time.Time                   `gorm:"not null" json:"submitted_at"`
	CompletedAt      *time.Time                  `json:"completed_at,omitempty"`
	CreatedAt        time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Workflow) TableName() string { return "approval_workflows" }

// Assessment reconstructs the embedded risk assessment.
func (w Workflow) Assessment() RiskAssessment {
	return RiskAssessment{
		FraudScore:       w.FraudScore,
		DuplicateRisk:    w.DuplicateRisk,
		ComplianceIssues: w.ComplianceIssues,
	}
}
