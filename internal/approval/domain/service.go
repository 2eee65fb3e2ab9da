package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	payabledomain "github.com/smallbiznis/payora/internal/payable/domain"
)

// Decision is an approver's action on the current step.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Service scores bill risk and drives the approval state machine.
type Service interface {
	AssessRisk(ctx context.Context, bill payabledomain.Bill) (RiskAssessment, error)
	BuildWorkflow(ctx context.Context, billID snowflake.ID) (*Workflow, error)
	GetWorkflow(ctx context.Context, workflowID snowflake.ID) (*Workflow, error)
	Act(ctx context.Context, workflowID snowflake.ID, actor string, decision Decision, note string) (*Workflow, error)
}

var (
	ErrWorkflowNotFound = errors.New("workflow_not_found")
	ErrWorkflowExists   = errors.New("workflow_already_exists")
	ErrWorkflowClosed   = errors.New("workflow_closed")
	ErrInvalidDecision  = errors.New("invalid_decision")
	ErrVersionConflict  = errors.New("workflow_version_conflict")
)
