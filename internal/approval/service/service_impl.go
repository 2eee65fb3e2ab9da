package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/payora/internal/approval/domain"
	auditdomain "github.com/smallbiznis/payora/internal/audit/domain"
	"github.com/smallbiznis/payora/internal/clock"
	"github.com/smallbiznis/payora/internal/events"
	"github.com/smallbiznis/payora/internal/observability/metrics"
	payabledomain "github.com/smallbiznis/payora/internal/payable/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	fraudWeightLargeAmount   = 0.2
	fraudWeightVendorMissing = 0.5
	duplicateRiskScore       = 0.8
	cfoFraudThreshold        = 0.3

	duplicateAmountTolerance = "0.01"
	duplicateWindowDays      = 7
)

var (
	largeAmountThreshold = decimal.NewFromInt(50000)
	managerTierFloor     = decimal.NewFromInt(1000)
	cfoTierFloor         = decimal.NewFromInt(10000)
	ceoTierFloor         = decimal.NewFromInt(50000)

	managerLimit = decimal.NewFromInt(10000)
	cfoLimit     = decimal.NewFromInt(100000)
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Repo   payabledomain.Repository
	Store  domain.Repository
	Audit  auditdomain.Repository
	Outbox *events.Outbox
}

// Service scores risk and runs the approval state machine.
type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	repo   payabledomain.Repository
	store  domain.Repository
	audit  auditdomain.Repository
	outbox *events.Outbox
}

func NewService(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("approval.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		repo:   p.Repo,
		store:  p.Store,
		audit:  p.Audit,
		outbox: p.Outbox,
	}
}

// AssessRisk accumulates independent fraud signals, checks for near-duplicate
// bills, and collects compliance gaps. A missing or inactive vendor is an
// expected risk state here, not a lookup failure.
func (s *Service) AssessRisk(ctx context.Context, bill payabledomain.Bill) (domain.RiskAssessment, error) {
	assessment := domain.RiskAssessment{ComplianceIssues: []string{}}

	if bill.TotalAmount.GreaterThan(largeAmountThreshold) {
		assessment.FraudScore += fraudWeightLargeAmount
	}

	vendor, err := s.repo.GetVendor(ctx, bill.VendorID)
	switch {
	case errors.Is(err, payabledomain.ErrVendorNotFound):
		assessment.FraudScore += fraudWeightVendorMissing
		assessment.ComplianceIssues = append(assessment.ComplianceIssues, domain.IssueVendorInactive)
	case err != nil:
		return domain.RiskAssessment{}, err
	case !vendor.Active:
		assessment.FraudScore += fraudWeightVendorMissing
		assessment.ComplianceIssues = append(assessment.ComplianceIssues, domain.IssueVendorInactive)
	}

	if assessment.FraudScore > 1.0 {
		assessment.FraudScore = 1.0
	}

	duplicate, err := s.hasNearDuplicate(ctx, bill)
	if err != nil {
		return domain.RiskAssessment{}, err
	}
	if duplicate {
		assessment.DuplicateRisk = duplicateRiskScore
		assessment.ComplianceIssues = append(assessment.ComplianceIssues, domain.IssueDuplicateBill)
	}

	if bill.BillNumber == "" {
		assessment.ComplianceIssues = append(assessment.ComplianceIssues, domain.IssueMissingBillNumber)
	}
	if len(bill.LineItems) == 0 {
		assessment.ComplianceIssues = append(assessment.ComplianceIssues, domain.IssueNoLineItems)
	}

	return assessment, nil
}

func (s *Service) hasNearDuplicate(ctx context.Context, bill payabledomain.Bill) (bool, error) {
	siblings, err := s.repo.ListBills(ctx, payabledomain.BillFilter{VendorID: &bill.VendorID})
	if err != nil {
		return false, err
	}

	tolerance := decimal.RequireFromString(duplicateAmountTolerance)
	for _, sibling := range siblings {
		if sibling.ID == bill.ID {
			continue
		}
		if sibling.TotalAmount.Sub(bill.TotalAmount).Abs().GreaterThan(tolerance) {
			continue
		}
		gap := payabledomain.Day(sibling.IssueDate).Sub(payabledomain.Day(bill.IssueDate))
		if gap < 0 {
			gap = -gap
		}
		if gap <= duplicateWindowDays*24*time.Hour {
			return true, nil
		}
	}
	return false, nil
}

// BuildWorkflow assembles the approver chain for a bill. Tiers are cumulative
// by amount and risk; a low-risk bill under the manager floor needs no
// approvers at all and is approved immediately.
func (s *Service) BuildWorkflow(ctx context.Context, billID snowflake.ID) (*domain.Workflow, error) {
	start := time.Now()
	defer func() {
		metrics.Portfolio().ObserveEvaluation("build_workflow", time.Since(start).Seconds())
	}()

	bill, err := s.repo.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.store.GetByBill(ctx, billID); err == nil {
		s.log.Debug("workflow already exists for bill",
			zap.String("bill_id", billID.String()),
			zap.String("workflow_id", existing.ID.String()),
		)
		return nil, domain.ErrWorkflowExists
	} else if !errors.Is(err, domain.ErrWorkflowNotFound) {
		return nil, err
	}

	assessment, err := s.AssessRisk(ctx, bill)
	if err != nil {
		return nil, err
	}

	steps := approverSteps(bill.TotalAmount, assessment.FraudScore)
	now := s.clock.Now()

	workflow := &domain.Workflow{
		ID:               s.genID.Generate(),
		BillID:           bill.ID,
		Status:           domain.WorkflowPending,
		CurrentStep:      0,
		TotalSteps:       len(steps),
		Steps:            datatypes.NewJSONSlice(steps),
		FraudScore:       assessment.FraudScore,
		DuplicateRisk:    assessment.DuplicateRisk,
		ComplianceIssues: datatypes.NewJSONSlice(assessment.ComplianceIssues),
		Version:          1,
		SubmittedAt:      now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if len(steps) == 0 {
		workflow.Status = domain.WorkflowApproved
		workflow.CompletedAt = &now
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.store.Insert(ctx, tx, workflow); err != nil {
			return err
		}
		if err := s.audit.Insert(ctx, tx, &auditdomain.ApprovalAudit{
			WorkflowID: workflow.ID,
			BillID:     workflow.BillID,
			ActorRole:  "system",
			Action:     auditdomain.ActionSubmitted,
			Metadata: datatypes.JSONMap{
				"total_steps": workflow.TotalSteps,
				"fraud_score": workflow.FraudScore,
			},
		}); err != nil {
			return err
		}
		return s.outbox.PublishTx(ctx, tx, events.Event{
			Type:      events.EventWorkflowSubmitted,
			Payload:   workflowPayload(workflow, "").ToMap(),
			DedupeKey: "workflow.submitted:" + workflow.ID.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	return workflow, nil
}

func (s *Service) GetWorkflow(ctx context.Context, workflowID snowflake.ID) (*domain.Workflow, error) {
	return s.store.GetByID(ctx, workflowID)
}

// Act applies one approver decision to the current step. The update is
// guarded by the workflow version read here; a concurrent approver acting on
// the same step loses with ErrVersionConflict and must re-read.
func (s *Service) Act(ctx context.Context, workflowID snowflake.ID, actor string, decision domain.Decision, note string) (*domain.Workflow, error) {
	if decision != domain.DecisionApprove && decision != domain.DecisionReject {
		return nil, domain.ErrInvalidDecision
	}

	start := time.Now()
	defer func() {
		metrics.Portfolio().ObserveEvaluation("workflow_action", time.Since(start).Seconds())
	}()

	workflow, err := s.store.GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if workflow.Status != domain.WorkflowPending {
		return nil, domain.ErrWorkflowClosed
	}
	if workflow.CurrentStep >= len(workflow.Steps) {
		return nil, domain.ErrWorkflowClosed
	}

	readVersion := workflow.Version
	now := s.clock.Now()

	steps := []domain.Step(workflow.Steps)
	step := &steps[workflow.CurrentStep]
	step.ActedBy = actor
	step.ActedAt = &now
	step.Note = note

	var auditAction, eventType string
	switch decision {
	case domain.DecisionApprove:
		step.Status = domain.StepApproved
		workflow.CurrentStep++
		if workflow.CurrentStep >= workflow.TotalSteps {
			workflow.Status = domain.WorkflowApproved
			workflow.CompletedAt = &now
			auditAction = auditdomain.ActionApproved
			eventType = events.EventWorkflowApproved
		} else {
			auditAction = auditdomain.ActionApproved
			eventType = events.EventWorkflowStepApproved
		}
	case domain.DecisionReject:
		step.Status = domain.StepRejected
		workflow.Status = domain.WorkflowRejected
		workflow.CompletedAt = &now
		auditAction = auditdomain.ActionRejected
		eventType = events.EventWorkflowRejected
	}
	workflow.Steps = datatypes.NewJSONSlice(steps)

	actorRole := string(step.Role)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.store.UpdateVersioned(ctx, tx, workflow, readVersion); err != nil {
			return err
		}
		if err := s.audit.Insert(ctx, tx, &auditdomain.ApprovalAudit{
			WorkflowID: workflow.ID,
			BillID:     workflow.BillID,
			ActorRole:  actorRole,
			Action:     auditAction,
			Metadata: datatypes.JSONMap{
				"actor":        actor,
				"decision":     string(decision),
				"current_step": workflow.CurrentStep,
			},
		}); err != nil {
			return err
		}
		return s.outbox.PublishTx(ctx, tx, events.Event{
			Type:    eventType,
			Payload: workflowPayload(workflow, actorRole).ToMap(),
		})
	})
	if err != nil {
		return nil, err
	}

	return workflow, nil
}

// approverSteps builds the cumulative tier chain. Higher tiers add approvers,
// never replace lower ones.
func approverSteps(amount decimal.Decimal, fraudScore float64) []domain.Step {
	var steps []domain.Step

	if amount.GreaterThan(managerTierFloor) {
		limit := managerLimit
		steps = append(steps, domain.Step{
			Role:          domain.RoleDepartmentManager,
			ApprovalLimit: &limit,
			Status:        domain.StepPending,
		})
	}
	if amount.GreaterThan(cfoTierFloor) || fraudScore > cfoFraudThreshold {
		limit := cfoLimit
		steps = append(steps, domain.Step{
			Role:          domain.RoleCFO,
			ApprovalLimit: &limit,
			Status:        domain.StepPending,
		})
	}
	if amount.GreaterThan(ceoTierFloor) {
		steps = append(steps, domain.Step{
			Role:   domain.RoleCEO,
			Status: domain.StepPending,
		})
	}

	return steps
}

func workflowPayload(workflow *domain.Workflow, actorRole string) events.WorkflowPayload {
	return events.WorkflowPayload{
		WorkflowID:  workflow.ID.String(),
		BillID:      workflow.BillID.String(),
		Status:      string(workflow.Status),
		CurrentStep: workflow.CurrentStep,
		TotalSteps:  workflow.TotalSteps,
		ActorRole:   actorRole,
	}
}
