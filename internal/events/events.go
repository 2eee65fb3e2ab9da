package events

// Engine event types written to the outbox.
const (
	EventWorkflowSubmitted    = "workflow.submitted"
	EventWorkflowStepApproved = "workflow.step_approved"
	EventWorkflowApproved     = "workflow.approved"
	EventWorkflowRejected     = "workflow.rejected"
	EventPaymentRecorded      = "payment.recorded"
)

// WorkflowPayload captures the minimal data downstream consumers need to
// react to an approval transition.
type WorkflowPayload struct {
	WorkflowID  string `json:"workflow_id"`
	BillID      string `json:"bill_id"`
	Status      string `json:"status"`
	CurrentStep int    `json:"current_step"`
	TotalSteps  int    `json:"total_steps"`
	ActorRole   string `json:"actor_role,omitempty"`
}

// ToMap converts the payload into an outbox-friendly map.
func (p WorkflowPayload) ToMap() map[string]any {
	payload := map[string]any{
		"workflow_id":  p.WorkflowID,
		"bill_id":      p.BillID,
		"status":       p.Status,
		"current_step": p.CurrentStep,
		"total_steps":  p.TotalSteps,
	}
	if p.ActorRole != "" {
		payload["actor_role"] = p.ActorRole
	}
	return payload
}
