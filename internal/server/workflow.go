package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	approvaldomain "github.com/smallbiznis/payora/internal/approval/domain"
	auditdomain "github.com/smallbiznis/payora/internal/audit/domain"
)

// CreateWorkflow submits a bill for approval. Building the workflow runs the
// risk assessment and materializes the approver chain in one step.
func (s *Server) CreateWorkflow(c *gin.Context) {
	if s.approvalSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	billID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "format", "bill id must be a valid identifier"))
		return
	}

	workflow, err := s.approvalSvc.BuildWorkflow(c.Request.Context(), billID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, workflow)
}

func (s *Server) GetWorkflow(c *gin.Context) {
	if s.approvalSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	workflowID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "format", "workflow id must be a valid identifier"))
		return
	}

	workflow, err := s.approvalSvc.GetWorkflow(c.Request.Context(), workflowID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, workflow)
}

type workflowActionRequest struct {
	Actor    string `json:"actor"`
	Decision string `json:"decision"`
	Note     string `json:"note"`
}

func (s *Server) ActOnWorkflow(c *gin.Context) {
	if s.approvalSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	workflowID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "format", "workflow id must be a valid identifier"))
		return
	}

	var req workflowActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	actor := strings.TrimSpace(req.Actor)
	if actor == "" {
		AbortWithError(c, newValidationError("actor", "required", "actor is required"))
		return
	}

	workflow, err := s.approvalSvc.Act(c.Request.Context(), workflowID, actor,
		approvaldomain.Decision(strings.TrimSpace(req.Decision)), strings.TrimSpace(req.Note))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, workflow)
}

func (s *Server) ListWorkflowAudit(c *gin.Context) {
	if s.auditRepo == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	workflowID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "format", "workflow id must be a valid identifier"))
		return
	}

	entries, err := s.auditRepo.List(c.Request.Context(), s.db, auditdomain.ListFilter{
		WorkflowID: workflowID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
