package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

func (s *Server) GetVendorAnalytics(c *gin.Context) {
	if s.analyticsSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	vendorID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "format", "vendor id must be a valid identifier"))
		return
	}

	eval, err := s.resolveEvaluation(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	analytics, err := s.analyticsSvc.Analyze(c.Request.Context(), eval, vendorID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}
