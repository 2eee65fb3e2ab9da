package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	payabledomain "github.com/smallbiznis/payora/internal/payable/domain"
)

// ListOptimizations returns the per-bill payment decisions for the open
// portfolio, optionally narrowed to a single vendor or bill.
func (s *Server) ListOptimizations(c *gin.Context) {
	if s.optimizerSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	eval, err := s.resolveEvaluation(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()

	if raw := strings.TrimSpace(c.Query("bill_id")); raw != "" {
		billID, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("bill_id", "format", "bill_id must be a valid identifier"))
			return
		}
		bill, err := s.repo.GetBill(ctx, billID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		optimization, err := s.optimizerSvc.Optimize(ctx, eval, bill)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"as_of": eval.Day(), "optimizations": []any{optimization}})
		return
	}

	filter := payabledomain.BillFilter{
		Statuses: []payabledomain.BillStatus{
			payabledomain.BillStatusOpen,
			payabledomain.BillStatusPartial,
		},
	}
	if raw := strings.TrimSpace(c.Query("vendor_id")); raw != "" {
		vendorID, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("vendor_id", "format", "vendor_id must be a valid identifier"))
			return
		}
		filter.VendorID = &vendorID
	}

	bills, err := s.repo.ListBills(ctx, filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	batch, err := s.optimizerSvc.OptimizeMany(ctx, eval, bills)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"as_of":         eval.Day(),
		"optimizations": batch.Optimizations,
		"violations":    batch.Violations,
	})
}
