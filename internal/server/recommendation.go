package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListRecommendations(c *gin.Context) {
	if s.recommendSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	eval, err := s.resolveEvaluation(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	days, err := s.horizonDays(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	recommendations, err := s.recommendSvc.Recommend(c.Request.Context(), eval, days)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"as_of":           eval.Day(),
		"recommendations": recommendations,
	})
}

func (s *Server) ListVendorStrategies(c *gin.Context) {
	if s.recommendSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	eval, err := s.resolveEvaluation(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	strategies, err := s.recommendSvc.VendorStrategies(c.Request.Context(), eval)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"as_of":      eval.Day(),
		"strategies": strategies,
	})
}
