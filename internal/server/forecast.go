package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetForecast(c *gin.Context) {
	if s.forecastSvc == nil {
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

	entries, err := s.forecastSvc.Forecast(c.Request.Context(), eval, days)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"as_of":            eval.Day(),
		"starting_balance": eval.StartingBalance,
		"horizon_days":     days,
		"entries":          entries,
	})
}
