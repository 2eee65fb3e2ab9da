package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	payabledomain "github.com/smallbiznis/payora/internal/payable/domain"
)

// resolveEvaluation builds the evaluation context for a read request. The
// as-of date defaults to the service clock and the starting balance to the
// latest recorded cash position; both can be overridden per request so
// what-if queries never depend on wall time.
func (s *Server) resolveEvaluation(c *gin.Context) (payabledomain.Evaluation, error) {
	asOf := s.clock.Now()
	if raw := strings.TrimSpace(c.Query("as_of")); raw != "" {
		parsed, err := parseAsOf(raw)
		if err != nil {
			return payabledomain.Evaluation{}, newValidationError("as_of", "format", "as_of must be RFC 3339 or YYYY-MM-DD")
		}
		asOf = parsed
	}

	var balance decimal.Decimal
	if raw := strings.TrimSpace(c.Query("starting_balance")); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return payabledomain.Evaluation{}, newValidationError("starting_balance", "format", "starting_balance must be a decimal number")
		}
		balance = parsed
	} else {
		current, err := s.repo.CashBalance(c.Request.Context())
		if err != nil {
			return payabledomain.Evaluation{}, err
		}
		balance = current
	}

	return payabledomain.Evaluation{AsOf: asOf, StartingBalance: balance}, nil
}

func (s *Server) horizonDays(c *gin.Context) (int, error) {
	raw := strings.TrimSpace(c.Query("horizon"))
	if raw == "" {
		return s.cfg.DefaultHorizonDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, newValidationError("horizon", "format", "horizon must be an integer number of days")
	}
	return days, nil
}

func parseAsOf(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
