package domain

import (
	"context"
	"errors"

	payabledomain "github.com/smallbiznis/payora/internal/payable/domain"
)

// Service projects the daily net cash position over a horizon. The result
// has horizonDays+1 entries, index 0 being the evaluation day itself.
type Service interface {
	Forecast(ctx context.Context, eval payabledomain.Evaluation, horizonDays int) ([]Entry, error)
}

var ErrInvalidHorizon = errors.New("invalid_horizon")
