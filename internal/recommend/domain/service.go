package domain

import (
	"context"

	payabledomain "github.com/smallbiznis/payora/internal/payable/domain"
)

// Service combines optimizer, analytics and forecast output into
// portfolio-level recommendations and vendor payment strategies. Output
// ordering is stable across repeated calls on unchanged input.
type Service interface {
	Recommend(ctx context.Context, eval payabledomain.Evaluation, horizonDays int) ([]PortfolioRecommendation, error)
	VendorStrategies(ctx context.Context, eval payabledomain.Evaluation) ([]VendorPaymentStrategy, error)
}
