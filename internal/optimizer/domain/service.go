package domain

import (
	"context"

	payabledomain "github.com/smallbiznis/payora/internal/payable/domain"
)

// BatchResult carries the optimizations for all valid bills, in input order,
// together with the integrity violations found along the way. One corrupt
// bill never blocks optimization of the rest of the portfolio.
type BatchResult struct {
	Optimizations []PaymentOptimization              `json:"optimizations"`
	Violations    []payabledomain.DataIntegrityError `json:"violations,omitempty"`
}

// Service decides when and how each bill should be paid.
type Service interface {
	Optimize(ctx context.Context, eval payabledomain.Evaluation, bill payabledomain.Bill) (PaymentOptimization, error)
	OptimizeMany(ctx context.Context, eval payabledomain.Evaluation, bills []payabledomain.Bill) (BatchResult, error)
}
