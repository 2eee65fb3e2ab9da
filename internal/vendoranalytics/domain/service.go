package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	payabledomain "github.com/smallbiznis/payora/internal/payable/domain"
)

// Service derives the vendor scorecard from historical bills and payments.
// Pure read/compute; no side effects.
type Service interface {
	Analyze(ctx context.Context, eval payabledomain.Evaluation, vendorID snowflake.ID) (VendorAnalytics, error)
}

// ScoreProvider supplies the external quality/delivery/price signals.
// Implementations return ErrNoScores when no feedback exists for the vendor;
// the analytics service then substitutes the neutral defaults.
type ScoreProvider interface {
	Scores(ctx context.Context, vendorID snowflake.ID) (VendorScores, error)
}

var ErrNoScores = errors.New("no_vendor_scores")

// NeutralScoreProvider is the documented fallback for environments without
// real feedback data.
type NeutralScoreProvider struct{}

func (NeutralScoreProvider) Scores(ctx context.Context, vendorID snowflake.ID) (VendorScores, error) {
	return NeutralScores(), nil
}
