package domain

import (
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// RelationshipStatus is the ABC-style tier a vendor lands in. It is always
// derived from the scorecard, never set by hand.
type RelationshipStatus string

const (
	RelationshipPreferred RelationshipStatus = "preferred"
	RelationshipStandard  RelationshipStatus = "standard"
	RelationshipReview    RelationshipStatus = "review"
	RelationshipTerminate RelationshipStatus = "terminate"
)

// VendorScores are the external performance signals for a vendor, each in
// [0,1]. When no feedback data exists the neutral default of 0.8 applies;
// missing data is never scored as zero.
type VendorScores struct {
	Quality              float64 `json:"quality"`
	Delivery             float64 `json:"delivery"`
	PriceCompetitiveness float64 `json:"price_competitiveness"`
}

// Mean returns the overall performance score.
func (s VendorScores) Mean() float64 {
	return (s.Quality + s.Delivery + s.PriceCompetitiveness) / 3
}

// NeutralScore is substituted for each signal when no feedback exists.
const NeutralScore = 0.8

// NeutralScores returns the documented defaults for a vendor with no history.
func NeutralScores() VendorScores {
	return VendorScores{
		Quality:              NeutralScore,
		Delivery:             NeutralScore,
		PriceCompetitiveness: NeutralScore,
	}
}

// VendorAnalytics is the derived per-vendor scorecard. It is owned by the
// evaluation that produced it and safe to discard and regenerate.
type VendorAnalytics struct {
	VendorID          snowflake.ID       `json:"vendor_id"`
	VendorName        string             `json:"vendor_name"`
	YTDSpend          decimal.Decimal    `json:"ytd_spend"`
	AverageOrderValue decimal.Decimal    `json:"average_order_value"`
	BillCount         int                `json:"bill_count"`
	TermsAdherence    float64            `json:"terms_adherence"`
	Scores            VendorScores       `json:"scores"`
	OverallScore      float64            `json:"overall_score"`
	Relationship      RelationshipStatus `json:"relationship"`
}
