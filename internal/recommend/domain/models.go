package domain

import (
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	vendoranalyticsdomain "github.com/smallbiznis/payora/internal/vendoranalytics/domain"
)

// Priority orders portfolio recommendations.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// PortfolioRecommendation is one actionable bucket of bills.
type PortfolioRecommendation struct {
	Priority         Priority        `json:"priority"`
	Action           string          `json:"action"`
	BillIDs          []snowflake.ID  `json:"bill_ids"`
	PotentialSavings decimal.Decimal `json:"potential_savings"`
	CashFlowImpact   decimal.Decimal `json:"cash_flow_impact"`
}

// PaymentTiming is the closed set of vendor-level payment postures.
type PaymentTiming string

const (
	TimingCaptureDiscounts PaymentTiming = "capture_discounts"
	TimingPayOnTerms       PaymentTiming = "pay_on_terms"
	TimingExtendToTerms    PaymentTiming = "extend_to_terms_limit"
	TimingHoldForReview    PaymentTiming = "hold_for_review"
)

// VendorPaymentStrategy is the per-vendor posture derived from the scorecard.
type VendorPaymentStrategy struct {
	VendorID   snowflake.ID                          `json:"vendor_id"`
	VendorName string                                `json:"vendor_name"`
	Timing     PaymentTiming                         `json:"timing"`
	Rationale  string                                `json:"rationale"`
	Analytics  vendoranalyticsdomain.VendorAnalytics `json:"analytics"`
}
