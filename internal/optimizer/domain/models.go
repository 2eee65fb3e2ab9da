package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// RecommendedAction is the closed set of per-bill payment decisions.
type RecommendedAction string

const (
	ActionPayImmediately RecommendedAction = "pay_immediately"
	ActionPayOnDueDate   RecommendedAction = "pay_on_due_date"
	ActionNegotiateTerms RecommendedAction = "negotiate_terms"
	ActionDelayPayment   RecommendedAction = "delay_payment"
)

// DiscountDetail describes an early-payment discount still open at the
// evaluation date.
type DiscountDetail struct {
	Percent  decimal.Decimal `json:"percent"`
	Deadline time.Time       `json:"deadline"`
	Savings  decimal.Decimal `json:"savings"`
}

// PaymentOptimization is the advisory per-bill recommendation. It is
// regenerated on every evaluation and never persisted as authoritative state.
type PaymentOptimization struct {
	BillID         snowflake.ID      `json:"bill_id"`
	VendorID       snowflake.ID      `json:"vendor_id"`
	OptimalPayDate time.Time         `json:"optimal_pay_date"`
	DaysUntilDue   int               `json:"days_until_due"`
	CashFlowImpact decimal.Decimal   `json:"cash_flow_impact"`
	// ForecastMissing marks that no forecast entry covered the payment
	// date, so the impact of zero must not be read as a healthy position.
	ForecastMissing bool              `json:"forecast_missing"`
	Discount        *DiscountDetail   `json:"discount,omitempty"`
	Action          RecommendedAction `json:"action"`
	Confidence      float64           `json:"confidence"`
}
