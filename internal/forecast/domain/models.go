package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Risk flag messages appended to forecast entries.
const (
	FlagLowCashBalance   = "Low cash balance projected"
	FlagHeavyObligations = "Heavy payment obligations"
	FlagUncertainty      = "Forecast uncertainty increases"
)

// Entry is one day of the projected cash position.
type Entry struct {
	Date              time.Time       `json:"date"`
	ExpectedPayments  decimal.Decimal `json:"expected_payments"`
	ExpectedReceipts  decimal.Decimal `json:"expected_receipts"`
	NetFlow           decimal.Decimal `json:"net_flow"`
	CumulativeBalance decimal.Decimal `json:"cumulative_balance"`
	Confidence        float64         `json:"confidence"`
	RiskFlags         []string        `json:"risk_flags"`
}

// ReceiptsSignal supplies expected inbound cash per calendar day. Production
// implementations source this from accounts receivable; tests use the
// deterministic stubs below.
type ReceiptsSignal interface {
	ExpectedReceipts(date time.Time) decimal.Decimal
}

// ZeroReceipts projects no inbound cash at all.
type ZeroReceipts struct{}

func (ZeroReceipts) ExpectedReceipts(date time.Time) decimal.Decimal { return decimal.Zero }

// FixedReceipts returns a fixed amount per calendar day, with optional
// per-day overrides keyed by the UTC date.
type FixedReceipts struct {
	Default decimal.Decimal
	ByDate  map[time.Time]decimal.Decimal
}

func (r FixedReceipts) ExpectedReceipts(date time.Time) decimal.Decimal {
	day := time.Date(date.UTC().Year(), date.UTC().Month(), date.UTC().Day(), 0, 0, 0, 0, time.UTC)
	if amount, ok := r.ByDate[day]; ok {
		return amount
	}
	return r.Default
}
