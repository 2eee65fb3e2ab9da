package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// BillStatus tracks the lifecycle of an obligation.
type BillStatus string

const (
	BillStatusOpen     BillStatus = "open"
	BillStatusPartial  BillStatus = "partial"
	BillStatusPaid     BillStatus = "paid"
	BillStatusDisputed BillStatus = "disputed"
)

// BillLineItem is one line on a vendor bill.
type BillLineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// Bill is an obligation owed to a vendor. Bills are never deleted; payments
// reduce the balance until the bill transitions to paid.
type Bill struct {
	ID          snowflake.ID                      `gorm:"primaryKey" json:"id"`
	VendorID    snowflake.ID                      `gorm:"not null;index" json:"vendor_id"`
	BillNumber  string                            `gorm:"type:text;not null;default:''" json:"bill_number"`
	IssueDate   time.Time                         `gorm:"not null" json:"issue_date"`
	DueDate     time.Time                         `gorm:"not null;index" json:"due_date"`
	LineItems   datatypes.JSONSlice[BillLineItem] `gorm:"type:jsonb;not null;default:'[]'" json:"line_items"`
	TotalAmount decimal.Decimal                   `gorm:"type:numeric(18,2);not null" json:"total_amount"`
	Balance     decimal.Decimal                   `gorm:"type:numeric(18,2);not null" json:"balance"`
	Status      BillStatus                        `gorm:"type:text;not null;default:'open'" json:"status"`
	CreatedAt   time.Time                         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time                         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Bill) TableName() string { return "bills" }

// Unpaid reports whether the bill still carries an open balance.
func (b Bill) Unpaid() bool {
	return b.Status != BillStatusPaid && b.Balance.IsPositive()
}

// Vendor is a counterparty. Vendors are deactivated, never deleted, because
// historical bills reference them.
type Vendor struct {
	ID                      snowflake.ID    `gorm:"primaryKey" json:"id"`
	Name                    string          `gorm:"type:text;not null" json:"name"`
	Active                  bool            `gorm:"not null;default:true" json:"active"`
	PaymentTermsDays        int             `gorm:"not null;default:30" json:"payment_terms_days"`
	EarlyPayDiscountPercent decimal.Decimal `gorm:"type:numeric(7,4);not null;default:0" json:"early_pay_discount_percent"`
	EarlyPayWindowDays      int             `gorm:"not null;default:0" json:"early_pay_window_days"`
	CreatedAt               time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt               time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Vendor) TableName() string { return "vendors" }

// OffersEarlyPayDiscount reports whether the vendor's terms include an
// early-payment discount window.
func (v Vendor) OffersEarlyPayDiscount() bool {
	return v.EarlyPayWindowDays > 0 && v.EarlyPayDiscountPercent.IsPositive()
}

// Payment is an append-only ledger entry for money sent against a bill.
// BillID is nil when the remittance could not be matched to a bill.
type Payment struct {
	ID        snowflake.ID    `gorm:"primaryKey" json:"id"`
	VendorID  snowflake.ID    `gorm:"not null;index" json:"vendor_id"`
	BillID    *snowflake.ID   `gorm:"index" json:"bill_id,omitempty"`
	Amount    decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"amount"`
	PaidAt    time.Time       `gorm:"not null" json:"paid_at"`
	CreatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }

// CashPosition records the actual cash balance supplied between evaluation
// cycles. The newest row seeds day 0 of every forecast.
type CashPosition struct {
	ID         snowflake.ID    `gorm:"primaryKey" json:"id"`
	Balance    decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"balance"`
	RecordedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"recorded_at"`
}

// TableName sets the database table name.
func (CashPosition) TableName() string { return "cash_positions" }

// Evaluation pins one evaluation cycle to an explicit as-of date and starting
// cash balance. Engine services never read the wall clock or a stored balance
// directly; callers resolve both once and pass them down.
type Evaluation struct {
	AsOf            time.Time
	StartingBalance decimal.Decimal
}

// Day returns the evaluation date truncated to UTC midnight.
func (e Evaluation) Day() time.Time {
	return Day(e.AsOf)
}

// Day truncates a timestamp to its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
