package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// BillFilter narrows bill listings. Zero-value fields are ignored.
type BillFilter struct {
	VendorID  *snowflake.ID
	Statuses  []BillStatus
	DueAfter  *time.Time
	DueBefore *time.Time
}

// PaymentFilter narrows payment listings. Zero-value fields are ignored.
type PaymentFilter struct {
	VendorID  *snowflake.ID
	PaidAfter *time.Time
}

// Repository is the persistence contract the engine consumes. The engine
// only reads bills, vendors and payments; the single write path is the
// append-only payment ledger and the cash position used to seed forecasts.
type Repository interface {
	GetBill(ctx context.Context, id snowflake.ID) (Bill, error)
	ListBills(ctx context.Context, filter BillFilter) ([]Bill, error)
	GetVendor(ctx context.Context, id snowflake.ID) (Vendor, error)
	ListVendors(ctx context.Context) ([]Vendor, error)
	ListPayments(ctx context.Context, filter PaymentFilter) ([]Payment, error)
	CashBalance(ctx context.Context) (decimal.Decimal, error)
	AppendPayment(ctx context.Context, payment *Payment) error
	RecordCashPosition(ctx context.Context, balance decimal.Decimal, recordedAt time.Time) error
}
