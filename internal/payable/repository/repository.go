package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/payora/internal/payable/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	GenID *snowflake.Node
}

// Repository is the gorm-backed implementation of the payable store.
type Repository struct {
	db    *gorm.DB
	genID *snowflake.Node
}

func New(p Params) domain.Repository {
	return &Repository{db: p.DB, genID: p.GenID}
}

func (r *Repository) GetBill(ctx context.Context, id snowflake.ID) (domain.Bill, error) {
	var bill domain.Bill
	err := r.db.WithContext(ctx).First(&bill, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Bill{}, domain.ErrBillNotFound
	}
	if err != nil {
		return domain.Bill{}, err
	}
	return bill, nil
}

func (r *Repository) ListBills(ctx context.Context, filter domain.BillFilter) ([]domain.Bill, error) {
	query := r.db.WithContext(ctx).Model(&domain.Bill{})
	if filter.VendorID != nil {
		query = query.Where("vendor_id = ?", *filter.VendorID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.DueAfter != nil {
		query = query.Where("due_date >= ?", *filter.DueAfter)
	}
	if filter.DueBefore != nil {
		query = query.Where("due_date < ?", *filter.DueBefore)
	}

	var bills []domain.Bill
	if err := query.Order("due_date ASC, id ASC").Find(&bills).Error; err != nil {
		return nil, err
	}
	return bills, nil
}

func (r *Repository) GetVendor(ctx context.Context, id snowflake.ID) (domain.Vendor, error) {
	var vendor domain.Vendor
	err := r.db.WithContext(ctx).First(&vendor, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Vendor{}, domain.ErrVendorNotFound
	}
	if err != nil {
		return domain.Vendor{}, err
	}
	return vendor, nil
}

func (r *Repository) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	var vendors []domain.Vendor
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&vendors).Error; err != nil {
		return nil, err
	}
	return vendors, nil
}

func (r *Repository) ListPayments(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, error) {
	query := r.db.WithContext(ctx).Model(&domain.Payment{})
	if filter.VendorID != nil {
		query = query.Where("vendor_id = ?", *filter.VendorID)
	}
	if filter.PaidAfter != nil {
		query = query.Where("paid_at >= ?", *filter.PaidAfter)
	}

	var payments []domain.Payment
	if err := query.Order("paid_at ASC, id ASC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// CashBalance returns the most recently recorded cash position, or zero when
// none has been recorded yet.
func (r *Repository) CashBalance(ctx context.Context) (decimal.Decimal, error) {
	var position domain.CashPosition
	err := r.db.WithContext(ctx).Order("recorded_at DESC, id DESC").First(&position).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return position.Balance, nil
}

func (r *Repository) AppendPayment(ctx context.Context, payment *domain.Payment) error {
	if payment == nil {
		return domain.ErrInvalidPayment
	}
	if payment.VendorID == 0 || !payment.Amount.IsPositive() || payment.PaidAt.IsZero() {
		return domain.ErrInvalidPayment
	}
	if payment.ID == 0 {
		payment.ID = r.genID.Generate()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *Repository) RecordCashPosition(ctx context.Context, balance decimal.Decimal, recordedAt time.Time) error {
	position := domain.CashPosition{
		ID:         r.genID.Generate(),
		Balance:    balance,
		RecordedAt: recordedAt.UTC(),
	}
	return r.db.WithContext(ctx).Create(&position).Error
}
