package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	payabledomain "github.com/smallbiznis/payora/internal/payable/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EnsureDemoPortfolio loads a small accounts-payable portfolio for local
// development. It is a no-op once any vendor exists, so restarts never
// duplicate data.
func EnsureDemoPortfolio(db *gorm.DB, node *snowflake.Node, now time.Time) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if node == nil {
		return errors.New("seed id generator is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&payabledomain.Vendor{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return seedPortfolio(tx, node, now.UTC())
	})
}

func seedPortfolio(tx *gorm.DB, node *snowflake.Node, now time.Time) error {
	day := func(offset int) time.Time {
		return payabledomain.Day(now).AddDate(0, 0, offset)
	}

	acme := payabledomain.Vendor{
		ID:                      node.Generate(),
		Name:                    "Acme Industrial Supply",
		Active:                  true,
		PaymentTermsDays:        30,
		EarlyPayDiscountPercent: decimal.NewFromFloat(2),
		EarlyPayWindowDays:      10,
	}
	northwind := payabledomain.Vendor{
		ID:               node.Generate(),
		Name:             "Northwind Logistics",
		Active:           true,
		PaymentTermsDays: 45,
	}
	brightside := payabledomain.Vendor{
		ID:               node.Generate(),
		Name:             "Brightside Office Services",
		Active:           true,
		PaymentTermsDays: 15,
	}
	defunct := payabledomain.Vendor{
		ID:               node.Generate(),
		Name:             "Shuttered Consulting",
		Active:           false,
		PaymentTermsDays: 30,
	}
	vendors := []payabledomain.Vendor{acme, northwind, brightside, defunct}
	if err := tx.Create(&vendors).Error; err != nil {
		return err
	}

	lineItems := func(desc string, amount decimal.Decimal) datatypes.JSONSlice[payabledomain.BillLineItem] {
		return datatypes.NewJSONSlice([]payabledomain.BillLineItem{{
			Description: desc,
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   amount,
			Amount:      amount,
		}})
	}

	bills := []payabledomain.Bill{
		{
			// Inside the early-pay discount window.
			ID:          node.Generate(),
			VendorID:    acme.ID,
			BillNumber:  "ACME-1042",
			IssueDate:   day(-3),
			DueDate:     day(27),
			LineItems:   lineItems("Fasteners and fittings", decimal.NewFromInt(8400)),
			TotalAmount: decimal.NewFromInt(8400),
			Balance:     decimal.NewFromInt(8400),
			Status:      payabledomain.BillStatusOpen,
		},
		{
			// Already overdue.
			ID:          node.Generate(),
			VendorID:    northwind.ID,
			BillNumber:  "NW-2201",
			IssueDate:   day(-60),
			DueDate:     day(-15),
			LineItems:   lineItems("Freight, April", decimal.NewFromInt(3150)),
			TotalAmount: decimal.NewFromInt(3150),
			Balance:     decimal.NewFromInt(1600),
			Status:      payabledomain.BillStatusPartial,
		},
		{
			// Large enough to require the full approver chain.
			ID:          node.Generate(),
			VendorID:    northwind.ID,
			BillNumber:  "NW-2260",
			IssueDate:   day(-5),
			DueDate:     day(40),
			LineItems:   lineItems("Warehouse expansion haulage", decimal.NewFromInt(75000)),
			TotalAmount: decimal.NewFromInt(75000),
			Balance:     decimal.NewFromInt(75000),
			Status:      payabledomain.BillStatusOpen,
		},
		{
			// Pair of near-identical bills for duplicate detection demos.
			ID:          node.Generate(),
			VendorID:    brightside.ID,
			BillNumber:  "BR-310",
			IssueDate:   day(-10),
			DueDate:     day(5),
			LineItems:   lineItems("Monthly cleaning", decimal.NewFromInt(1000)),
			TotalAmount: decimal.NewFromInt(1000),
			Balance:     decimal.NewFromInt(1000),
			Status:      payabledomain.BillStatusOpen,
		},
		{
			ID:          node.Generate(),
			VendorID:    brightside.ID,
			BillNumber:  "BR-313",
			IssueDate:   day(-7),
			DueDate:     day(8),
			LineItems:   lineItems("Monthly cleaning", decimal.NewFromInt(1000)),
			TotalAmount: decimal.NewFromInt(1000),
			Balance:     decimal.NewFromInt(1000),
			Status:      payabledomain.BillStatusOpen,
		},
		{
			// Settled history backing the adherence numbers below.
			ID:          node.Generate(),
			VendorID:    acme.ID,
			BillNumber:  "ACME-0991",
			IssueDate:   day(-75),
			DueDate:     day(-45),
			LineItems:   lineItems("Fasteners and fittings", decimal.NewFromInt(5200)),
			TotalAmount: decimal.NewFromInt(5200),
			Balance:     decimal.Zero,
			Status:      payabledomain.BillStatusPaid,
		},
	}
	if err := tx.Create(&bills).Error; err != nil {
		return err
	}

	paidBillID := bills[5].ID
	partialBillID := bills[1].ID
	payments := []payabledomain.Payment{
		{
			ID:       node.Generate(),
			VendorID: acme.ID,
			BillID:   &paidBillID,
			Amount:   decimal.NewFromInt(5200),
			PaidAt:   day(-47),
		},
		{
			ID:       node.Generate(),
			VendorID: northwind.ID,
			BillID:   &partialBillID,
			Amount:   decimal.NewFromInt(1550),
			PaidAt:   day(-12),
		},
		{
			// Unmatched remittance; excluded from adherence math.
			ID:       node.Generate(),
			VendorID: northwind.ID,
			Amount:   decimal.NewFromInt(200),
			PaidAt:   day(-20),
		},
	}
	if err := tx.Create(&payments).Error; err != nil {
		return err
	}

	position := payabledomain.CashPosition{
		ID:         node.Generate(),
		Balance:    decimal.NewFromInt(50000),
		RecordedAt: now,
	}
	return tx.Create(&position).Error
}
