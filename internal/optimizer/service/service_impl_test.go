package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	forecastdomain "github.com/smallbiznis/payora/internal/forecast/domain"
	forecastservice "github.com/smallbiznis/payora/internal/forecast/service"
	"github.com/smallbiznis/payora/internal/optimizer/domain"
	payabledomain "github.com/smallbiznis/payora/internal/payable/domain"
	payablerepo "github.com/smallbiznis/payora/internal/payable/repository"
	vendoranalyticsdomain "github.com/smallbiznis/payora/internal/vendoranalytics/domain"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var optimizerAsOf = time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC)

type stubAnalytics struct {
	quality float64
}

func (a stubAnalytics) Analyze(ctx context.Context, eval payabledomain.Evaluation, vendorID snowflake.ID) (vendoranalyticsdomain.VendorAnalytics, error) {
	scores := vendoranalyticsdomain.NeutralScores()
	scores.Quality = a.quality
	return vendoranalyticsdomain.VendorAnalytics{
		VendorID: vendorID,
		Scores:   scores,
	}, nil
}

func setupOptimizer(t *testing.T, startingBalance int64, quality float64) (*Service, *gorm.DB, *snowflake.Node, payabledomain.Evaluation) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&payabledomain.Vendor{}, &payabledomain.Bill{}, &payabledomain.Payment{}, &payabledomain.CashPosition{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	repo := payablerepo.New(payablerepo.Params{DB: db, GenID: node})
	forecastSvc := forecastservice.NewService(forecastservice.Params{
		Log:      zap.NewNop(),
		Repo:     repo,
		Receipts: forecastdomain.ZeroReceipts{},
	})
	svc := &Service{
		log:            zap.NewNop(),
		repo:           repo,
		forecast:       forecastSvc,
		analytics:      stubAnalytics{quality: quality},
		defaultHorizon: 30,
	}
	eval := payabledomain.Evaluation{
		AsOf:            optimizerAsOf,
		StartingBalance: decimal.NewFromInt(startingBalance),
	}
	return svc, db, node, eval
}

func makeVendor(t *testing.T, db *gorm.DB, node *snowflake.Node, discountPct float64, windowDays int) payabledomain.Vendor {
	t.Helper()
	vendor := payabledomain.Vendor{
		ID:                      node.Generate(),
		Name:                    "Vendor",
		Active:                  true,
		PaymentTermsDays:        30,
		EarlyPayDiscountPercent: decimal.NewFromFloat(discountPct),
		EarlyPayWindowDays:      windowDays,
	}
	if err := db.Create(&vendor).Error; err != nil {
		t.Fatalf("insert vendor: %v", err)
	}
	return vendor
}

func makeBill(t *testing.T, db *gorm.DB, node *snowflake.Node, vendorID snowflake.ID, total int64, issue, due time.Time) payabledomain.Bill {
	t.Helper()
	bill := payabledomain.Bill{
		ID:          node.Generate(),
		VendorID:    vendorID,
		BillNumber:  fmt.Sprintf("B-%d", total),
		IssueDate:   issue,
		DueDate:     due,
		TotalAmount: decimal.NewFromInt(total),
		Balance:     decimal.NewFromInt(total),
		Status:      payabledomain.BillStatusOpen,
	}
	if err := db.Create(&bill).Error; err != nil {
		t.Fatalf("insert bill: %v", err)
	}
	return bill
}

func TestOptimizeCapturesMaterialDiscount(t *testing.T) {
	svc, db, node, eval := setupOptimizer(t, 100000, 0.9)
	vendor := makeVendor(t, db, node, 2, 10)
	bill := makeBill(t, db, node, vendor.ID, 10000, optimizerAsOf.AddDate(0, 0, -2), optimizerAsOf.AddDate(0, 0, 28))

	opt, err := svc.Optimize(context.Background(), eval, bill)
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if opt.Action != domain.ActionPayImmediately {
		t.Fatalf("expected pay_immediately, got %s", opt.Action)
	}
	if opt.Discount == nil {
		t.Fatal("expected discount detail")
	}
	if !opt.Discount.Savings.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected savings 200, got %s", opt.Discount.Savings)
	}
	wantDeadline := payabledomain.Day(bill.IssueDate).AddDate(0, 0, 10)
	if !opt.OptimalPayDate.Equal(wantDeadline) {
		t.Fatalf("expected pay date %v, got %v", wantDeadline, opt.OptimalPayDate)
	}
	if opt.Confidence != 0.9 {
		t.Fatalf("expected confidence 0.9, got %f", opt.Confidence)
	}
}

func TestDiscountWindowEdge(t *testing.T) {
	svc, db, node, eval := setupOptimizer(t, 100000, 0.9)
	vendor := makeVendor(t, db, node, 2, 10)

	// Issued exactly window days ago: the deadline is today, still eligible.
	onEdge := makeBill(t, db, node, vendor.ID, 10000, optimizerAsOf.AddDate(0, 0, -10), optimizerAsOf.AddDate(0, 0, 20))
	opt, err := svc.Optimize(context.Background(), eval, onEdge)
	if err != nil {
		t.Fatalf("optimize on edge: %v", err)
	}
	if opt.Discount == nil {
		t.Fatal("expected discount on deadline day")
	}

	// One day past the window: no discount.
	expired := makeBill(t, db, node, vendor.ID, 20000, optimizerAsOf.AddDate(0, 0, -11), optimizerAsOf.AddDate(0, 0, 19))
	opt, err = svc.Optimize(context.Background(), eval, expired)
	if err != nil {
		t.Fatalf("optimize expired: %v", err)
	}
	if opt.Discount != nil {
		t.Fatalf("expected no discount past deadline, got %+v", opt.Discount)
	}
}

func TestImmaterialDiscountFallsThrough(t *testing.T) {
	svc, db, node, eval := setupOptimizer(t, 100000, 0.9)
	vendor := makeVendor(t, db, node, 2, 10)
	// 2% of 4000 is 80, under the materiality bar.
	bill := makeBill(t, db, node, vendor.ID, 4000, optimizerAsOf.AddDate(0, 0, -2), optimizerAsOf.AddDate(0, 0, 28))

	opt, err := svc.Optimize(context.Background(), eval, bill)
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if opt.Discount == nil {
		t.Fatal("expected discount detail to be reported even when immaterial")
	}
	if opt.Action != domain.ActionPayOnDueDate {
		t.Fatalf("expected pay_on_due_date, got %s", opt.Action)
	}
}

func TestOptimizeNegotiatesUnderCashStrain(t *testing.T) {
	svc, db, node, eval := setupOptimizer(t, 5000, 0.9)
	vendor := makeVendor(t, db, node, 0, 0)
	bill := makeBill(t, db, node, vendor.ID, 30000, optimizerAsOf.AddDate(0, 0, -5), optimizerAsOf.AddDate(0, 0, 14))

	opt, err := svc.Optimize(context.Background(), eval, bill)
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if opt.Action != domain.ActionNegotiateTerms {
		t.Fatalf("expected negotiate_terms, got %s", opt.Action)
	}
	if !opt.CashFlowImpact.LessThan(decimal.NewFromInt(-10000)) {
		t.Fatalf("expected impact below -10000, got %s", opt.CashFlowImpact)
	}
}

func TestOptimizeDelaysLowQualityVendor(t *testing.T) {
	svc, db, node, eval := setupOptimizer(t, 100000, 0.5)
	vendor := makeVendor(t, db, node, 0, 0)
	bill := makeBill(t, db, node, vendor.ID, 2000, optimizerAsOf.AddDate(0, 0, -5), optimizerAsOf.AddDate(0, 0, 10))

	opt, err := svc.Optimize(context.Background(), eval, bill)
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if opt.Action != domain.ActionDelayPayment {
		t.Fatalf("expected delay_payment, got %s", opt.Action)
	}
	wantDate := payabledomain.Day(bill.DueDate).AddDate(0, 0, 7)
	if !opt.OptimalPayDate.Equal(wantDate) {
		t.Fatalf("expected pay date %v, got %v", wantDate, opt.OptimalPayDate)
	}
}

func TestOptimizeManyCollectsViolations(t *testing.T) {
	svc, db, node, eval := setupOptimizer(t, 100000, 0.9)
	vendor := makeVendor(t, db, node, 0, 0)

	good := makeBill(t, db, node, vendor.ID, 1000, optimizerAsOf.AddDate(0, 0, -5), optimizerAsOf.AddDate(0, 0, 10))
	corrupt := payabledomain.Bill{
		ID:          node.Generate(),
		VendorID:    vendor.ID,
		IssueDate:   optimizerAsOf.AddDate(0, 0, -5),
		DueDate:     optimizerAsOf.AddDate(0, 0, 10),
		TotalAmount: decimal.NewFromInt(100),
		Balance:     decimal.NewFromInt(500),
		Status:      payabledomain.BillStatusOpen,
	}

	batch, err := svc.OptimizeMany(context.Background(), eval, []payabledomain.Bill{good, corrupt})
	if err != nil {
		t.Fatalf("optimize many: %v", err)
	}
	if len(batch.Optimizations) != 1 {
		t.Fatalf("expected 1 optimization, got %d", len(batch.Optimizations))
	}
	if batch.Optimizations[0].BillID != good.ID {
		t.Fatalf("expected good bill first, got %s", batch.Optimizations[0].BillID)
	}
	if len(batch.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(batch.Violations))
	}
	if batch.Violations[0].BillID != corrupt.ID {
		t.Fatalf("expected corrupt bill flagged, got %s", batch.Violations[0].BillID)
	}

	violationCounter := `
# HELP payora_integrity_violations_total Source records rejected for violating domain invariants.
# TYPE payora_integrity_violations_total counter
payora_integrity_violations_total{env="unknown",service="payora"} 1
`
	if err := testutil.GatherAndCompare(prometheus.DefaultGatherer,
		strings.NewReader(violationCounter), "payora_integrity_violations_total"); err != nil {
		t.Fatalf("integrity counter: %v", err)
	}
	count, err := testutil.GatherAndCount(prometheus.DefaultGatherer, "payora_evaluations_total")
	if err != nil {
		t.Fatalf("gather evaluations: %v", err)
	}
	if count == 0 {
		t.Fatal("expected evaluation counter series after OptimizeMany")
	}
}

func TestOptimizeIsDeterministic(t *testing.T) {
	svc, db, node, eval := setupOptimizer(t, 100000, 0.9)
	vendor := makeVendor(t, db, node, 2, 10)
	bill := makeBill(t, db, node, vendor.ID, 10000, optimizerAsOf.AddDate(0, 0, -2), optimizerAsOf.AddDate(0, 0, 28))

	first, err := svc.Optimize(context.Background(), eval, bill)
	if err != nil {
		t.Fatalf("first optimize: %v", err)
	}
	second, err := svc.Optimize(context.Background(), eval, bill)
	if err != nil {
		t.Fatalf("second optimize: %v", err)
	}
	if first.Action != second.Action || first.Confidence != second.Confidence {
		t.Fatalf("decisions diverged: %+v vs %+v", first, second)
	}
	if !first.OptimalPayDate.Equal(second.OptimalPayDate) || !first.CashFlowImpact.Equal(second.CashFlowImpact) {
		t.Fatalf("projections diverged: %+v vs %+v", first, second)
	}
}

func TestOptimizeManyEmptyBatch(t *testing.T) {
	svc, _, _, eval := setupOptimizer(t, 100000, 0.9)
	batch, err := svc.OptimizeMany(context.Background(), eval, nil)
	if err != nil {
		t.Fatalf("optimize many: %v", err)
	}
	if len(batch.Optimizations) != 0 || len(batch.Violations) != 0 {
		t.Fatalf("expected empty batch, got %+v", batch)
	}
}
