package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/payora/internal/forecast/domain"
	payabledomain "github.com/smallbiznis/payora/internal/payable/domain"
	payablerepo "github.com/smallbiznis/payora/internal/payable/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testAsOf = time.Date(2026, 8, 3, 10, 30, 0, 0, time.UTC)

func setupForecast(t *testing.T, receipts domain.ReceiptsSignal) (*Service, *gorm.DB, *snowflake.Node) {
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
	svc := &Service{log: zap.NewNop(), repo: repo, receipts: receipts}
	return svc, db, node
}

func insertBill(t *testing.T, db *gorm.DB, node *snowflake.Node, due time.Time, balance int64, status payabledomain.BillStatus) payabledomain.Bill {
	t.Helper()
	bill := payabledomain.Bill{
		ID:          node.Generate(),
		VendorID:    node.Generate(),
		IssueDate:   due.AddDate(0, 0, -30),
		DueDate:     due,
		TotalAmount: decimal.NewFromInt(balance),
		Balance:     decimal.NewFromInt(balance),
		Status:      status,
	}
	if err := db.Create(&bill).Error; err != nil {
		t.Fatalf("insert bill: %v", err)
	}
	return bill
}

func TestForecastRejectsNegativeHorizon(t *testing.T) {
	svc, _, _ := setupForecast(t, domain.ZeroReceipts{})
	_, err := svc.Forecast(context.Background(), payabledomain.Evaluation{AsOf: testAsOf}, -1)
	if !errors.Is(err, domain.ErrInvalidHorizon) {
		t.Fatalf("expected ErrInvalidHorizon, got %v", err)
	}
}

func TestForecastLengthAndContinuity(t *testing.T) {
	svc, db, node := setupForecast(t, domain.FixedReceipts{Default: decimal.NewFromInt(500)})
	insertBill(t, db, node, testAsOf.AddDate(0, 0, 3), 2000, payabledomain.BillStatusOpen)
	insertBill(t, db, node, testAsOf.AddDate(0, 0, 3), 1000, payabledomain.BillStatusPartial)
	insertBill(t, db, node, testAsOf.AddDate(0, 0, 9), 4000, payabledomain.BillStatusDisputed)

	eval := payabledomain.Evaluation{AsOf: testAsOf, StartingBalance: decimal.NewFromInt(20000)}
	entries, err := svc.Forecast(context.Background(), eval, 14)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if len(entries) != 15 {
		t.Fatalf("expected 15 entries, got %d", len(entries))
	}

	prev := eval.StartingBalance.Sub(entries[0].NetFlow)
	for i, entry := range entries {
		want := prev.Add(entry.NetFlow)
		if !entry.CumulativeBalance.Equal(want) {
			t.Fatalf("entry %d: cumulative %s != previous %s + net %s", i, entry.CumulativeBalance, prev, entry.NetFlow)
		}
		prev = entry.CumulativeBalance
	}

	day3 := entries[3]
	if !day3.ExpectedPayments.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("expected 3000 due on day 3, got %s", day3.ExpectedPayments)
	}
}

func TestForecastDayZeroReceiptsAreZero(t *testing.T) {
	svc, _, _ := setupForecast(t, domain.FixedReceipts{Default: decimal.NewFromInt(750)})

	eval := payabledomain.Evaluation{AsOf: testAsOf, StartingBalance: decimal.NewFromInt(5000)}
	entries, err := svc.Forecast(context.Background(), eval, 2)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if !entries[0].ExpectedReceipts.IsZero() {
		t.Fatalf("expected zero receipts on day 0, got %s", entries[0].ExpectedReceipts)
	}
	if !entries[1].ExpectedReceipts.Equal(decimal.NewFromInt(750)) {
		t.Fatalf("expected 750 receipts on day 1, got %s", entries[1].ExpectedReceipts)
	}
}

func TestForecastExcludesPaidBills(t *testing.T) {
	svc, db, node := setupForecast(t, domain.ZeroReceipts{})
	paid := payabledomain.Bill{
		ID:          node.Generate(),
		VendorID:    node.Generate(),
		IssueDate:   testAsOf.AddDate(0, 0, -30),
		DueDate:     testAsOf.AddDate(0, 0, 5),
		TotalAmount: decimal.NewFromInt(900),
		Balance:     decimal.Zero,
		Status:      payabledomain.BillStatusPaid,
	}
	if err := db.Create(&paid).Error; err != nil {
		t.Fatalf("insert paid bill: %v", err)
	}

	eval := payabledomain.Evaluation{AsOf: testAsOf, StartingBalance: decimal.NewFromInt(100000)}
	entries, err := svc.Forecast(context.Background(), eval, 7)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if !entries[5].ExpectedPayments.IsZero() {
		t.Fatalf("paid bill should not project payments, got %s", entries[5].ExpectedPayments)
	}
}

func TestForecastConfidenceDecaysToFloor(t *testing.T) {
	svc, _, _ := setupForecast(t, domain.ZeroReceipts{})
	eval := payabledomain.Evaluation{AsOf: testAsOf, StartingBalance: decimal.NewFromInt(100000)}

	entries, err := svc.Forecast(context.Background(), eval, 60)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if entries[0].Confidence != 0.95 {
		t.Fatalf("expected day 0 confidence 0.95, got %f", entries[0].Confidence)
	}
	if entries[10].Confidence != 0.95-0.02*10 {
		t.Fatalf("expected linear decay at day 10, got %f", entries[10].Confidence)
	}
	if entries[60].Confidence != 0.30 {
		t.Fatalf("expected floor 0.30 at day 60, got %f", entries[60].Confidence)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Confidence > entries[i-1].Confidence {
			t.Fatalf("confidence increased at day %d", i)
		}
	}
}

func TestForecastRiskFlags(t *testing.T) {
	svc, db, node := setupForecast(t, domain.FixedReceipts{Default: decimal.NewFromInt(100)})
	insertBill(t, db, node, testAsOf.AddDate(0, 0, 20), 5000, payabledomain.BillStatusOpen)

	eval := payabledomain.Evaluation{AsOf: testAsOf, StartingBalance: decimal.NewFromInt(12000)}
	entries, err := svc.Forecast(context.Background(), eval, 25)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}

	day20 := entries[20]
	if !hasFlag(day20.RiskFlags, domain.FlagLowCashBalance) {
		t.Fatalf("expected low cash flag on day 20, got %v", day20.RiskFlags)
	}
	if !hasFlag(day20.RiskFlags, domain.FlagHeavyObligations) {
		t.Fatalf("expected heavy obligations flag on day 20, got %v", day20.RiskFlags)
	}
	if !hasFlag(day20.RiskFlags, domain.FlagUncertainty) {
		t.Fatalf("expected uncertainty flag on day 20, got %v", day20.RiskFlags)
	}
	if hasFlag(entries[0].RiskFlags, domain.FlagUncertainty) {
		t.Fatalf("day 0 must not carry the uncertainty flag")
	}
}

func hasFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if f == flag {
			return true
		}
	}
	return false
}
