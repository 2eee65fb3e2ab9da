package seed

import (
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	payabledomain "github.com/smallbiznis/payora/internal/payable/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSeedDB(t *testing.T) (*gorm.DB, *snowflake.Node) {
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
	return db, node
}

func TestEnsureDemoPortfolioIsIdempotent(t *testing.T) {
	db, node := setupSeedDB(t)
	now := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	if err := EnsureDemoPortfolio(db, node, now); err != nil {
		t.Fatalf("first seed: %v", err)
	}

	var vendors, bills int64
	db.Model(&payabledomain.Vendor{}).Count(&vendors)
	db.Model(&payabledomain.Bill{}).Count(&bills)
	if vendors == 0 || bills == 0 {
		t.Fatalf("expected seeded data, got vendors=%d bills=%d", vendors, bills)
	}

	if err := EnsureDemoPortfolio(db, node, now); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var vendorsAfter, billsAfter int64
	db.Model(&payabledomain.Vendor{}).Count(&vendorsAfter)
	db.Model(&payabledomain.Bill{}).Count(&billsAfter)
	if vendorsAfter != vendors || billsAfter != bills {
		t.Fatalf("seed is not idempotent: vendors %d -> %d, bills %d -> %d", vendors, vendorsAfter, bills, billsAfter)
	}
}

func TestEnsureDemoPortfolioSeedsConsistentBills(t *testing.T) {
	db, node := setupSeedDB(t)
	now := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	if err := EnsureDemoPortfolio(db, node, now); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var bills []payabledomain.Bill
	if err := db.Find(&bills).Error; err != nil {
		t.Fatalf("load bills: %v", err)
	}
	for _, bill := range bills {
		if err := payabledomain.ValidateBill(bill); err != nil {
			t.Fatalf("seeded bill %s violates invariants: %v", bill.BillNumber, err)
		}
	}

	var position payabledomain.CashPosition
	if err := db.First(&position).Error; err != nil {
		t.Fatalf("expected cash position: %v", err)
	}
	if !position.Balance.IsPositive() {
		t.Fatalf("expected positive starting balance, got %s", position.Balance)
	}
}

func TestEnsureDemoPortfolioRequiresHandles(t *testing.T) {
	_, node := setupSeedDB(t)
	if err := EnsureDemoPortfolio(nil, node, time.Now()); err == nil {
		t.Fatal("expected error for nil db")
	}
	db, _ := setupSeedDB(t)
	if err := EnsureDemoPortfolio(db, nil, time.Now()); err == nil {
		t.Fatal("expected error for nil node")
	}
}
