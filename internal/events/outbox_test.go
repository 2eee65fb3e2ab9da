package events

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOutbox(t *testing.T) (*Outbox, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Exec(`CREATE TABLE payable_events (
		id INTEGER PRIMARY KEY,
		event_type TEXT NOT NULL,
		payload TEXT NOT NULL DEFAULT '{}',
		dedupe_key TEXT UNIQUE,
		published BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMP NOT NULL
	)`).Error; err != nil {
		t.Fatalf("create table: %v", err)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return NewOutbox(db, node), db
}

func countEvents(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Table("payable_events").Count(&count).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	return count
}

func TestPublishRequiresEventType(t *testing.T) {
	outbox, _ := setupOutbox(t)
	if err := outbox.Publish(context.Background(), Event{}); err == nil {
		t.Fatal("expected error for missing event type")
	}
}

func TestPublishStoresEvent(t *testing.T) {
	outbox, db := setupOutbox(t)
	err := outbox.Publish(context.Background(), Event{
		Type:    EventPaymentRecorded,
		Payload: map[string]any{"payment_id": "1"},
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got := countEvents(t, db); got != 1 {
		t.Fatalf("expected 1 event, got %d", got)
	}
}

func TestPublishDedupesByKey(t *testing.T) {
	outbox, db := setupOutbox(t)
	event := Event{
		Type:      EventWorkflowSubmitted,
		Payload:   map[string]any{"workflow_id": "11"},
		DedupeKey: "workflow.submitted:11",
	}

	if err := outbox.Publish(context.Background(), event); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if err := outbox.Publish(context.Background(), event); err != nil {
		t.Fatalf("second publish: %v", err)
	}
	if got := countEvents(t, db); got != 1 {
		t.Fatalf("expected deduped single event, got %d", got)
	}
}

func TestPublishWithoutDedupeKeyNeverConflicts(t *testing.T) {
	outbox, db := setupOutbox(t)
	event := Event{Type: EventWorkflowApproved, Payload: map[string]any{"workflow_id": "11"}}

	for i := 0; i < 2; i++ {
		if err := outbox.Publish(context.Background(), event); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}
	if got := countEvents(t, db); got != 2 {
		t.Fatalf("expected 2 events, got %d", got)
	}
}

func TestPublishTxRequiresTransaction(t *testing.T) {
	outbox, _ := setupOutbox(t)
	if err := outbox.PublishTx(context.Background(), nil, Event{Type: EventWorkflowApproved}); err == nil {
		t.Fatal("expected error for nil transaction")
	}
}
