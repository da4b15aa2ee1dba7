package audit_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/dalemusser/influencerhub/internal/app/store/audit"
	"github.com/dalemusser/influencerhub/internal/testutil"
)

func TestStore_Log(t *testing.T) {
	db := testutil.SetupTestStore(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	event := audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		ActorID:   "op-1",
		IP:        "192.168.1.1",
		UserAgent: "TestBrowser/1.0",
		Success:   true,
		Details:   map[string]string{"email": "a@example.com"},
	}
	if err := store.Log(ctx, event); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	got := events[0]
	if got.ID == "" {
		t.Error("expected ID to be assigned")
	}
	if got.ActorID != "op-1" || got.IP != "192.168.1.1" || !got.Success {
		t.Errorf("event fields not round-tripped: %+v", got)
	}
	if got.Details["email"] != "a@example.com" {
		t.Errorf("Details = %v", got.Details)
	}
}

func TestStore_Log_AutoSetsTimestamp(t *testing.T) {
	db := testutil.SetupTestStore(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	before := time.Now().Add(-time.Second)
	if err := store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLogout}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	after := time.Now().Add(time.Second)

	events, err := store.GetRecent(ctx, 1)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ts := events[0].Timestamp
	if ts.Before(before) || ts.After(after) {
		t.Errorf("Timestamp %v not within [%v, %v]", ts, before, after)
	}
}

func TestStore_Query_NewestFirstAndFiltered(t *testing.T) {
	db := testutil.SetupTestStore(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < 5; i++ {
		eventType := audit.EventInfluencerCreated
		if i%2 == 1 {
			eventType = audit.EventInfluencerDeleted
		}
		if err := store.Log(ctx, audit.Event{
			Category:  audit.CategoryRoster,
			EventType: eventType,
			TargetID:  fmt.Sprintf("rec-%d", i),
			Success:   true,
		}); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	recent, err := store.GetRecent(ctx, 3)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 events, got %d", len(recent))
	}
	for i, want := range []string{"rec-4", "rec-3", "rec-2"} {
		if recent[i].TargetID != want {
			t.Errorf("recent[%d].TargetID = %q, want %q", i, recent[i].TargetID, want)
		}
	}

	deleted, err := store.Query(ctx, audit.QueryFilter{EventType: audit.EventInfluencerDeleted})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(deleted) != 2 {
		t.Fatalf("expected 2 deleted events, got %d", len(deleted))
	}
	if deleted[0].TargetID != "rec-3" || deleted[1].TargetID != "rec-1" {
		t.Errorf("deleted order = %s, %s", deleted[0].TargetID, deleted[1].TargetID)
	}
}

func TestStore_Query_Empty(t *testing.T) {
	db := testutil.SetupTestStore(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	events, err := store.GetRecent(ctx, 0)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}
