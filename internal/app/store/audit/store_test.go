package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/threadhub/internal/app/store/audit"
	"github.com/dalemusser/threadhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// failedCascade builds an unrepaired failed event for the given root.
func failedCascade(rootID primitive.ObjectID) audit.Event {
	return audit.Event{
		RootID:        rootID,
		VictimIDs:     []primitive.ObjectID{rootID, primitive.NewObjectID()},
		AuthorIDs:     []primitive.ObjectID{primitive.NewObjectID()},
		Success:       false,
		FailureReason: "owner retraction failed",
	}
}

func TestStore_Log(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rootID := primitive.NewObjectID()
	victims := []primitive.ObjectID{rootID, primitive.NewObjectID(), primitive.NewObjectID()}

	err := store.Log(ctx, audit.Event{
		RootID:    rootID,
		VictimIDs: victims,
		AuthorIDs: []primitive.ObjectID{primitive.NewObjectID()},
		Success:   true,
	})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.Query(ctx, audit.QueryFilter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	event := events[0]
	if event.ID.IsZero() {
		t.Error("expected Log to assign an id")
	}
	if event.Timestamp.IsZero() {
		t.Error("expected Log to assign a timestamp")
	}
	if event.EventType != audit.EventCascadeDelete {
		t.Errorf("EventType: got %q, want %q", event.EventType, audit.EventCascadeDelete)
	}
	if event.VictimCount != 3 {
		t.Errorf("VictimCount: got %d, want 3", event.VictimCount)
	}
	if event.RootID != rootID {
		t.Errorf("RootID: got %v, want %v", event.RootID, rootID)
	}
}

func TestStore_GetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id := primitive.NewObjectID()
	err := store.Log(ctx, audit.Event{
		ID:        id,
		RootID:    primitive.NewObjectID(),
		VictimIDs: []primitive.ObjectID{primitive.NewObjectID()},
		Success:   true,
	})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	event, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if event.ID != id {
		t.Errorf("ID: got %v, want %v", event.ID, id)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, primitive.NewObjectID())
	if err != audit.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Query_BySuccess(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Log(ctx, audit.Event{RootID: primitive.NewObjectID(), Success: true}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if err := store.Log(ctx, failedCascade(primitive.NewObjectID())); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	no := false
	failures, err := store.Query(ctx, audit.QueryFilter{Success: &no})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(failures) != 1 {
		t.Fatalf("expected 1 failed event, got %d", len(failures))
	}
	if failures[0].Success {
		t.Error("filtered event should be a failure")
	}
	if failures[0].FailureReason == "" {
		t.Error("failed event should keep its failure reason")
	}
}

func TestStore_Query_LatestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().UTC().Add(-time.Hour)
	roots := make([]primitive.ObjectID, 3)
	for i := range roots {
		roots[i] = primitive.NewObjectID()
		err := store.Log(ctx, audit.Event{
			RootID:    roots[i],
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Success:   true,
		})
		if err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	events, err := store.Query(ctx, audit.QueryFilter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].RootID != roots[2] || events[2].RootID != roots[0] {
		t.Errorf("events should be latest-first, got %v, %v, %v",
			events[0].RootID, events[1].RootID, events[2].RootID)
	}
}

func TestStore_Query_TimeRange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().UTC().Add(-2 * time.Hour)
	for i := 0; i < 3; i++ {
		err := store.Log(ctx, audit.Event{
			RootID:    primitive.NewObjectID(),
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Success:   true,
		})
		if err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	start := base.Add(30 * time.Minute)
	end := base.Add(90 * time.Minute)
	events, err := store.Query(ctx, audit.QueryFilter{StartTime: &start, EndTime: &end})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected 1 event in range, got %d", len(events))
	}
}

func TestStore_Query_LimitAndOffset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		err := store.Log(ctx, audit.Event{
			RootID:    primitive.NewObjectID(),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Success:   true,
		})
		if err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	events, err := store.Query(ctx, audit.QueryFilter{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("expected 2 events, got %d", len(events))
	}
}

func TestStore_CountByFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Log(ctx, audit.Event{RootID: primitive.NewObjectID(), Success: true}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if err := store.Log(ctx, failedCascade(primitive.NewObjectID())); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	count, err := store.CountByFilter(ctx, audit.QueryFilter{EventType: audit.EventCascadeDelete})
	if err != nil {
		t.Fatalf("CountByFilter failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count: got %d, want 2", count)
	}
}

func TestStore_ListUnrepairedFailures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// One success, one unrepaired failure, one repaired failure
	if err := store.Log(ctx, audit.Event{RootID: primitive.NewObjectID(), Success: true}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	pending := failedCascade(primitive.NewObjectID())
	pending.ID = primitive.NewObjectID()
	if err := store.Log(ctx, pending); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	repaired := failedCascade(primitive.NewObjectID())
	repaired.ID = primitive.NewObjectID()
	if err := store.Log(ctx, repaired); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if err := store.MarkRepaired(ctx, repaired.ID); err != nil {
		t.Fatalf("MarkRepaired failed: %v", err)
	}

	failures, err := store.ListUnrepairedFailures(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnrepairedFailures failed: %v", err)
	}
	if len(failures) != 1 {
		t.Fatalf("expected 1 unrepaired failure, got %d", len(failures))
	}
	if failures[0].ID != pending.ID {
		t.Errorf("unrepaired failure: got %v, want %v", failures[0].ID, pending.ID)
	}

	count, err := store.CountUnrepaired(ctx)
	if err != nil {
		t.Fatalf("CountUnrepaired failed: %v", err)
	}
	if count != 1 {
		t.Errorf("CountUnrepaired: got %d, want 1", count)
	}
}

func TestStore_MarkRepaired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	event := failedCascade(primitive.NewObjectID())
	event.ID = primitive.NewObjectID()
	if err := store.Log(ctx, event); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	if err := store.MarkRepaired(ctx, event.ID); err != nil {
		t.Fatalf("MarkRepaired failed: %v", err)
	}

	got, err := store.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !got.Repaired {
		t.Error("expected event to be marked repaired")
	}
	if got.RepairedAt == nil {
		t.Error("expected repaired_at to be set")
	}
}

func TestStore_MarkRepaired_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.MarkRepaired(ctx, primitive.NewObjectID())
	if err != audit.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
