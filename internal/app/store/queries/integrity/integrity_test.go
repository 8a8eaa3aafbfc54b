package integrity_test

import (
	"testing"

	"github.com/dalemusser/threadhub/internal/app/store/queries/integrity"
	"github.com/dalemusser/threadhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestScan_CleanDatabase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "alice")
	community := fixtures.CreateCommunity(ctx, "ext-1", "Gophers")
	root := fixtures.CreateThread(ctx, "root", alice.ID, &community.ID)
	fixtures.CreateReply(ctx, "reply", alice.ID, root.ID)

	report, err := integrity.Scan(ctx, db, 0)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if !report.Clean() {
		t.Errorf("expected clean report, got %+v", report)
	}
}

func TestScan_FindsOrphanReply(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "alice")
	root := fixtures.CreateThread(ctx, "root", alice.ID, nil)
	reply := fixtures.CreateReply(ctx, "reply", alice.ID, root.ID)

	// Delete the parent out from under the reply.
	if _, err := db.Collection("threads").DeleteOne(ctx, bson.M{"_id": root.ID}); err != nil {
		t.Fatalf("raw delete failed: %v", err)
	}

	report, err := integrity.Scan(ctx, db, 0)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(report.OrphanReplies) != 1 {
		t.Fatalf("orphans: got %d, want 1", len(report.OrphanReplies))
	}
	orphan := report.OrphanReplies[0]
	if orphan.ID != reply.ID {
		t.Errorf("orphan id: got %v, want %v", orphan.ID, reply.ID)
	}
	if orphan.ParentID != root.ID {
		t.Errorf("orphan parent: got %v, want %v", orphan.ParentID, root.ID)
	}
}

func TestScan_FindsStaleOwnerRefs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "alice")
	community := fixtures.CreateCommunity(ctx, "ext-1", "Gophers")
	victim := fixtures.CreateThread(ctx, "doomed", alice.ID, &community.ID)
	fixtures.CreateThread(ctx, "kept", alice.ID, &community.ID)

	// Delete the thread without retracting the owner references, the way
	// a crash mid-cascade would.
	if _, err := db.Collection("threads").DeleteOne(ctx, bson.M{"_id": victim.ID}); err != nil {
		t.Fatalf("raw delete failed: %v", err)
	}

	report, err := integrity.Scan(ctx, db, 0)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(report.StaleUsers) != 1 {
		t.Fatalf("stale users: got %d, want 1", len(report.StaleUsers))
	}
	if report.StaleUsers[0].ID != alice.ID {
		t.Errorf("stale user: got %v, want %v", report.StaleUsers[0].ID, alice.ID)
	}
	if report.StaleUserRefs != 1 {
		t.Errorf("stale user refs: got %d, want 1", report.StaleUserRefs)
	}
	if len(report.StaleUsers[0].StaleIDs) != 1 || report.StaleUsers[0].StaleIDs[0] != victim.ID {
		t.Errorf("stale ids: got %v, want [%v]", report.StaleUsers[0].StaleIDs, victim.ID)
	}

	if len(report.StaleCommunities) != 1 {
		t.Fatalf("stale communities: got %d, want 1", len(report.StaleCommunities))
	}
	if report.StaleCommunities[0].Name != "Gophers" {
		t.Errorf("stale community name: got %q, want %q", report.StaleCommunities[0].Name, "Gophers")
	}
	if report.StaleCommunityRefs != 1 {
		t.Errorf("stale community refs: got %d, want 1", report.StaleCommunityRefs)
	}
}

func TestOrphanReplies_Limit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "alice")
	root := fixtures.CreateThread(ctx, "root", alice.ID, nil)
	for i := 0; i < 5; i++ {
		fixtures.CreateReply(ctx, "reply", alice.ID, root.ID)
	}
	if _, err := db.Collection("threads").DeleteOne(ctx, bson.M{"_id": root.ID}); err != nil {
		t.Fatalf("raw delete failed: %v", err)
	}

	orphans, err := integrity.OrphanReplies(ctx, db, 2)
	if err != nil {
		t.Fatalf("OrphanReplies failed: %v", err)
	}
	if len(orphans) != 2 {
		t.Errorf("got %d orphans, want 2 (limited)", len(orphans))
	}
}
