package crossref_test

import (
	"testing"

	"github.com/dalemusser/threadhub/internal/app/store/crossref"
	"github.com/dalemusser/threadhub/internal/domain/models"
	"github.com/dalemusser/threadhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func getUser(t *testing.T, f *testutil.Fixtures, id primitive.ObjectID) models.User {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	var u models.User
	if err := f.DB().Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		t.Fatalf("failed to fetch user: %v", err)
	}
	return u
}

func getCommunity(t *testing.T, f *testutil.Fixtures, id primitive.ObjectID) models.Community {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	var c models.Community
	if err := f.DB().Collection("communities").FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		t.Fatalf("failed to fetch community: %v", err)
	}
	return c
}

func TestUpdater_Retract(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	updater := crossref.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fixtures.CreateUser(ctx, "alice")
	community := fixtures.CreateCommunity(ctx, "go-talk", "Go Talk")

	victim := fixtures.CreateThread(ctx, "doomed", author.ID, &community.ID)
	kept := fixtures.CreateThread(ctx, "kept", author.ID, &community.ID)

	err := updater.Retract(ctx,
		[]primitive.ObjectID{victim.ID},
		[]primitive.ObjectID{author.ID},
		[]primitive.ObjectID{community.ID})
	if err != nil {
		t.Fatalf("Retract failed: %v", err)
	}

	user := getUser(t, fixtures, author.ID)
	if len(user.ThreadIDs) != 1 || user.ThreadIDs[0] != kept.ID {
		t.Errorf("user thread_ids: got %v, want [%v]", user.ThreadIDs, kept.ID)
	}

	comm := getCommunity(t, fixtures, community.ID)
	if len(comm.ThreadIDs) != 1 || comm.ThreadIDs[0] != kept.ID {
		t.Errorf("community thread_ids: got %v, want [%v]", comm.ThreadIDs, kept.ID)
	}
}

func TestUpdater_Retract_EmptyVictims(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	updater := crossref.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fixtures.CreateUser(ctx, "alice")
	kept := fixtures.CreateThread(ctx, "kept", author.ID, nil)

	err := updater.Retract(ctx, nil, []primitive.ObjectID{author.ID}, nil)
	if err != nil {
		t.Fatalf("Retract failed: %v", err)
	}

	user := getUser(t, fixtures, author.ID)
	if len(user.ThreadIDs) != 1 || user.ThreadIDs[0] != kept.ID {
		t.Errorf("empty victim set must not touch owner lists: got %v", user.ThreadIDs)
	}
}

func TestUpdater_Retract_VanishedOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	updater := crossref.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fixtures.CreateUser(ctx, "alice")
	victim := fixtures.CreateThread(ctx, "doomed", author.ID, nil)

	// One real owner and one that no longer exists.
	err := updater.Retract(ctx,
		[]primitive.ObjectID{victim.ID},
		[]primitive.ObjectID{author.ID, primitive.NewObjectID()},
		[]primitive.ObjectID{primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Retract with vanished owners failed: %v", err)
	}

	user := getUser(t, fixtures, author.ID)
	if len(user.ThreadIDs) != 0 {
		t.Errorf("user thread_ids: got %v, want empty", user.ThreadIDs)
	}
}

func TestUpdater_Retract_OnlyVictimsPulled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	updater := crossref.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fixtures.CreateUser(ctx, "alice")
	other := fixtures.CreateUser(ctx, "bob")

	victim := fixtures.CreateThread(ctx, "doomed", author.ID, nil)
	bobs := fixtures.CreateThread(ctx, "bobs post", other.ID, nil)

	// Bob is not in the owner set, so his list must stay untouched even
	// though the victim id set is shared.
	err := updater.Retract(ctx,
		[]primitive.ObjectID{victim.ID, bobs.ID},
		[]primitive.ObjectID{author.ID},
		nil)
	if err != nil {
		t.Fatalf("Retract failed: %v", err)
	}

	bob := getUser(t, fixtures, other.ID)
	if len(bob.ThreadIDs) != 1 || bob.ThreadIDs[0] != bobs.ID {
		t.Errorf("bob's thread_ids: got %v, want [%v]", bob.ThreadIDs, bobs.ID)
	}
}
