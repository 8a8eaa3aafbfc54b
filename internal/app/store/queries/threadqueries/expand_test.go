package threadqueries_test

import (
	"testing"

	"github.com/dalemusser/threadhub/internal/app/store/queries/threadqueries"
	threadstore "github.com/dalemusser/threadhub/internal/app/store/threads"
	"github.com/dalemusser/threadhub/internal/domain/models"
	"github.com/dalemusser/threadhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestExpand_TwoLevels(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := threadstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "alice")
	bob := fixtures.CreateUser(ctx, "bob")
	community := fixtures.CreateCommunity(ctx, "ext-1", "Gophers")

	root := fixtures.CreateThread(ctx, "root", alice.ID, &community.ID)
	c1 := fixtures.CreateReply(ctx, "first", bob.ID, root.ID)
	c2 := fixtures.CreateReply(ctx, "second", alice.ID, root.ID)
	g1 := fixtures.CreateReply(ctx, "grandchild", bob.ID, c1.ID)
	// Level three: must not appear at depth 2.
	fixtures.CreateReply(ctx, "too deep", alice.ID, g1.ID)

	fresh, err := store.GetByID(ctx, root.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	node, err := threadqueries.Expand(ctx, db, fresh, 2)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}

	if node.Author == nil || node.Author.ID != alice.ID {
		t.Fatalf("root author: got %v, want %v", node.Author, alice.ID)
	}
	if node.Community == nil || node.Community.ID != community.ID {
		t.Fatalf("root community not resolved")
	}

	if len(node.Children) != 2 {
		t.Fatalf("root children: got %d, want 2", len(node.Children))
	}
	// Children keep the parent's child order.
	if node.Children[0].Thread.ID != c1.ID || node.Children[1].Thread.ID != c2.ID {
		t.Errorf("child order: got [%v %v], want [%v %v]",
			node.Children[0].Thread.ID, node.Children[1].Thread.ID, c1.ID, c2.ID)
	}

	if node.Children[0].Author == nil || node.Children[0].Author.ID != bob.ID {
		t.Error("child author not resolved")
	}

	grand := node.Children[0].Children
	if len(grand) != 1 || grand[0].Thread.ID != g1.ID {
		t.Fatalf("grandchildren: got %v, want [%v]", grand, g1.ID)
	}

	// Depth 2 stops here.
	if len(grand[0].Children) != 0 {
		t.Errorf("expected no children at depth boundary, got %d", len(grand[0].Children))
	}
}

func TestExpand_VanishedAuthor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := threadstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "alice")
	root := fixtures.CreateThread(ctx, "root", alice.ID, nil)

	if _, err := db.Collection("users").DeleteOne(ctx, bson.M{"_id": alice.ID}); err != nil {
		t.Fatalf("raw delete failed: %v", err)
	}

	fresh, err := store.GetByID(ctx, root.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	node, err := threadqueries.Expand(ctx, db, fresh, 2)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if node.Author != nil {
		t.Errorf("vanished author should resolve to nil, got %v", node.Author)
	}
}

func TestExpand_DanglingChildSkipped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := threadstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "alice")
	root := fixtures.CreateThread(ctx, "root", alice.ID, nil)
	kept := fixtures.CreateReply(ctx, "kept", alice.ID, root.ID)
	gone := fixtures.CreateReply(ctx, "gone", alice.ID, root.ID)

	if _, err := db.Collection("threads").DeleteOne(ctx, bson.M{"_id": gone.ID}); err != nil {
		t.Fatalf("raw delete failed: %v", err)
	}

	fresh, err := store.GetByID(ctx, root.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	node, err := threadqueries.Expand(ctx, db, fresh, 2)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(node.Children) != 1 || node.Children[0].Thread.ID != kept.ID {
		t.Errorf("children: got %d, want just %v", len(node.Children), kept.ID)
	}
}

func TestExpandMany_BatchesAcrossRoots(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := threadstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "alice")
	bob := fixtures.CreateUser(ctx, "bob")

	r1 := fixtures.CreateThread(ctx, "first root", alice.ID, nil)
	r2 := fixtures.CreateThread(ctx, "second root", bob.ID, nil)
	c1 := fixtures.CreateReply(ctx, "on first", bob.ID, r1.ID)
	c2 := fixtures.CreateReply(ctx, "on second", alice.ID, r2.ID)

	f1, err := store.GetByID(ctx, r1.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	f2, err := store.GetByID(ctx, r2.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	nodes, err := threadqueries.ExpandMany(ctx, db, []models.Thread{f1, f2}, 1)
	if err != nil {
		t.Fatalf("ExpandMany failed: %v", err)
	}

	if len(nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(nodes))
	}
	if nodes[0].Thread.ID != r1.ID || nodes[1].Thread.ID != r2.ID {
		t.Error("roots must keep input order")
	}

	if len(nodes[0].Children) != 1 || nodes[0].Children[0].Thread.ID != c1.ID {
		t.Errorf("first root children: got %v, want [%v]", nodes[0].Children, c1.ID)
	}
	if len(nodes[1].Children) != 1 || nodes[1].Children[0].Thread.ID != c2.ID {
		t.Errorf("second root children: got %v, want [%v]", nodes[1].Children, c2.ID)
	}

	if nodes[0].Children[0].Author == nil || nodes[0].Children[0].Author.ID != bob.ID {
		t.Error("child author not resolved across roots")
	}
}

func TestExpandMany_NoRoots(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	nodes, err := threadqueries.ExpandMany(ctx, db, nil, 2)
	if err != nil {
		t.Fatalf("ExpandMany failed: %v", err)
	}
	if len(nodes) != 0 {
		t.Errorf("got %d nodes, want 0", len(nodes))
	}
}
