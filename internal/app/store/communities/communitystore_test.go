package communitystore_test

import (
	"testing"

	communitystore "github.com/dalemusser/threadhub/internal/app/store/communities"
	"github.com/dalemusser/threadhub/internal/app/system/indexes"
	"github.com/dalemusser/threadhub/internal/domain/models"
	"github.com/dalemusser/threadhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := communitystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Community{
		Code: " ext-4211 ",
		Name: "Gophers Unite",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Code != "ext-4211" {
		t.Errorf("Code: got %q, want %q", created.Code, "ext-4211")
	}
	if created.NameCI != "gophers unite" {
		t.Errorf("NameCI: got %q, want %q", created.NameCI, "gophers unite")
	}
	if created.ThreadIDs == nil || created.MemberIDs == nil {
		t.Error("expected id lists to be initialized")
	}
}

func TestStore_Create_DuplicateCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := communitystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Duplicate detection needs the unique index on code.
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("index setup failed: %v", err)
	}

	if _, err := store.Create(ctx, models.Community{Code: "ext-1", Name: "One"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := store.Create(ctx, models.Community{Code: "ext-1", Name: "Other"})
	if err != communitystore.ErrDuplicateCommunity {
		t.Errorf("expected ErrDuplicateCommunity, got %v", err)
	}
}

func TestStore_GetByCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := communitystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Community{Code: "ext-42", Name: "Answers"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := store.GetByCode(ctx, " ext-42 ")
	if err != nil {
		t.Fatalf("GetByCode failed: %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID: got %v, want %v", found.ID, created.ID)
	}
}

func TestStore_GetByCode_ExactMatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := communitystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Community{Code: "EXT-42", Name: "Answers"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Codes are opaque external identifiers; case variants don't resolve.
	_, err := store.GetByCode(ctx, "ext-42")
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments for case-variant code, got %v", err)
	}
}

func TestStore_AppendThread(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := communitystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Community{Code: "ext-1", Name: "One"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	threadID := primitive.NewObjectID()
	if err := store.AppendThread(ctx, created.ID, threadID); err != nil {
		t.Fatalf("AppendThread failed: %v", err)
	}

	found, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(found.ThreadIDs) != 1 || found.ThreadIDs[0] != threadID {
		t.Errorf("ThreadIDs: got %v, want [%v]", found.ThreadIDs, threadID)
	}
}

func TestStore_AppendThread_CommunityGone(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := communitystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.AppendThread(ctx, primitive.NewObjectID(), primitive.NewObjectID())
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}
