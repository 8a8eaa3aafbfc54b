package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/threadhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given username.
// Returns the created user with its generated ID.
func (f *Fixtures) CreateUser(ctx context.Context, username string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		Username:   username,
		UsernameCI: text.Fold(username),
		FullName:   "Test User",
		FullNameCI: text.Fold("Test User"),
		Onboarded:  true,
		ThreadIDs:  []primitive.ObjectID{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateCommunity creates a test community with the given code and name.
func (f *Fixtures) CreateCommunity(ctx context.Context, code, name string) models.Community {
	f.t.Helper()

	now := time.Now().UTC()
	community := models.Community{
		ID:        primitive.NewObjectID(),
		Code:      code,
		Name:      name,
		NameCI:    text.Fold(name),
		MemberIDs: []primitive.ObjectID{},
		ThreadIDs: []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := f.db.Collection("communities").InsertOne(ctx, community)
	if err != nil {
		f.t.Fatalf("failed to create test community: %v", err)
	}

	return community
}

// CreateThread creates a root post and appends its id to the author's
// thread list, and to the community's when communityID is non-nil, the
// same way the create path does.
func (f *Fixtures) CreateThread(ctx context.Context, body string, authorID primitive.ObjectID, communityID *primitive.ObjectID) models.Thread {
	f.t.Helper()

	thread := models.Thread{
		ID:          primitive.NewObjectID(),
		Text:        body,
		AuthorID:    authorID,
		CommunityID: communityID,
		ChildIDs:    []primitive.ObjectID{},
		CreatedAt:   time.Now().UTC(),
	}

	_, err := f.db.Collection("threads").InsertOne(ctx, thread)
	if err != nil {
		f.t.Fatalf("failed to create test thread: %v", err)
	}

	_, err = f.db.Collection("users").UpdateByID(ctx, authorID,
		bson.M{"$push": bson.M{"thread_ids": thread.ID}})
	if err != nil {
		f.t.Fatalf("failed to append thread to author: %v", err)
	}

	if communityID != nil {
		_, err = f.db.Collection("communities").UpdateByID(ctx, *communityID,
			bson.M{"$push": bson.M{"thread_ids": thread.ID}})
		if err != nil {
			f.t.Fatalf("failed to append thread to community: %v", err)
		}
	}

	return thread
}

// CreateReply creates a reply under the given parent and appends its id to
// the parent's child list. Replies never join owner thread lists.
func (f *Fixtures) CreateReply(ctx context.Context, body string, authorID, parentID primitive.ObjectID) models.Thread {
	f.t.Helper()

	reply := models.Thread{
		ID:        primitive.NewObjectID(),
		Text:      body,
		AuthorID:  authorID,
		ParentID:  &parentID,
		ChildIDs:  []primitive.ObjectID{},
		CreatedAt: time.Now().UTC(),
	}

	_, err := f.db.Collection("threads").InsertOne(ctx, reply)
	if err != nil {
		f.t.Fatalf("failed to create test reply: %v", err)
	}

	_, err = f.db.Collection("threads").UpdateByID(ctx, parentID,
		bson.M{"$push": bson.M{"child_ids": reply.ID}})
	if err != nil {
		f.t.Fatalf("failed to append reply to parent: %v", err)
	}

	return reply
}
