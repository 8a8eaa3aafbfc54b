// Package integrity provides read-only queries that detect referential
// drift between threads and the owner lists that point at them. Deletes are
// not transactional, so a crash between the bulk delete and the owner-list
// retraction can leave orphan replies or stale thread references behind.
package integrity

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// OrphanReply is a reply whose parent thread no longer exists.
type OrphanReply struct {
	ID       primitive.ObjectID `bson:"_id"`
	ParentID primitive.ObjectID `bson:"parent_id"`
	AuthorID primitive.ObjectID `bson:"author_id"`
}

// StaleOwner is a user or community whose thread list references threads
// that no longer exist.
type StaleOwner struct {
	ID       primitive.ObjectID   `bson:"_id"`
	Name     string               `bson:"name"`
	StaleIDs []primitive.ObjectID `bson:"stale_ids"`
}

// Report aggregates one full scan.
type Report struct {
	OrphanReplies      []OrphanReply
	StaleUsers         []StaleOwner
	StaleCommunities   []StaleOwner
	StaleUserRefs      int
	StaleCommunityRefs int
}

// OrphanReplies finds replies whose parent_id points at a vanished thread.
// limit <= 0 means no limit.
func OrphanReplies(ctx context.Context, db *mongo.Database, limit int64) ([]OrphanReply, error) {
	pipe := mongo.Pipeline{
		// Replies only; roots have no parent_id.
		bson.D{{Key: "$match", Value: bson.M{"parent_id": bson.M{"$type": "objectId"}}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "threads",
			"localField":   "parent_id",
			"foreignField": "_id",
			"as":           "parent",
		}}},
		bson.D{{Key: "$match", Value: bson.M{"parent": bson.M{"$size": 0}}}},
		bson.D{{Key: "$project", Value: bson.M{
			"parent_id": 1,
			"author_id": 1,
		}}},
	}
	if limit > 0 {
		pipe = append(pipe, bson.D{{Key: "$limit", Value: limit}})
	}

	cur, err := db.Collection("threads").Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var orphans []OrphanReply
	if err := cur.All(ctx, &orphans); err != nil {
		return nil, err
	}
	return orphans, nil
}

// StaleUserRefs finds users whose thread_ids contain ids that no longer
// resolve to a thread. limit <= 0 means no limit.
func StaleUserRefs(ctx context.Context, db *mongo.Database, limit int64) ([]StaleOwner, error) {
	return staleOwnerRefs(ctx, db.Collection("users"), "$username", limit)
}

// StaleCommunityRefs finds communities whose thread_ids contain ids that no
// longer resolve to a thread. limit <= 0 means no limit.
func StaleCommunityRefs(ctx context.Context, db *mongo.Database, limit int64) ([]StaleOwner, error) {
	return staleOwnerRefs(ctx, db.Collection("communities"), "$name", limit)
}

func staleOwnerRefs(ctx context.Context, coll *mongo.Collection, nameField string, limit int64) ([]StaleOwner, error) {
	pipe := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"thread_ids.0": bson.M{"$exists": true}}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "threads",
			"localField":   "thread_ids",
			"foreignField": "_id",
			"as":           "existing",
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"name":      nameField,
			"stale_ids": bson.M{"$setDifference": bson.A{"$thread_ids", "$existing._id"}},
		}}},
		bson.D{{Key: "$match", Value: bson.M{"stale_ids.0": bson.M{"$exists": true}}}},
	}
	if limit > 0 {
		pipe = append(pipe, bson.D{{Key: "$limit", Value: limit}})
	}

	cur, err := coll.Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var owners []StaleOwner
	if err := cur.All(ctx, &owners); err != nil {
		return nil, err
	}
	return owners, nil
}

// Scan runs all three integrity queries and aggregates the result.
func Scan(ctx context.Context, db *mongo.Database, limit int64) (*Report, error) {
	orphans, err := OrphanReplies(ctx, db, limit)
	if err != nil {
		return nil, err
	}
	staleUsers, err := StaleUserRefs(ctx, db, limit)
	if err != nil {
		return nil, err
	}
	staleCommunities, err := StaleCommunityRefs(ctx, db, limit)
	if err != nil {
		return nil, err
	}

	r := &Report{
		OrphanReplies:    orphans,
		StaleUsers:       staleUsers,
		StaleCommunities: staleCommunities,
	}
	for _, o := range staleUsers {
		r.StaleUserRefs += len(o.StaleIDs)
	}
	for _, o := range staleCommunities {
		r.StaleCommunityRefs += len(o.StaleIDs)
	}
	return r, nil
}

// Clean reports whether the scan found nothing to repair.
func (r *Report) Clean() bool {
	return len(r.OrphanReplies) == 0 && len(r.StaleUsers) == 0 && len(r.StaleCommunities) == 0
}
