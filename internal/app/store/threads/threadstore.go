// internal/app/store/threads/threadstore.go
package threadstore

import (
	"context"
	"time"

	"github.com/dalemusser/threadhub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("threads")}
}

func (s *Store) Create(ctx context.Context, t models.Thread) (models.Thread, error) {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.ChildIDs == nil {
		t.ChildIDs = []primitive.ObjectID{}
	}
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Thread{}, err
	}
	return t, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Thread, error) {
	var t models.Thread
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return models.Thread{}, err
	}
	return t, nil
}

// GetByIDs fetches all threads whose id is in ids. Ids that don't resolve
// are simply absent from the result; order is not guaranteed.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Thread, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var threads []models.Thread
	if err := cur.All(ctx, &threads); err != nil {
		return nil, err
	}
	return threads, nil
}

// AppendChild adds childID to the parent's child list. Returns
// mongo.ErrNoDocuments if the parent no longer exists.
func (s *Store) AppendChild(ctx context.Context, parentID, childID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": parentID},
		bson.M{"$push": bson.M{"child_ids": childID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Descendants walks the subtree under root and returns every transitive
// descendant, excluding root itself. The walk fetches one whole tree level
// per round trip, so latency is O(depth), not O(nodes). Within a level,
// threads keep their parents' child order, which also makes the full result
// a valid topological order (a parent always precedes its descendants).
//
// Ids that don't resolve (dangling child references) are skipped, and an
// already-visited id is never fetched again, so a cycle introduced by
// external mutation terminates the walk instead of hanging it.
func (s *Store) Descendants(ctx context.Context, root models.Thread) ([]models.Thread, error) {
	visited := map[primitive.ObjectID]bool{root.ID: true}

	var out []models.Thread
	frontier := root.ChildIDs
	for len(frontier) > 0 {
		fetch := make([]primitive.ObjectID, 0, len(frontier))
		for _, id := range frontier {
			if visited[id] {
				continue
			}
			visited[id] = true
			fetch = append(fetch, id)
		}
		if len(fetch) == 0 {
			break
		}

		level, err := s.GetByIDs(ctx, fetch)
		if err != nil {
			return nil, err
		}

		byID := make(map[primitive.ObjectID]models.Thread, len(level))
		for _, t := range level {
			byID[t.ID] = t
		}

		var next []primitive.ObjectID
		for _, id := range fetch {
			t, ok := byID[id]
			if !ok {
				continue
			}
			out = append(out, t)
			next = append(next, t.ChildIDs...)
		}
		frontier = next
	}
	return out, nil
}

// DeleteByIDs removes every thread whose id is in ids in one bulk operation.
// Returns the number of documents deleted.
func (s *Store) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListRoots returns top-level threads (no parent), newest first.
func (s *Store) ListRoots(ctx context.Context, offset, limit int64) ([]models.Thread, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(offset).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, bson.M{"parent_id": nil}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var threads []models.Thread
	if err := cur.All(ctx, &threads); err != nil {
		return nil, err
	}
	return threads, nil
}

// CountRoots returns the number of top-level threads.
func (s *Store) CountRoots(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"parent_id": nil})
}
