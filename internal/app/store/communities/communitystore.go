// internal/app/store/communities/communitystore.go
package communitystore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/threadhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateCommunity = errors.New("a community with this code or name already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("communities")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Community, error) {
	var c models.Community
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByIDs fetches all communities whose id is in ids. Ids that don't
// resolve are simply absent from the result.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Community, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var communities []models.Community
	if err := cur.All(ctx, &communities); err != nil {
		return nil, err
	}
	return communities, nil
}

// GetByCode resolves an external community code to its record. The code is
// opaque, so the match is exact (no case folding). Returns
// mongo.ErrNoDocuments if no community carries the code.
func (s *Store) GetByCode(ctx context.Context, code string) (*models.Community, error) {
	var c models.Community
	if err := s.c.FindOne(ctx, bson.M{"code": strings.TrimSpace(code)}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new community after normalizing fields.
func (s *Store) Create(ctx context.Context, c models.Community) (models.Community, error) {
	c.ID = primitive.NewObjectID()
	c.Code = strings.TrimSpace(c.Code)
	c.Name = strings.TrimSpace(c.Name)
	c.NameCI = text.Fold(c.Name)
	if c.MemberIDs == nil {
		c.MemberIDs = []primitive.ObjectID{}
	}
	if c.ThreadIDs == nil {
		c.ThreadIDs = []primitive.ObjectID{}
	}

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Community{}, ErrDuplicateCommunity
		}
		return models.Community{}, err
	}
	return c, nil
}

// AppendThread adds threadID to the community's thread list. Returns
// mongo.ErrNoDocuments if the community no longer exists.
func (s *Store) AppendThread(ctx context.Context, communityID, threadID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": communityID},
		bson.M{
			"$push": bson.M{"thread_ids": threadID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
