// internal/app/store/crossref/crossref.go

// Package crossref retracts deleted thread ids from the reference lists of
// the records that own them (users and communities).
package crossref

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Updater struct {
	db *mongo.Database
}

func New(db *mongo.Database) *Updater {
	return &Updater{db: db}
}

// Retract removes every id in victimIDs from the thread lists of the given
// users and communities. Empty owner sets are a no-op. An owner record that
// no longer exists simply matches nothing; that is not an error, since the
// owning account may be deleted concurrently.
func (u *Updater) Retract(ctx context.Context, victimIDs, authorIDs, communityIDs []primitive.ObjectID) error {
	if len(victimIDs) == 0 {
		return nil
	}
	if err := u.pull(ctx, "users", "thread_ids", authorIDs, victimIDs); err != nil {
		return err
	}
	return u.pull(ctx, "communities", "thread_ids", communityIDs, victimIDs)
}

func (u *Updater) pull(ctx context.Context, collection, field string, ownerIDs, victimIDs []primitive.ObjectID) error {
	if len(ownerIDs) == 0 {
		return nil
	}
	_, err := u.db.Collection(collection).UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ownerIDs}},
		bson.M{
			"$pull": bson.M{field: bson.M{"$in": victimIDs}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	return err
}
