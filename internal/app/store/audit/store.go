// internal/app/store/audit/store.go
package audit

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event types
const (
	EventCascadeDelete = "thread_cascade_delete" // a thread subtree was deleted
)

// ErrNotFound is returned when an audit event doesn't exist.
var ErrNotFound = errors.New("audit event not found")

// Event records one cascading delete: which subtree was removed and which
// owners had their thread lists retracted. Failed events keep the full victim
// id set so an operator can re-run the retraction later.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Timestamp time.Time          `bson:"timestamp"`
	EventType string             `bson:"event_type"`

	// What was deleted
	RootID       primitive.ObjectID   `bson:"root_id"`
	VictimIDs    []primitive.ObjectID `bson:"victim_ids"`
	VictimCount  int                  `bson:"victim_count"`
	AuthorIDs    []primitive.ObjectID `bson:"author_ids"`
	CommunityIDs []primitive.ObjectID `bson:"community_ids,omitempty"`

	// Outcome
	Success       bool   `bson:"success"`
	FailureReason string `bson:"failure_reason,omitempty"`

	// Repair bookkeeping (failed events only)
	Repaired   bool       `bson:"repaired"`
	RepairedAt *time.Time `bson:"repaired_at,omitempty"`
}

// QueryFilter defines filters for querying audit events.
type QueryFilter struct {
	EventType string
	Success   *bool
	Repaired  *bool
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int64
	Offset    int64
}

func (f QueryFilter) query() bson.M {
	query := bson.M{}
	if f.EventType != "" {
		query["event_type"] = f.EventType
	}
	if f.Success != nil {
		query["success"] = *f.Success
	}
	if f.Repaired != nil {
		query["repaired"] = *f.Repaired
	}
	if f.StartTime != nil || f.EndTime != nil {
		timeQuery := bson.M{}
		if f.StartTime != nil {
			timeQuery["$gte"] = *f.StartTime
		}
		if f.EndTime != nil {
			timeQuery["$lte"] = *f.EndTime
		}
		query["timestamp"] = timeQuery
	}
	return query
}

// Store manages audit event records.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// Log records an audit event, filling ID, Timestamp, EventType and
// VictimCount when unset.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.EventType == "" {
		event.EventType = EventCascadeDelete
	}
	if event.VictimCount == 0 {
		event.VictimCount = len(event.VictimIDs)
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// GetByID fetches a single event.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*Event, error) {
	var event Event
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Query retrieves audit events matching the given filter, latest-first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit).
		SetSkip(filter.Offset)

	cursor, err := s.c.Find(ctx, filter.query(), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CountByFilter returns the count of events matching the filter.
func (s *Store) CountByFilter(ctx context.Context, filter QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, filter.query())
}

// ListUnrepairedFailures returns failed cascade events awaiting repair,
// latest-first.
func (s *Store) ListUnrepairedFailures(ctx context.Context, limit int64) ([]Event, error) {
	no := false
	return s.Query(ctx, QueryFilter{
		EventType: EventCascadeDelete,
		Success:   &no,
		Repaired:  &no,
		Limit:     limit,
	})
}

// CountUnrepaired counts failed cascade events awaiting repair.
func (s *Store) CountUnrepaired(ctx context.Context) (int64, error) {
	no := false
	return s.CountByFilter(ctx, QueryFilter{
		EventType: EventCascadeDelete,
		Success:   &no,
		Repaired:  &no,
	})
}

// MarkRepaired flags a failed event as repaired.
func (s *Store) MarkRepaired(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"repaired": true, "repaired_at": now}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
