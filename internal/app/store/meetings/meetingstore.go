// internal/app/store/meetings/meetingstore.go
package meetingstore

import (
	"context"
	"time"

	"github.com/koinonia-app/koinonia/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RecentLimit is how many meetings the member page shows.
const RecentLimit = 5

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("meetings")}
}

// Create appends a meeting.
func (s *Store) Create(ctx context.Context, m models.Meeting) (models.Meeting, error) {
	m.ID = primitive.NewObjectID()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Meeting{}, err
	}
	return m, nil
}

// ListByLeader returns a leader's meetings, latest meeting date first.
// limit <= 0 means no limit.
func (s *Store) ListByLeader(ctx context.Context, leaderID primitive.ObjectID, limit int64) ([]models.Meeting, error) {
	opts := options.Find().SetSort(bson.D{{Key: "meeting_date", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, bson.M{"leader_id": leaderID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Meeting{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Recent returns the leader's latest RecentLimit meetings.
func (s *Store) Recent(ctx context.Context, leaderID primitive.ObjectID) ([]models.Meeting, error) {
	return s.ListByLeader(ctx, leaderID, RecentLimit)
}

// CountAll counts every meeting.
func (s *Store) CountAll(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// CountByLeader counts one leader's meetings.
func (s *Store) CountByLeader(ctx context.Context, leaderID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"leader_id": leaderID})
}
