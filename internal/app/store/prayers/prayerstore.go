// internal/app/store/prayers/prayerstore.go
package prayerstore

import (
	"context"
	"time"

	"github.com/koinonia-app/koinonia/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("prayer_requests")}
}

// Create appends a prayer request. Fields are stored as given; callers
// validate and sanitize first.
func (s *Store) Create(ctx context.Context, p models.PrayerRequest) (models.PrayerRequest, error) {
	p.ID = primitive.NewObjectID()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.PrayerRequest{}, err
	}
	return p, nil
}

// CountAll counts every prayer request.
func (s *Store) CountAll(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// CountForLeader counts requests addressed to leaderID.
func (s *Store) CountForLeader(ctx context.Context, leaderID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"leader_id": leaderID})
}
