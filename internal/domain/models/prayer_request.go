// internal/domain/models/prayer_request.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PrayerRequest is an append-only prayer submission from a user, optionally
// addressed to a leader.
type PrayerRequest struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID  `bson:"user_id" json:"userId"`
	LeaderID  *primitive.ObjectID `bson:"leader_id,omitempty" json:"leaderId,omitempty"`
	Subject   string              `bson:"subject" json:"subject"`
	Message   string              `bson:"message" json:"message"`
	CreatedAt time.Time           `bson:"created_at" json:"createdAt"`
}
