// internal/domain/models/meeting.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Meeting is a group meeting scheduled by a leader (or an admin acting as
// one). Meetings are append-only.
type Meeting struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LeaderID    primitive.ObjectID `bson:"leader_id" json:"leaderId"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	MeetingDate time.Time          `bson:"meeting_date" json:"meetingDate"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
}
