package prayerqueries

import (
	"context"
	"time"

	"github.com/koinonia-app/koinonia/internal/app/policy/prayerpolicy"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Person is the name/email pair joined onto a prayer request.
type Person struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
}

// PrayerRow is a prayer request with its author and addressed leader.
type PrayerRow struct {
	ID        primitive.ObjectID  `bson:"_id" json:"id"`
	UserID    primitive.ObjectID  `bson:"user_id" json:"userId"`
	LeaderID  *primitive.ObjectID `bson:"leader_id,omitempty" json:"leaderId,omitempty"`
	Subject   string              `bson:"subject" json:"subject"`
	Message   string              `bson:"message" json:"message"`
	CreatedAt time.Time           `bson:"created_at" json:"createdAt"`
	User      *Person             `bson:"user,omitempty" json:"user"`
	Leader    *Person             `bson:"leader,omitempty" json:"leader"`
}

func lookupPerson(localField, as string) []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   localField,
			"foreignField": "_id",
			"as":           as,
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$" + as, "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{as + ".password_hash": 0}}},
	}
}

// List returns the prayer requests visible in scope, newest first.
// limit <= 0 means no limit.
func List(ctx context.Context, db *mongo.Database, scope prayerpolicy.Scope, limit int64) ([]PrayerRow, error) {
	match := bson.M{}
	if !scope.All {
		match["leader_id"] = scope.LeaderID
	}

	pipe := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}},
	}
	if limit > 0 {
		pipe = append(pipe, bson.D{{Key: "$limit", Value: limit}})
	}
	pipe = append(pipe, lookupPerson("user_id", "user")...)
	pipe = append(pipe, lookupPerson("leader_id", "leader")...)

	cur, err := db.Collection("prayer_requests").Aggregate(ctx, pipe, options.Aggregate())
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []PrayerRow{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
