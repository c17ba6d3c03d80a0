// Package validators attaches JSON-Schema validators to the collections that
// hold community data, so malformed writes from any client are rejected by
// the server itself.
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/koinonia-app/koinonia/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates each collection if missing and sets its validator.
// Deployments without collMod support (some DocumentDB versions) are logged
// and skipped.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	var problems []string

	for _, c := range []struct {
		name   string
		schema bson.M
	}{
		{"users", usersSchema()},
		{"prayer_requests", prayerRequestsSchema()},
		{"meetings", meetingsSchema()},
		{"reading_plan_runs", readingPlanRunsSchema()},
		{"audit_events", nil},
	} {
		if err := ensureCollection(ctx, db, c.name, logger); err != nil {
			problems = append(problems, c.name+": "+err.Error())
			continue
		}
		if c.schema == nil {
			continue
		}
		if err := setValidator(ctx, db, c.name, c.schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				logger.Info("validator skipped (unsupported)", zap.String("collection", c.name))
				continue
			}
			problems = append(problems, c.name+": "+err.Error())
			continue
		}
		logger.Debug("validator ensured", zap.String("collection", c.name))
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, logger *zap.Logger) error {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err == nil && len(names) > 0 {
		return nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return nil
		}
		return err
	}
	logger.Info("created collection", zap.String("collection", name))
	return nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	return db.RunCommand(ctx, cmd).Err()
}

func commandErrorMatches(err error, code int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandErrorMatches(err, 48, "already exists", "namespace exists")
}

func isNoSuchCommand(err error) bool {
	return commandErrorMatches(err, 59, "no such command")
}

func isNotImplemented(err error) bool {
	return commandErrorMatches(err, 115, "not implemented", "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var (
	nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
	integer  = bson.A{"int", "long"}
)

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "email", "password_hash", "role", "created_at"},
			"properties": bson.M{
				"name":             nonBlank,
				"name_ci":          bson.M{"bsonType": "string"},
				"email":            nonBlank,
				"password_hash":    nonBlank,
				"role":             bson.M{"enum": bson.A{models.RoleMember, models.RoleLeader, models.RoleAdmin}},
				"leader_id":        bson.M{"bsonType": bson.A{"objectId", "null"}},
				"last_login_at":    bson.M{"bsonType": bson.A{"date", "null"}},
				"last_activity_at": bson.M{"bsonType": bson.A{"date", "null"}},
				"created_at":       bson.M{"bsonType": "date"},
			},
		},
	}
}

func prayerRequestsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "subject", "message", "created_at"},
			"properties": bson.M{
				"user_id":    bson.M{"bsonType": "objectId"},
				"leader_id":  bson.M{"bsonType": bson.A{"objectId", "null"}},
				"subject":    nonBlank,
				"message":    nonBlank,
				"created_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func meetingsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"leader_id", "title", "meeting_date", "created_at"},
			"properties": bson.M{
				"leader_id":    bson.M{"bsonType": "objectId"},
				"title":        nonBlank,
				"description":  bson.M{"bsonType": "string"},
				"meeting_date": bson.M{"bsonType": "date"},
				"created_at":   bson.M{"bsonType": "date"},
			},
		},
	}
}

func readingPlanRunsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "plan_slug", "iteration", "status", "current_day", "started_at"},
			"properties": bson.M{
				"user_id":      bson.M{"bsonType": "objectId"},
				"plan_slug":    nonBlank,
				"iteration":    bson.M{"bsonType": integer, "minimum": 1},
				"status":       bson.M{"enum": bson.A{models.RunInProgress, models.RunCompleted}},
				"current_day":  bson.M{"bsonType": integer, "minimum": 1},
				"total_days":   bson.M{"bsonType": bson.A{"int", "long", "null"}},
				"started_at":   bson.M{"bsonType": "date"},
				"completed_at": bson.M{"bsonType": bson.A{"date", "null"}},
			},
		},
	}
}
