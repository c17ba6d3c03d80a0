package userstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/koinonia-app/koinonia/internal/app/system/apperr"
	"github.com/koinonia-app/koinonia/internal/app/system/normalize"
	"github.com/koinonia-app/koinonia/internal/app/system/presence"
	"github.com/koinonia-app/koinonia/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrNotFound is returned when no user matches.
	ErrNotFound = apperr.NotFoundError("User not found.")
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = apperr.ValidationError("A user with this email already exists.")
	errBadRole        = errors.New(`role must be "MEMBER"|"LEADER"|"ADMIN"`)
)

var byName = bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.User, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail looks up a user by normalized email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": normalize.Email(email)})
}

// Create inserts a new user after normalizing fields. Role defaults to MEMBER.
// PasswordHash must already be set by the caller.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	if u.Role == "" {
		u.Role = models.RoleMember
	}
	u.Role = normalize.Role(u.Role)
	if !models.IsValidRole(u.Role) {
		return models.User{}, errBadRole
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) updateByID(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updated_at"] = time.Now().UTC()
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRole overwrites a user's role.
func (s *Store) SetRole(ctx context.Context, id primitive.ObjectID, role string) error {
	if !models.IsValidRole(role) {
		return errBadRole
	}
	return s.updateByID(ctx, id, bson.M{"role": role})
}

// SetLeader points a user at their leader.
func (s *Store) SetLeader(ctx context.Context, id, leaderID primitive.ObjectID) error {
	return s.updateByID(ctx, id, bson.M{"leader_id": leaderID})
}

// TouchActivity stamps last_activity_at. Unknown ids are ignored.
func (s *Store) TouchActivity(ctx context.Context, id primitive.ObjectID, now time.Time) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"last_activity_at": now}})
	return err
}

// TouchLogin stamps both last_login_at and last_activity_at.
func (s *Store) TouchLogin(ctx context.Context, id primitive.ObjectID, now time.Time) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"last_login_at": now, "last_activity_at": now}})
	return err
}

// CountAll counts every user.
func (s *Store) CountAll(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// CountByRole counts users holding role.
func (s *Store) CountByRole(ctx context.Context, role string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"role": role})
}

// CountMembersWithLeader counts MEMBERs by whether leader_id is set.
func (s *Store) CountMembersWithLeader(ctx context.Context, withLeader bool) (int64, error) {
	f := bson.M{"role": models.RoleMember}
	if withLeader {
		f["leader_id"] = bson.M{"$ne": nil}
	} else {
		f["leader_id"] = nil
	}
	return s.c.CountDocuments(ctx, f)
}

// CountOnlineMembers counts MEMBERs active inside the presence window.
func (s *Store) CountOnlineMembers(ctx context.Context, now time.Time) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"role":             models.RoleMember,
		"last_activity_at": bson.M{"$gt": presence.Threshold(now)},
	})
}

// ListByRole returns users holding role, sorted by name.
func (s *Store) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	return s.find(ctx, bson.M{"role": role}, options.Find().SetSort(byName))
}

// ListAll returns every user, newest first.
func (s *Store) ListAll(ctx context.Context) ([]models.User, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1}, {Key: "_id", Value: -1},
	}))
}

// ListDisciples returns the MEMBERs whose leader is leaderID, sorted by name.
func (s *Store) ListDisciples(ctx context.Context, leaderID primitive.ObjectID) ([]models.User, error) {
	return s.find(ctx, bson.M{"role": models.RoleMember, "leader_id": leaderID},
		options.Find().SetSort(byName))
}

// CountDisciplesByLeader returns, for each of leaderIDs, how many users point
// at it. Leaders without disciples are absent from the map.
func (s *Store) CountDisciplesByLeader(ctx context.Context, leaderIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	out := make(map[primitive.ObjectID]int64, len(leaderIDs))
	if len(leaderIDs) == 0 {
		return out, nil
	}

	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"leader_id": bson.M{"$in": leaderIDs}}}},
		{{Key: "$group", Value: bson.M{"_id": "$leader_id", "n": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
			N  int64              `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.ID] = row.N
	}
	return out, cur.Err()
}

// GetManyByIDs loads users by id, keyed by id. Missing ids are skipped.
func (s *Store) GetManyByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	out := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	us, err := s.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	for _, u := range us {
		out[u.ID] = u
	}
	return out, nil
}
