package userstore

import (
	"context"
	"errors"

	"github.com/koinonia-app/koinonia/internal/app/system/normalize"
	"github.com/koinonia-app/koinonia/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// PromoteToAdmin gives the user registered under email the ADMIN role.
// It returns promoted=false when the user is already an admin, and
// ErrNotFound when nobody has registered with that email yet.
//
// Used at startup so a fresh deployment can get its first admin without
// editing the database by hand.
func (s *Store) PromoteToAdmin(ctx context.Context, email string) (promoted bool, err error) {
	email = normalize.Email(email)
	if email == "" {
		return false, ErrNotFound
	}

	var existing struct {
		Role string `bson:"role"`
	}
	err = s.c.FindOne(ctx, bson.M{"email": email}).Decode(&existing)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, err
	}
	if existing.Role == models.RoleAdmin {
		return false, nil
	}

	_, err = s.c.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"role": models.RoleAdmin}})
	if err != nil {
		return false, err
	}
	return true, nil
}
