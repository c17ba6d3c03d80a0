// internal/app/policy/rolepolicy/rolepolicy.go
package rolepolicy

import (
	"context"

	"github.com/koinonia-app/koinonia/internal/app/system/apperr"
	"github.com/koinonia-app/koinonia/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Directory is the slice of the user store the policy needs. GetByID
// reports an unknown id with an apperr.NotFound error.
type Directory interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}

// Change is a requested role mutation.
type Change struct {
	ActorID   primitive.ObjectID
	ActorRole string
	TargetID  string
	NewRole   string
}

// Authorize runs the role-change guards in order and returns the target
// user when the change may be persisted:
//
//  1. the actor must be ADMIN (Authorization)
//  2. userId and a valid role are required (Validation)
//  3. the target must exist (NotFound)
//  4. an admin may not demote themself (Validation)
//  5. the last ADMIN may not be demoted (Validation)
//
// Self-demotion is checked before the admin count so the two rejections
// stay distinct.
func Authorize(ctx context.Context, dir Directory, c Change) (*models.User, error) {
	if c.ActorRole != models.RoleAdmin {
		return nil, apperr.Forbidden("Only admins can change roles.")
	}
	if c.TargetID == "" || c.NewRole == "" {
		return nil, apperr.ValidationError("userId and role are required.")
	}
	if !models.IsValidRole(c.NewRole) {
		return nil, apperr.ValidationError("Invalid role.")
	}

	targetID, err := primitive.ObjectIDFromHex(c.TargetID)
	if err != nil {
		return nil, apperr.NotFoundError("User not found.")
	}
	target, err := dir.GetByID(ctx, targetID)
	if apperr.Is(err, apperr.NotFound) {
		return nil, apperr.NotFoundError("User not found.")
	}
	if err != nil {
		return nil, err
	}

	demoting := c.NewRole != models.RoleAdmin

	if target.ID == c.ActorID && demoting {
		return nil, apperr.ValidationError("You cannot change your own role to anything other than ADMIN.")
	}

	if target.Role == models.RoleAdmin && demoting {
		admins, err := dir.CountByRole(ctx, models.RoleAdmin)
		if err != nil {
			return nil, err
		}
		if admins <= 1 {
			return nil, apperr.ValidationError("Cannot remove the last ADMIN.")
		}
	}

	return target, nil
}
