// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/koinonia-app/koinonia/internal/app/system/auth"
	"github.com/koinonia-app/koinonia/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (upper-cased), name, Mongo ObjectID, and a
// found flag. If no user is present or the user ID is malformed, it returns
// "", "", NilObjectID, false, so ok=true always means a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "", "", primitive.NilObjectID, false
	}
	return models.CanonicalRole(user.Role), user.Name, userID, true
}

// HasAnyRole reports whether the current request's user has any of the given roles.
func HasAnyRole(r *http.Request, roles ...string) bool {
	role, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		if strings.EqualFold(role, strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool { return HasAnyRole(r, models.RoleAdmin) }

// IsLeader reports whether the current request's user is a leader.
func IsLeader(r *http.Request) bool { return HasAnyRole(r, models.RoleLeader) }

// IsMember reports whether the current request's user is a member.
func IsMember(r *http.Request) bool { return HasAnyRole(r, models.RoleMember) }

// CanManageMeetings reports whether the user may schedule meetings and read
// prayer requests (leaders and admins).
func CanManageMeetings(r *http.Request) bool {
	return HasAnyRole(r, models.RoleLeader, models.RoleAdmin)
}

// LeaderID returns the current user's selected leader, if any.
func LeaderID(r *http.Request) *primitive.ObjectID {
	user, ok := auth.CurrentUser(r)
	if !ok || user.LeaderID == "" {
		return nil
	}
	oid, err := primitive.ObjectIDFromHex(user.LeaderID)
	if err != nil {
		return nil
	}
	return &oid
}
