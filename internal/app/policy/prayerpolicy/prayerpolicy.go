// internal/app/policy/prayerpolicy/prayerpolicy.go
package prayerpolicy

import (
	"github.com/koinonia-app/koinonia/internal/app/system/apperr"
	"github.com/koinonia-app/koinonia/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Scope is what a caller may see when listing prayer requests.
// All means every request; otherwise only those addressed to LeaderID.
type Scope struct {
	All      bool
	LeaderID primitive.ObjectID
}

// ListScope returns the caller's listing scope. Members may submit prayer
// requests but never list them.
func ListScope(role string, callerID primitive.ObjectID) (Scope, error) {
	switch role {
	case models.RoleAdmin:
		return Scope{All: true}, nil
	case models.RoleLeader:
		return Scope{LeaderID: callerID}, nil
	}
	return Scope{}, apperr.Forbidden("Only leaders or admins can view prayer requests.")
}

// ResolveLeader picks the addressed leader: the explicit choice when given,
// else the author's current leader, else none. The caller must still check
// that a non-nil result is a LEADER.
func ResolveLeader(explicit, authorLeader *primitive.ObjectID) *primitive.ObjectID {
	if explicit != nil && !explicit.IsZero() {
		return explicit
	}
	if authorLeader != nil && !authorLeader.IsZero() {
		return authorLeader
	}
	return nil
}
