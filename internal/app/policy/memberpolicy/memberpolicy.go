// internal/app/policy/memberpolicy/memberpolicy.go
package memberpolicy

import (
	"github.com/koinonia-app/koinonia/internal/app/system/apperr"
	"github.com/koinonia-app/koinonia/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CheckCanSelect is the first gate of leader selection: only members pick
// a leader.
func CheckCanSelect(callerRole string) error {
	if callerRole != models.RoleMember {
		return apperr.Forbidden("Only members can select a leader.")
	}
	return nil
}

// CheckLeaderChoice validates the chosen leader. leader is nil when the id
// did not resolve to a user.
func CheckLeaderChoice(callerID, leaderID primitive.ObjectID, leader *models.User) error {
	if leaderID == callerID {
		return apperr.ValidationError("You cannot be your own leader.")
	}
	if leader == nil || leader.Role != models.RoleLeader {
		return apperr.ValidationError("Selected leader is invalid.")
	}
	return nil
}
