// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents admins, leaders, and members of the community.
//
// NOTE:
//   - Groups are not stored. A leader's group is the set of members whose
//     LeaderID points at that leader, recomputed on every read.
//   - LastActivityAt drives the online indicator (see system/presence).
type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FullName     string              `bson:"name" json:"name"`
	FullNameCI   string              `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped
	Email        string              `bson:"email" json:"email"`
	PasswordHash string              `bson:"password_hash" json:"-"`
	Role         string              `bson:"role" json:"role"` // MEMBER | LEADER | ADMIN
	LeaderID     *primitive.ObjectID `bson:"leader_id,omitempty" json:"leaderId,omitempty"`

	LastLoginAt    *time.Time `bson:"last_login_at,omitempty" json:"lastLoginAt,omitempty"`
	LastActivityAt *time.Time `bson:"last_activity_at,omitempty" json:"lastActivityAt,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// HasLeader reports whether the user has selected a leader.
func (u User) HasLeader() bool {
	return u.LeaderID != nil && !u.LeaderID.IsZero()
}
