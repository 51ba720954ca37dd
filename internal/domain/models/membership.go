// internal/domain/models/membership.go
package models

import "time"

// Membership roles.
const (
	RoleCreator = "creator"
	RoleMember  = "member"
)

// Membership lives at classrooms/{classroomID}/members/{userID} and is the
// only queryable path from a user to their classrooms. The document id IS the
// user id, so at most one membership can exist per (classroom, user) without
// any transaction. ClassroomCreatedAt is denormalized from the parent
// classroom and is the sole sort key for paginating a user's classroom list.
type Membership struct {
	UserID             string    `bson:"user_id" json:"user_id"`
	Email              string    `bson:"email" json:"email"`
	Name               string    `bson:"name" json:"name"`
	Role               string    `bson:"role" json:"role"`
	ClassroomCreatedAt time.Time `bson:"classroom_created_at" json:"classroom_created_at"`
}

// ValidRole reports whether role is one of the two membership roles.
func ValidRole(role string) bool {
	return role == RoleCreator || role == RoleMember
}
