// internal/domain/models/classroom.go
package models

import "time"

// Classroom name length bounds, applied after whitespace cleaning.
const (
	ClassroomNameMinLen = 8
	ClassroomNameMaxLen = 150
)

// Classroom is a quiz classroom. Ownership is not recorded on the document
// itself; the creator is discoverable only through the members sub-collection
// (see Membership). Password is the opaque join secret handed out by the
// creator and regenerable at any time.
type Classroom struct {
	ID            string    `bson:"_id" json:"id"`
	Name          string    `bson:"name" json:"name"`
	NameCI        string    `bson:"name_ci" json:"-"`
	CreatedByName string    `bson:"created_by_name" json:"created_by_name"`
	Password      string    `bson:"password" json:"-"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}
