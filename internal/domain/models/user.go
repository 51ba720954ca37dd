// internal/domain/models/user.go
package models

import "time"

// User is an identity record at users/{id}. The classroom subsystem reads
// only the profile fields (UserID, Email, Name); the password hash is owned
// by the auth feature and never leaves the server.
type User struct {
	ID           string    `bson:"_id" json:"id"`
	UserID       string    `bson:"user_id" json:"user_id"`
	Name         string    `bson:"name" json:"name"`
	NameCI       string    `bson:"name_ci" json:"-"`
	Email        string    `bson:"email" json:"email"`
	EmailCI      string    `bson:"email_ci" json:"-"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}
