// internal/app/store/users/userstore.go

// Package userstore persists identity records at users/{id}.
package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhyas01/Qaptain-sub001/internal/app/store/gateway"
	"github.com/abhyas01/Qaptain-sub001/internal/app/system/normalize"
	"github.com/abhyas01/Qaptain-sub001/internal/domain/models"
)

var (
	// ErrDuplicateEmail is returned when a signup reuses an existing email.
	ErrDuplicateEmail = errors.New("a user with this email already exists")

	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")

	// ErrBadCredentials is returned by Authenticate for an unknown email or
	// a wrong password; callers cannot tell which.
	ErrBadCredentials = errors.New("invalid email or password")
)

const usersColl = "users"

type Store struct {
	gw gateway.Gateway
}

func New(gw gateway.Gateway) *Store {
	return &Store{gw: gw}
}

// Create inserts a new user with a bcrypt-hashed password. The folded email
// must be unused; the pre-check keeps the common case friendly and the
// unique index on email_ci closes the race two concurrent signups leave.
func (s *Store) Create(ctx context.Context, name, email, password string) (models.User, error) {
	name = normalize.ClassName(name)
	email = normalize.Email(email)
	emailCI := text.Fold(email)

	existing, err := s.gw.Query(ctx, usersColl, "email_ci", emailCI, gateway.Options{Limit: 1})
	if err != nil {
		return models.User{}, fmt.Errorf("userstore: email check: %w", err)
	}
	if len(existing) > 0 {
		return models.User{}, ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("userstore: hash password: %w", err)
	}

	u := models.User{
		Name:         name,
		NameCI:       text.Fold(name),
		Email:        email,
		EmailCI:      emailCI,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	id, err := s.gw.Create(ctx, usersColl, map[string]any{
		"name":          u.Name,
		"name_ci":       u.NameCI,
		"email":         u.Email,
		"email_ci":      u.EmailCI,
		"password_hash": u.PasswordHash,
		"created_at":    u.CreatedAt,
	})
	if errors.Is(err, gateway.ErrDuplicate) {
		return models.User{}, ErrDuplicateEmail
	}
	if err != nil {
		return models.User{}, fmt.Errorf("userstore: create: %w", err)
	}
	u.ID = id
	u.UserID = id

	// user_id mirrors the document id so profile fields travel as one flat
	// record into membership and score documents.
	if err := s.gw.Update(ctx, usersColl+"/"+id, map[string]any{"user_id": id}); err != nil {
		return models.User{}, fmt.Errorf("userstore: set user_id: %w", err)
	}
	return u, nil
}

// GetByID loads a user by document id.
func (s *Store) GetByID(ctx context.Context, id string) (models.User, error) {
	doc, err := s.gw.Get(ctx, usersColl+"/"+id)
	if errors.Is(err, gateway.ErrNotFound) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("userstore: get %s: %w", id, err)
	}
	var u models.User
	if err := doc.Decode(&u); err != nil {
		return models.User{}, err
	}
	u.ID = doc.ID
	return u, nil
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	docs, err := s.gw.Query(ctx, usersColl, "email_ci", text.Fold(normalize.Email(email)), gateway.Options{Limit: 1})
	if err != nil {
		return models.User{}, fmt.Errorf("userstore: find by email: %w", err)
	}
	if len(docs) == 0 {
		return models.User{}, ErrNotFound
	}
	var u models.User
	if err := docs[0].Decode(&u); err != nil {
		return models.User{}, err
	}
	u.ID = docs[0].ID
	return u, nil
}

// Authenticate verifies an email/password pair and returns the user.
func (s *Store) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		// Burn a comparison anyway so unknown emails and wrong passwords
		// take the same time.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return models.User{}, ErrBadCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrBadCredentials
	}
	return u, nil
}

// dummyHash is a valid bcrypt hash of an unguessable value, used to equalize
// timing between unknown-email and wrong-password failures.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("qaptain-timing-pad"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
}()
