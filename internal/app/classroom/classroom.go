// internal/app/classroom/classroom.go

// Package classroom implements the membership subsystem: classroom
// lifecycle (create, rename, regenerate join secret, join), the per-creator
// name uniqueness check, and keyset pagination of a user's classroom list.
// All storage goes through the gateway; nothing here is Mongo-specific.
package classroom

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/waffle/pantry/text"
	"go.uber.org/zap"

	"github.com/abhyas01/Qaptain-sub001/internal/app/store/gateway"
	"github.com/abhyas01/Qaptain-sub001/internal/app/system/normalize"
	"github.com/abhyas01/Qaptain-sub001/internal/domain/models"
)

var (
	// ErrInvalidName means the cleaned classroom name is outside the
	// allowed length bounds. Detected before any storage call.
	ErrInvalidName = errors.New("classroom: invalid name")

	// ErrDuplicateName means the acting user already created a classroom
	// with the same name, compared case- and whitespace-insensitively.
	ErrDuplicateName = errors.New("classroom: duplicate name")

	// ErrNotFound covers a missing classroom, a join secret matching
	// nothing, and operations by users with no membership in the classroom.
	ErrNotFound = errors.New("classroom: not found")

	// ErrAlreadyMember means the joining user already has a membership in
	// the classroom, in either role.
	ErrAlreadyMember = errors.New("classroom: already a member")

	// ErrWrongRole means the operation is restricted to the classroom's
	// creator and the acting user is a plain member.
	ErrWrongRole = errors.New("classroom: requires creator role")
)

// Profile carries the acting user's denormalized fields. Memberships copy
// these at write time; later profile edits do not propagate.
type Profile struct {
	UserID string
	Name   string
	Email  string
}

const (
	classroomsColl = "classrooms"
	membersGroup   = "members"
)

func classroomPath(classroomID string) string {
	return classroomsColl + "/" + classroomID
}

func memberPath(classroomID, userID string) string {
	return classroomsColl + "/" + classroomID + "/" + membersGroup + "/" + userID
}

func membersColl(classroomID string) string {
	return classroomsColl + "/" + classroomID + "/" + membersGroup
}

// Manager owns classroom lifecycle operations.
type Manager struct {
	gw  gateway.Gateway
	log *zap.Logger
}

// NewManager returns a Manager backed by gw.
func NewManager(gw gateway.Gateway, log *zap.Logger) *Manager {
	return &Manager{gw: gw, log: log}
}

// cleanName applies the storage-canonical cleaning policy and validates the
// result. Every name entering validation, comparison, or storage goes
// through here first.
func cleanName(raw string) (string, error) {
	name := normalize.ClassName(raw)
	if len(name) < models.ClassroomNameMinLen || len(name) > models.ClassroomNameMaxLen {
		return "", ErrInvalidName
	}
	return name, nil
}

// Create makes a new classroom owned by the caller: the classroom document
// first, then the creator membership keyed by the caller's user id. There is
// no transaction across the two writes; if the membership write fails the
// classroom is left behind unreferenced and the failure is logged.
func (m *Manager) Create(ctx context.Context, actor Profile, rawName string) (models.Classroom, error) {
	name, err := cleanName(rawName)
	if err != nil {
		return models.Classroom{}, err
	}

	switch status, err := m.CheckName(ctx, actor.UserID, name, ""); status {
	case NameDuplicate:
		return models.Classroom{}, ErrDuplicateName
	case NameIndeterminate:
		return models.Classroom{}, fmt.Errorf("classroom: name check: %w", err)
	}

	id, err := m.createClassroomDoc(ctx, name, actor.Name)
	if err != nil {
		return models.Classroom{}, err
	}

	// Read back for the server-assigned creation time; the membership
	// denormalizes it as the pagination sort key, so the order of these two
	// steps cannot change.
	doc, err := m.gw.Get(ctx, classroomPath(id))
	if err != nil {
		m.log.Error("classroom created but read-back failed; orphan left behind",
			zap.String("classroom_id", id), zap.Error(err))
		return models.Classroom{}, fmt.Errorf("classroom: read back %s: %w", id, err)
	}
	var created models.Classroom
	if err := doc.Decode(&created); err != nil {
		return models.Classroom{}, err
	}
	created.ID = id

	if err := m.putMembership(ctx, created, actor, models.RoleCreator); err != nil {
		m.log.Error("classroom created but creator membership write failed; orphan left behind",
			zap.String("classroom_id", id),
			zap.String("user_id", actor.UserID),
			zap.Error(err))
		return models.Classroom{}, fmt.Errorf("classroom: creator membership: %w", err)
	}
	return created, nil
}

// createClassroomDoc writes the classroom with a fresh join secret,
// retrying once with a new secret if the unique index rejects it.
func (m *Manager) createClassroomDoc(ctx context.Context, name, creatorName string) (string, error) {
	for attempt := 0; attempt < 2; attempt++ {
		secret, err := newJoinSecret()
		if err != nil {
			return "", err
		}
		id, err := m.gw.Create(ctx, classroomsColl, map[string]any{
			"name":            name,
			"name_ci":         text.Fold(name),
			"created_by_name": creatorName,
			"password":        secret,
			"created_at":      gateway.ServerTimestamp,
		})
		if errors.Is(err, gateway.ErrDuplicate) && attempt == 0 {
			m.log.Warn("join secret collided on create, retrying", zap.String("name", name))
			continue
		}
		if err != nil {
			return "", fmt.Errorf("classroom: create: %w", err)
		}
		return id, nil
	}
	return "", fmt.Errorf("classroom: create: %w", gateway.ErrDuplicate)
}

func (m *Manager) putMembership(ctx context.Context, c models.Classroom, actor Profile, role string) error {
	return m.gw.Put(ctx, memberPath(c.ID, actor.UserID), map[string]any{
		"user_id":              actor.UserID,
		"email":                actor.Email,
		"name":                 actor.Name,
		"role":                 role,
		"classroom_created_at": c.CreatedAt,
	})
}

// Get returns a classroom the caller belongs to, plus the caller's role in
// it. Users with no membership cannot observe the classroom at all.
func (m *Manager) Get(ctx context.Context, classroomID, userID string) (models.Classroom, string, error) {
	mem, err := m.membership(ctx, classroomID, userID)
	if err != nil {
		return models.Classroom{}, "", err
	}
	doc, err := m.gw.Get(ctx, classroomPath(classroomID))
	if errors.Is(err, gateway.ErrNotFound) {
		return models.Classroom{}, "", ErrNotFound
	}
	if err != nil {
		return models.Classroom{}, "", fmt.Errorf("classroom: get %s: %w", classroomID, err)
	}
	var c models.Classroom
	if err := doc.Decode(&c); err != nil {
		return models.Classroom{}, "", err
	}
	c.ID = classroomID
	return c, mem.Role, nil
}

// Rename changes a classroom's display name. Creator only; the classroom
// itself is excluded from the duplicate check so renaming to the current
// name (or a re-cased form of it) succeeds.
func (m *Manager) Rename(ctx context.Context, actor Profile, classroomID, rawName string) error {
	name, err := cleanName(rawName)
	if err != nil {
		return err
	}
	if err := m.requireCreator(ctx, classroomID, actor.UserID); err != nil {
		return err
	}

	switch status, err := m.CheckName(ctx, actor.UserID, name, classroomID); status {
	case NameDuplicate:
		return ErrDuplicateName
	case NameIndeterminate:
		return fmt.Errorf("classroom: name check: %w", err)
	}

	err = m.gw.Update(ctx, classroomPath(classroomID), map[string]any{
		"name":    name,
		"name_ci": text.Fold(name),
	})
	if errors.Is(err, gateway.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("classroom: rename %s: %w", classroomID, err)
	}
	return nil
}

// RegeneratePassword replaces the join secret with a fresh one, invalidating
// the old secret immediately. Creator only.
func (m *Manager) RegeneratePassword(ctx context.Context, actor Profile, classroomID string) (string, error) {
	if err := m.requireCreator(ctx, classroomID, actor.UserID); err != nil {
		return "", err
	}
	for attempt := 0; attempt < 2; attempt++ {
		secret, err := newJoinSecret()
		if err != nil {
			return "", err
		}
		err = m.gw.Update(ctx, classroomPath(classroomID), map[string]any{"password": secret})
		if errors.Is(err, gateway.ErrDuplicate) && attempt == 0 {
			m.log.Warn("join secret collided on regenerate, retrying",
				zap.String("classroom_id", classroomID))
			continue
		}
		if errors.Is(err, gateway.ErrNotFound) {
			return "", ErrNotFound
		}
		if err != nil {
			return "", fmt.Errorf("classroom: regenerate password %s: %w", classroomID, err)
		}
		return secret, nil
	}
	return "", fmt.Errorf("classroom: regenerate password: %w", gateway.ErrDuplicate)
}

// Join adds the caller as a member of the classroom whose join secret
// matches. The secret is the only lookup key; there is no browsing.
func (m *Manager) Join(ctx context.Context, actor Profile, secret string) (models.Classroom, error) {
	secret = normalize.QueryParam(secret)
	if secret == "" {
		return models.Classroom{}, ErrNotFound
	}

	docs, err := m.gw.Query(ctx, classroomsColl, "password", secret, gateway.Options{Limit: 1})
	if err != nil {
		return models.Classroom{}, fmt.Errorf("classroom: join lookup: %w", err)
	}
	if len(docs) == 0 {
		return models.Classroom{}, ErrNotFound
	}
	var c models.Classroom
	if err := docs[0].Decode(&c); err != nil {
		return models.Classroom{}, err
	}
	c.ID = docs[0].ID

	if _, err := m.membership(ctx, c.ID, actor.UserID); err == nil {
		return models.Classroom{}, ErrAlreadyMember
	} else if !errors.Is(err, ErrNotFound) {
		return models.Classroom{}, err
	}

	err = m.putMembership(ctx, c, actor, models.RoleMember)
	if errors.Is(err, gateway.ErrDuplicate) {
		// Lost a race with a concurrent join by the same user; the document
		// key made the second write a no-op rather than a double membership.
		return models.Classroom{}, ErrAlreadyMember
	}
	if err != nil {
		return models.Classroom{}, fmt.Errorf("classroom: join %s: %w", c.ID, err)
	}
	return c, nil
}

// membership loads the caller's membership document, mapping absence to
// ErrNotFound so callers cannot distinguish "no classroom" from "not yours".
func (m *Manager) membership(ctx context.Context, classroomID, userID string) (models.Membership, error) {
	doc, err := m.gw.Get(ctx, memberPath(classroomID, userID))
	if errors.Is(err, gateway.ErrNotFound) {
		return models.Membership{}, ErrNotFound
	}
	if err != nil {
		return models.Membership{}, fmt.Errorf("classroom: membership %s/%s: %w", classroomID, userID, err)
	}
	var mem models.Membership
	if err := doc.Decode(&mem); err != nil {
		return models.Membership{}, err
	}
	return mem, nil
}

func (m *Manager) requireCreator(ctx context.Context, classroomID, userID string) error {
	mem, err := m.membership(ctx, classroomID, userID)
	if err != nil {
		return err
	}
	if mem.Role != models.RoleCreator {
		return ErrWrongRole
	}
	return nil
}
