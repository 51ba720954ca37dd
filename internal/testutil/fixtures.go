// internal/testutil/fixtures.go

// Package testutil holds shared helpers for handler and store tests: an
// in-memory gateway seeded with domain fixtures, chi routing context
// injection, and signed-in request construction.
package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"

	"github.com/abhyas01/Qaptain-sub001/internal/app/store/gateway/memgw"
	"github.com/abhyas01/Qaptain-sub001/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that call handler methods directly.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures seeds an in-memory gateway with domain documents.
type Fixtures struct {
	GW *memgw.Store
	t  *testing.T

	clock time.Time
}

// NewFixtures returns a Fixtures over a fresh in-memory store. Seeded
// creation times start at a fixed instant and advance one minute per
// classroom, so list order is deterministic.
func NewFixtures(t *testing.T) *Fixtures {
	t.Helper()
	return &Fixtures{
		GW:    memgw.New(),
		t:     t,
		clock: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *Fixtures) tick() time.Time {
	now := f.clock
	f.clock = f.clock.Add(time.Minute)
	return now
}

// Classroom seeds a classroom plus its creator membership and returns the
// model. The join secret is "SECRET-" + id.
func (f *Fixtures) Classroom(id, name string, creator models.User) models.Classroom {
	f.t.Helper()
	createdAt := f.tick()
	c := models.Classroom{
		ID:            id,
		Name:          name,
		NameCI:        text.Fold(name),
		CreatedByName: creator.Name,
		Password:      "SECRET-" + id,
		CreatedAt:     createdAt,
	}
	err := f.GW.Put(context.Background(), "classrooms/"+id, map[string]any{
		"name":            c.Name,
		"name_ci":         c.NameCI,
		"created_by_name": c.CreatedByName,
		"password":        c.Password,
		"created_at":      c.CreatedAt,
	})
	if err != nil {
		f.t.Fatalf("seed classroom %s: %v", id, err)
	}
	f.Membership(c, creator, models.RoleCreator)
	return c
}

// Membership seeds a membership document for user in classroom c.
func (f *Fixtures) Membership(c models.Classroom, user models.User, role string) {
	f.t.Helper()
	err := f.GW.Put(context.Background(), "classrooms/"+c.ID+"/members/"+user.UserID, map[string]any{
		"user_id":              user.UserID,
		"email":                user.Email,
		"name":                 user.Name,
		"role":                 role,
		"classroom_created_at": c.CreatedAt,
	})
	if err != nil {
		f.t.Fatalf("seed membership %s/%s: %v", c.ID, user.UserID, err)
	}
}

// User returns a user model with matching id fields. It does not persist
// anything; handler tests put the user in the session context instead.
func User(id, name, email string) models.User {
	return models.User{ID: id, UserID: id, Name: name, Email: email}
}
