// internal/app/classroom/check_test.go

package classroom

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCheckName(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	c := mustCreate(t, m, alice, "Intro to Physics")

	tests := []struct {
		name      string
		userID    string
		candidate string
		exclude   string
		want      NameStatus
	}{
		{"no collision", alice.UserID, "Organic Chemistry", "", NameUnique},
		{"exact collision", alice.UserID, "Intro to Physics", "", NameDuplicate},
		{"case-insensitive collision", alice.UserID, "INTRO TO physics", "", NameDuplicate},
		{"whitespace-insensitive collision", alice.UserID, " Intro \t to   Physics ", "", NameDuplicate},
		{"excluded classroom is not a collision", alice.UserID, "Intro to Physics", c.ID, NameUnique},
		{"other user sees no collision", bob.UserID, "Intro to Physics", "", NameUnique},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := m.CheckName(ctx, tc.userID, tc.candidate, tc.exclude)
			if err != nil {
				t.Fatalf("CheckName returned err %v for status %v", err, got)
			}
			if got != tc.want {
				t.Fatalf("CheckName = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCheckNameIgnoresMemberRole(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	// Bob is a plain member of Alice's classroom; its name must not count
	// against names Bob wants for his own classrooms.
	c := mustCreate(t, m, alice, "Intro to Physics")
	if _, err := m.Join(ctx, bob, c.Password); err != nil {
		t.Fatalf("join: %v", err)
	}

	got, err := m.CheckName(ctx, bob.UserID, "Intro to Physics", "")
	if err != nil || got != NameUnique {
		t.Fatalf("CheckName = %v, %v; want NameUnique, nil", got, err)
	}
}

func TestCheckNameIndeterminateOnIndexFailure(t *testing.T) {
	m, gw := newManager(t)
	mustCreate(t, m, alice, "Intro to Physics")

	indexDown := errors.New("members index unavailable")
	gw.QueryErr = func(collection string) error {
		if collection == "members" {
			return indexDown
		}
		return nil
	}

	got, err := m.CheckName(context.Background(), alice.UserID, "Organic Chemistry", "")
	if got != NameIndeterminate {
		t.Fatalf("CheckName = %v, want NameIndeterminate", got)
	}
	if !errors.Is(err, indexDown) {
		t.Fatalf("err = %v, want the index failure", err)
	}
}

func TestCheckNameTreatsUnreadableClassroomAsNoCollision(t *testing.T) {
	m, gw := newManager(t)
	ctx := context.Background()
	c := mustCreate(t, m, alice, "Intro to Physics")
	mustCreate(t, m, alice, "Organic Chemistry")

	// The classroom holding the would-be duplicate cannot be read; the
	// check degrades to no-collision instead of failing the caller.
	gw.GetErr = func(path string) error {
		if path == "classrooms/"+c.ID {
			return errors.New("read refused")
		}
		return nil
	}

	got, err := m.CheckName(ctx, alice.UserID, "Intro to Physics", "")
	if err != nil || got != NameUnique {
		t.Fatalf("CheckName = %v, %v; want NameUnique, nil", got, err)
	}

	// The readable sibling still collides.
	got, err = m.CheckName(ctx, alice.UserID, "organic chemistry", "")
	if err != nil || got != NameDuplicate {
		t.Fatalf("CheckName = %v, %v; want NameDuplicate, nil", got, err)
	}
}

func TestCheckNameFansOutConcurrently(t *testing.T) {
	m, gw := newManager(t)
	ctx := context.Background()
	for _, name := range []string{
		"Intro to Physics", "Organic Chemistry", "Linear Algebra",
		"World History", "Macro Economics",
	} {
		mustCreate(t, m, alice, name)
	}

	// Five classroom reads at 30ms each: sequential resolution would need
	// ~150ms, concurrent fan-out one delay's worth.
	gw.GetDelay = func(path string) time.Duration { return 30 * time.Millisecond }

	start := time.Now()
	got, err := m.CheckName(ctx, alice.UserID, "Quantum Mechanics", "")
	elapsed := time.Since(start)

	if err != nil || got != NameUnique {
		t.Fatalf("CheckName = %v, %v; want NameUnique, nil", got, err)
	}
	if elapsed > 100*time.Millisecond {
		t.Errorf("fan-out took %v, expected well under the sequential 150ms", elapsed)
	}
}
