// internal/app/classroom/check.go

package classroom

import (
	"context"

	"github.com/dalemusser/waffle/pantry/text"
	"go.uber.org/zap"

	"github.com/abhyas01/Qaptain-sub001/internal/app/store/gateway"
	"github.com/abhyas01/Qaptain-sub001/internal/app/system/normalize"
	"github.com/abhyas01/Qaptain-sub001/internal/domain/models"
)

// NameStatus is the outcome of a classroom name uniqueness check.
type NameStatus int

const (
	// NameUnique: no classroom created by the user carries this name.
	NameUnique NameStatus = iota
	// NameDuplicate: a positively confirmed collision exists.
	NameDuplicate
	// NameIndeterminate: the membership index could not be read, so the
	// check could not run at all. Callers must abort, not assume.
	NameIndeterminate
)

func (s NameStatus) String() string {
	switch s {
	case NameUnique:
		return "unique"
	case NameDuplicate:
		return "duplicate"
	case NameIndeterminate:
		return "indeterminate"
	default:
		return "unknown"
	}
}

// CheckName reports whether userID already created a classroom named
// candidate, compared on the cleaned, case-folded form.
// excludeClassroomID, when non-empty, skips that classroom so a rename to
// the current name is not a self-collision.
//
// The creator memberships come from one collection-group query; the
// classrooms behind them are fetched concurrently, and the first confirmed
// collision returns early. A classroom that cannot be read is treated as
// no-collision: the check stays advisory and the write path's own failure
// handling deals with a genuinely broken store. Indeterminate is returned
// only when the membership query itself fails, with the cause as the second
// return value.
//
// The check is advisory, not a guarantee: two concurrent creates with the
// same name can both see Unique. Nothing re-validates after the write.
func (m *Manager) CheckName(ctx context.Context, userID, candidate, excludeClassroomID string) (NameStatus, error) {
	target := text.Fold(normalize.ClassName(candidate))

	memberships, err := m.gw.QueryGroup(ctx, membersGroup, []gateway.Filter{
		{Field: "user_id", Value: userID},
		{Field: "role", Value: models.RoleCreator},
	}, gateway.Options{})
	if err != nil {
		return NameIndeterminate, err
	}
	if len(memberships) == 0 {
		return NameUnique, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hits := make(chan bool, len(memberships))
	for _, mem := range memberships {
		go func(mem gateway.Doc) {
			hits <- m.classroomNameMatches(ctx, mem, target, excludeClassroomID)
		}(mem)
	}
	for range memberships {
		if <-hits {
			return NameDuplicate, nil
		}
	}
	return NameUnique, nil
}

// classroomNameMatches resolves the classroom that owns a membership doc and
// compares its folded name against target.
func (m *Manager) classroomNameMatches(ctx context.Context, mem gateway.Doc, target, excludeClassroomID string) bool {
	parent, ok := gateway.ParentDoc(mem.Path)
	if !ok {
		return false
	}
	doc, err := m.gw.Get(ctx, parent)
	if err != nil {
		// Missing or unreadable classrooms do not block the caller.
		m.log.Debug("name check skipped unreadable classroom",
			zap.String("path", parent), zap.Error(err))
		return false
	}
	if excludeClassroomID != "" && doc.ID == excludeClassroomID {
		return false
	}
	var c models.Classroom
	if err := doc.Decode(&c); err != nil {
		return false
	}
	if c.NameCI != "" {
		return c.NameCI == target
	}
	return text.Fold(c.Name) == target
}
