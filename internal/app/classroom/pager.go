// internal/app/classroom/pager.go

package classroom

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/abhyas01/Qaptain-sub001/internal/app/store/gateway"
	"github.com/abhyas01/Qaptain-sub001/internal/domain/models"
)

// ErrPageInFlight is returned by Pager.Fetch while a previous fetch on the
// same Pager has not finished.
var ErrPageInFlight = errors.New("classroom: page fetch already in flight")

// ClassroomListItem is one row of a user's classroom list: the classroom
// plus the user's role in it.
type ClassroomListItem struct {
	Classroom models.Classroom `json:"classroom"`
	Role      string           `json:"role"`
}

// Pager pages through one user's classrooms in one fixed configuration
// (role filter, newest classroom first). The cursor advances only forward;
// changing the configuration means making a new Pager. A Pager is safe for
// concurrent use in the narrow sense that overlapping Fetch calls are
// detected and rejected rather than corrupting the cursor.
type Pager struct {
	gw       gateway.Gateway
	log      *zap.Logger
	userID   string
	role     string // "" lists both roles
	pageSize int

	mu       sync.Mutex
	inFlight bool
	gen      int // bumped by Reset so a stale fetch cannot write back
	cursor   *gateway.Doc
	items    []ClassroomListItem
	hasMore  bool
	fetched  bool
}

// NewPager returns a Pager over userID's classrooms. role narrows the list
// to memberships with that role ("" for all). pageSize must be positive.
func NewPager(gw gateway.Gateway, log *zap.Logger, userID, role string, pageSize int) *Pager {
	return &Pager{gw: gw, log: log, userID: userID, role: role, pageSize: pageSize}
}

// Fetch loads the next page and appends it to the accumulated items,
// returning just the new page. It queries one row past the page size; the
// presence of that extra row is the only thing HasMore is based on, so no
// separate count query ever runs.
func (p *Pager) Fetch(ctx context.Context) ([]ClassroomListItem, error) {
	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		return nil, ErrPageInFlight
	}
	p.inFlight = true
	cursor, gen := p.cursor, p.gen
	p.mu.Unlock()

	page, next, hasMore, err := p.fetchPage(ctx, cursor)

	p.mu.Lock()
	p.inFlight = false
	if err == nil && gen == p.gen {
		p.fetched = true
		p.hasMore = hasMore
		if next != nil {
			p.cursor = next
		}
		p.items = append(p.items, page...)
	}
	p.mu.Unlock()
	return page, err
}

func (p *Pager) fetchPage(ctx context.Context, cursor *gateway.Doc) (items []ClassroomListItem, next *gateway.Doc, hasMore bool, err error) {
	filters := []gateway.Filter{{Field: "user_id", Value: p.userID}}
	if p.role != "" {
		filters = append(filters, gateway.Filter{Field: "role", Value: p.role})
	}
	memberships, err := p.gw.QueryGroup(ctx, membersGroup, filters, gateway.Options{
		OrderBy:    "classroom_created_at",
		Descending: true,
		Limit:      p.pageSize + 1,
		StartAfter: cursor,
	})
	if err != nil {
		return nil, nil, false, fmt.Errorf("classroom: page query: %w", err)
	}

	if len(memberships) > p.pageSize {
		hasMore = true
		memberships = memberships[:p.pageSize]
	}
	if len(memberships) == 0 {
		return nil, nil, false, nil
	}

	items = p.resolve(ctx, memberships)
	last := memberships[len(memberships)-1]
	return items, &last, hasMore, nil
}

// resolve fetches the classroom behind each membership concurrently and
// reassembles the results in membership order. Memberships whose classroom
// is gone or unreadable are dropped from the page without failing it, so a
// page can come back shorter than requested even when more rows exist.
func (p *Pager) resolve(ctx context.Context, memberships []gateway.Doc) []ClassroomListItem {
	resolved := make([]*ClassroomListItem, len(memberships))
	var wg sync.WaitGroup
	for i, mem := range memberships {
		wg.Add(1)
		go func(i int, mem gateway.Doc) {
			defer wg.Done()
			resolved[i] = p.resolveOne(ctx, mem)
		}(i, mem)
	}
	wg.Wait()

	items := make([]ClassroomListItem, 0, len(memberships))
	for _, it := range resolved {
		if it != nil {
			items = append(items, *it)
		}
	}
	return items
}

func (p *Pager) resolveOne(ctx context.Context, mem gateway.Doc) *ClassroomListItem {
	var membership models.Membership
	if err := mem.Decode(&membership); err != nil {
		return nil
	}
	parent, ok := gateway.ParentDoc(mem.Path)
	if !ok {
		return nil
	}
	doc, err := p.gw.Get(ctx, parent)
	if err != nil {
		p.log.Debug("dropping membership with unresolvable classroom",
			zap.String("path", mem.Path), zap.Error(err))
		return nil
	}
	var c models.Classroom
	if err := doc.Decode(&c); err != nil {
		return nil
	}
	c.ID = doc.ID
	return &ClassroomListItem{Classroom: c, Role: membership.Role}
}

// Items returns all pages accumulated since the last Reset.
func (p *Pager) Items() []ClassroomListItem {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ClassroomListItem, len(p.items))
	copy(out, p.items)
	return out
}

// HasMore reports whether the last fetch saw rows beyond its page. Before
// the first fetch it is false.
func (p *Pager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// Cursor returns the raw handle of the last membership served, nil before
// the first fetch. Handlers wrap it into a wire token; nothing else should
// look inside it.
func (p *Pager) Cursor() *gateway.Doc {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

// SetCursor primes the Pager to continue after a previously served
// membership, as when a wire token from an earlier request is presented.
// It must be called before the first Fetch.
func (p *Pager) SetCursor(doc *gateway.Doc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.fetched {
		p.cursor = doc
	}
}

// Reset discards the cursor and accumulated items so the next Fetch starts
// from the beginning. A fetch already in flight still returns its page to
// its caller, but its write-back is discarded.
func (p *Pager) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	p.cursor = nil
	p.items = nil
	p.hasMore = false
	p.fetched = false
}
