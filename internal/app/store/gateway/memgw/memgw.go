// internal/app/store/gateway/memgw/memgw.go

// Package memgw is an in-memory Gateway used by tests. It mirrors the
// ordering, sentinel, and start-after semantics of the Mongo implementation
// so core logic can be exercised without a database. Hooks allow tests to
// inject per-path failures and delays into reads.
package memgw

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/abhyas01/Qaptain-sub001/internal/app/store/gateway"
	"github.com/google/uuid"
)

// Store is an in-memory gateway.Gateway.
type Store struct {
	mu   sync.RWMutex
	docs map[string]map[string]any // doc path -> fields

	// GetErr, if set, is consulted before every Get; a non-nil return fails
	// the read. QueryErr does the same for Query and QueryGroup, keyed by
	// collection (group) name. CreateErr and UpdateErr fail writes, which is
	// how tests simulate unique-index rejections. GetDelay stalls individual
	// Gets so tests can force fan-out reads to complete out of request order.
	GetErr    func(path string) error
	QueryErr  func(collection string) error
	CreateErr func(collectionPath string) error
	PutErr    func(path string) error
	UpdateErr func(path string) error
	GetDelay  func(path string) time.Duration
}

var _ gateway.Gateway = (*Store)(nil)

// New returns an empty in-memory store.
func New() *Store {
	return &Store{docs: make(map[string]map[string]any)}
}

func (s *Store) resolve(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	now := time.Now().UTC()
	for k, v := range data {
		if gateway.IsServerTimestamp(v) {
			out[k] = now
			continue
		}
		out[k] = v
	}
	return out
}

func (s *Store) Get(ctx context.Context, path string) (gateway.Doc, error) {
	if s.GetDelay != nil {
		if d := s.GetDelay(path); d > 0 {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return gateway.Doc{}, ctx.Err()
			}
		}
	}
	if s.GetErr != nil {
		if err := s.GetErr(path); err != nil {
			return gateway.Doc{}, err
		}
	}
	dp, err := gateway.ParseDocPath(path)
	if err != nil {
		return gateway.Doc{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.docs[path]
	if !ok {
		return gateway.Doc{}, gateway.ErrNotFound
	}
	return gateway.Doc{Path: path, ID: dp.ID, Data: copyFields(data)}, nil
}

func (s *Store) Query(ctx context.Context, collectionPath, field string, value any, opts gateway.Options) ([]gateway.Doc, error) {
	cp, err := gateway.ParseCollPath(collectionPath)
	if err != nil {
		return nil, err
	}
	if s.QueryErr != nil {
		if err := s.QueryErr(cp.Collection); err != nil {
			return nil, err
		}
	}
	match := func(path string, data map[string]any) bool {
		dp, err := gateway.ParseDocPath(path)
		if err != nil || dp.Collection != cp.Collection || dp.Parent != cp.Parent {
			return false
		}
		if field == "" {
			return true
		}
		return equal(data[field], value)
	}
	return s.collect(match, opts), nil
}

func (s *Store) QueryGroup(ctx context.Context, group string, filters []gateway.Filter, opts gateway.Options) ([]gateway.Doc, error) {
	if s.QueryErr != nil {
		if err := s.QueryErr(group); err != nil {
			return nil, err
		}
	}
	match := func(path string, data map[string]any) bool {
		dp, err := gateway.ParseDocPath(path)
		if err != nil || dp.Collection != group {
			return false
		}
		for _, f := range filters {
			if !equal(data[f.Field], f.Value) {
				return false
			}
		}
		return true
	}
	return s.collect(match, opts), nil
}

func (s *Store) Create(ctx context.Context, collectionPath string, data map[string]any) (string, error) {
	if _, err := gateway.ParseCollPath(collectionPath); err != nil {
		return "", err
	}
	if s.CreateErr != nil {
		if err := s.CreateErr(collectionPath); err != nil {
			return "", err
		}
	}
	id := uuid.NewString()
	s.mu.Lock()
	s.docs[collectionPath+"/"+id] = s.resolve(data)
	s.mu.Unlock()
	return id, nil
}

func (s *Store) Put(ctx context.Context, path string, data map[string]any) error {
	if _, err := gateway.ParseDocPath(path); err != nil {
		return err
	}
	if s.PutErr != nil {
		if err := s.PutErr(path); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[path]; exists {
		return gateway.ErrDuplicate
	}
	s.docs[path] = s.resolve(data)
	return nil
}

func (s *Store) Update(ctx context.Context, path string, fields map[string]any) error {
	if _, err := gateway.ParseDocPath(path); err != nil {
		return err
	}
	if s.UpdateErr != nil {
		if err := s.UpdateErr(path); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[path]
	if !ok {
		return gateway.ErrNotFound
	}
	for k, v := range s.resolve(fields) {
		doc[k] = v
	}
	return nil
}

// Delete removes a document if present. Not part of the Gateway interface;
// tests use it to simulate classrooms vanishing under a live membership.
func (s *Store) Delete(path string) {
	s.mu.Lock()
	delete(s.docs, path)
	s.mu.Unlock()
}

// collect snapshots matching docs, sorts, and applies the keyset window.
func (s *Store) collect(match func(string, map[string]any) bool, opts gateway.Options) []gateway.Doc {
	s.mu.RLock()
	var out []gateway.Doc
	for path, data := range s.docs {
		if match(path, data) {
			dp, _ := gateway.ParseDocPath(path)
			out = append(out, gateway.Doc{Path: path, ID: dp.ID, Data: copyFields(data)})
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if opts.OrderBy != "" {
			ci := compare(out[i].Data[opts.OrderBy], out[j].Data[opts.OrderBy])
			if ci != 0 {
				if opts.Descending {
					return ci > 0
				}
				return ci < 0
			}
		}
		if opts.Descending {
			return out[i].Path > out[j].Path
		}
		return out[i].Path < out[j].Path
	})

	if opts.StartAfter != nil {
		idx := -1
		for i, d := range out {
			if d.Path == opts.StartAfter.Path {
				idx = i
				break
			}
		}
		if idx >= 0 {
			out = out[idx+1:]
		}
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

func copyFields(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

func equal(a, b any) bool {
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	if af, ok := toFloat(a); ok {
		bf, bok := toFloat(b)
		return bok && af == bf
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// compare orders two field values. Times, numbers, and strings order
// naturally; everything else falls back to string form.
func compare(a, b any) int {
	at, aok := a.(time.Time)
	bt, bok := b.(time.Time)
	if aok && bok {
		switch {
		case at.Before(bt):
			return -1
		case at.After(bt):
			return 1
		default:
			return 0
		}
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
