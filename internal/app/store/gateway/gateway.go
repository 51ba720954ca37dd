// internal/app/store/gateway/gateway.go

// Package gateway defines the abstract document-store interface the
// classroom subsystem is written against. Documents are addressed by
// slash-separated paths (collection/id, nested sub-collections allowed);
// sub-collections sharing a name are queryable together as a collection
// group. The package is backing-store agnostic: mongogw implements it on
// MongoDB, memgw in memory for tests.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	// ErrNotFound is returned by Get and Update when no document exists
	// at the requested path.
	ErrNotFound = errors.New("gateway: document not found")

	// ErrDuplicate is returned by Create and Put when a uniqueness
	// constraint at the storage layer rejects the write.
	ErrDuplicate = errors.New("gateway: duplicate document")
)

// serverTimestamp is the sentinel type for ServerTimestamp.
type serverTimestamp struct{}

// ServerTimestamp is a sentinel field value resolved by the store at write
// time. Callers that need the resolved value must read the document back;
// the two calls must not be reordered.
var ServerTimestamp = serverTimestamp{}

// IsServerTimestamp reports whether v is the ServerTimestamp sentinel.
// Implementations use it when materializing writes.
func IsServerTimestamp(v any) bool {
	_, ok := v.(serverTimestamp)
	return ok
}

// Doc is a document read back from the store. A Doc doubles as the opaque
// start-after handle for keyset pagination: callers pass the last Doc of a
// page to fetch the next one and must not otherwise interpret it.
type Doc struct {
	Path string         // full document path, e.g. "classrooms/{id}/members/{uid}"
	ID   string         // last path segment
	Data map[string]any // raw fields as stored
}

// Decode unmarshals the document fields into v via a BSON round trip, so
// model structs keep their bson tags regardless of which implementation
// produced the Doc.
func (d Doc) Decode(v any) error {
	raw, err := bson.Marshal(d.Data)
	if err != nil {
		return fmt.Errorf("gateway: encode %s: %w", d.Path, err)
	}
	if err := bson.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("gateway: decode %s: %w", d.Path, err)
	}
	return nil
}

// Filter is a single field-equality constraint for collection-group queries.
type Filter struct {
	Field string
	Value any
}

// Options controls ordering and windowing for queries. The zero value means
// unordered (implementation order), no limit, from the start.
type Options struct {
	OrderBy    string
	Descending bool
	Limit      int  // 0 means no limit
	StartAfter *Doc // raw handle from a previous page, nil for the first page
}

// Gateway is the document-store client surface consumed by the application.
// Implementations provide per-document read-your-writes consistency; cross-
// document operations carry no transactional guarantee.
type Gateway interface {
	// Get returns the document at path, or ErrNotFound.
	Get(ctx context.Context, path string) (Doc, error)

	// Query returns documents in collectionPath whose field equals value,
	// windowed by opts. An empty field means no equality filter: every
	// document in the collection is a candidate.
	Query(ctx context.Context, collectionPath, field string, value any, opts Options) ([]Doc, error)

	// QueryGroup scans every sub-collection named group across the whole
	// store, applying all filters conjunctively, windowed by opts.
	QueryGroup(ctx context.Context, group string, filters []Filter, opts Options) ([]Doc, error)

	// Create writes a new document with a generated id into collectionPath
	// and returns the id.
	Create(ctx context.Context, collectionPath string, data map[string]any) (string, error)

	// Put writes a document at a caller-chosen path, failing with
	// ErrDuplicate if one already exists there. Using a natural key as the
	// document id is how at-most-once relationships are enforced without
	// transactions.
	Put(ctx context.Context, path string, data map[string]any) error

	// Update sets the given fields on an existing document.
	Update(ctx context.Context, path string, fields map[string]any) error
}
