// internal/app/store/gateway/path.go
package gateway

import (
	"errors"
	"strings"
)

// ErrBadPath is returned for paths that are empty, have empty segments, or
// have the wrong segment parity for the operation.
var ErrBadPath = errors.New("gateway: malformed path")

// DocPath describes a parsed document path. A document path always has an
// even number of segments: alternating collection names and document ids.
type DocPath struct {
	Raw        string
	ID         string // final segment
	Collection string // name of the collection the document sits in
	Parent     string // path of the parent document, "" for top-level docs
}

// CollPath describes a parsed collection path (odd number of segments).
type CollPath struct {
	Raw        string
	Collection string // final segment; the collection-group name
	Parent     string // path of the parent document, "" for top-level
}

func splitPath(p string) ([]string, error) {
	if p == "" {
		return nil, ErrBadPath
	}
	segs := strings.Split(p, "/")
	for _, s := range segs {
		if s == "" {
			return nil, ErrBadPath
		}
	}
	return segs, nil
}

// ParseDocPath parses a document path such as "classrooms/c1" or
// "classrooms/c1/members/u1".
func ParseDocPath(p string) (DocPath, error) {
	segs, err := splitPath(p)
	if err != nil {
		return DocPath{}, err
	}
	if len(segs)%2 != 0 {
		return DocPath{}, ErrBadPath
	}
	return DocPath{
		Raw:        p,
		ID:         segs[len(segs)-1],
		Collection: segs[len(segs)-2],
		Parent:     strings.Join(segs[:len(segs)-2], "/"),
	}, nil
}

// ParseCollPath parses a collection path such as "classrooms" or
// "classrooms/c1/members".
func ParseCollPath(p string) (CollPath, error) {
	segs, err := splitPath(p)
	if err != nil {
		return CollPath{}, err
	}
	if len(segs)%2 != 1 {
		return CollPath{}, ErrBadPath
	}
	return CollPath{
		Raw:        p,
		Collection: segs[len(segs)-1],
		Parent:     strings.Join(segs[:len(segs)-1], "/"),
	}, nil
}

// ParentDoc returns the path of the document that owns the document at p.
// For "classrooms/c1/members/u1" that is "classrooms/c1"; top-level
// documents have no parent.
func ParentDoc(p string) (string, bool) {
	dp, err := ParseDocPath(p)
	if err != nil || dp.Parent == "" {
		return "", false
	}
	return dp.Parent, true
}
