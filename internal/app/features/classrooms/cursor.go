// internal/app/features/classrooms/cursor.go

package classrooms

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/abhyas01/Qaptain-sub001/internal/app/store/gateway"
)

var errBadCursor = errors.New("invalid cursor")

// cursorToken is the wire form of a pagination cursor: the membership
// document's path and its sort value, nothing else. Tokens are only
// meaningful back on the same (user, role) listing they came from.
type cursorToken struct {
	Path      string    `json:"p"`
	CreatedAt time.Time `json:"c"`
}

func encodeCursor(d *gateway.Doc) string {
	if d == nil {
		return ""
	}
	t, _ := d.Data["classroom_created_at"].(time.Time)
	raw, err := json.Marshal(cursorToken{Path: d.Path, CreatedAt: t})
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeCursor(s string) (*gateway.Doc, error) {
	if s == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, errBadCursor
	}
	var tok cursorToken
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, errBadCursor
	}
	dp, err := gateway.ParseDocPath(tok.Path)
	if err != nil || dp.Collection != "members" {
		return nil, errBadCursor
	}
	return &gateway.Doc{
		Path: tok.Path,
		ID:   dp.ID,
		Data: map[string]any{"classroom_created_at": tok.CreatedAt},
	}, nil
}
