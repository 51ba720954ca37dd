// internal/testutil/http.go

package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abhyas01/Qaptain-sub001/internal/app/system/auth"
	"github.com/abhyas01/Qaptain-sub001/internal/domain/models"
)

// SignedInRequest builds a request carrying u as the session user, with
// body marshalled to JSON when non-nil.
func SignedInRequest(t *testing.T, method, target string, u models.User, body any) *http.Request {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	r := httptest.NewRequest(method, target, rd)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	return auth.WithTestUser(r, &auth.SessionUser{ID: u.ID, Name: u.Name, Email: u.Email})
}

// DecodeJSON unmarshals a recorded response body into v.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}
