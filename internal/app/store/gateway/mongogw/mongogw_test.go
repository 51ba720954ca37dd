package mongogw

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/abhyas01/Qaptain-sub001/internal/app/store/gateway"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// setupStore connects to the Mongo instance named by QAPTAIN_TEST_MONGO_URI
// and hands back a gateway over a throwaway database. Tests are skipped when
// the variable is unset so the suite stays runnable without a live server.
func setupStore(t *testing.T) *Store {
	t.Helper()

	uri := os.Getenv("QAPTAIN_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("QAPTAIN_TEST_MONGO_URI not set; skipping Mongo integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("mongo connect: %v", err)
	}

	db := client.Database(fmt.Sprintf("qaptain_gw_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	return New(db, zap.NewNop())
}

func TestRoundTrip(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, "classrooms", map[string]any{
		"name":       "Physics 101",
		"created_at": gateway.ServerTimestamp,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	doc, err := s.Get(ctx, "classrooms/"+id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.ID != id {
		t.Errorf("ID = %q, want %q", doc.ID, id)
	}
	if doc.Data["name"] != "Physics 101" {
		t.Errorf("name = %v", doc.Data["name"])
	}
	if _, ok := doc.Data["created_at"].(time.Time); !ok {
		t.Errorf("created_at should come back as time.Time, got %T", doc.Data["created_at"])
	}
	for _, k := range []string{"doc_id", "parent_path"} {
		if _, ok := doc.Data[k]; ok {
			t.Errorf("bookkeeping field %q leaked into Data", k)
		}
	}

	if _, err := s.Get(ctx, "classrooms/missing"); err != gateway.ErrNotFound {
		t.Errorf("Get missing = %v, want ErrNotFound", err)
	}
}

func TestPutAndUpdate(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	path := "classrooms/c1/members/u1"
	if err := s.Put(ctx, path, map[string]any{"role": "member"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, path, map[string]any{"role": "member"}); err != gateway.ErrDuplicate {
		t.Fatalf("second Put = %v, want ErrDuplicate", err)
	}

	if err := s.Update(ctx, path, map[string]any{"role": "creator"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	doc, err := s.Get(ctx, path)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.Data["role"] != "creator" {
		t.Errorf("role = %v", doc.Data["role"])
	}

	if err := s.Update(ctx, "classrooms/c1/members/ghost", map[string]any{"role": "x"}); err != gateway.ErrNotFound {
		t.Errorf("Update missing = %v, want ErrNotFound", err)
	}
}

func TestQueryScopedToParent(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(s.Put(ctx, "classrooms/c1/members/u1", map[string]any{"role": "creator"}))
	must(s.Put(ctx, "classrooms/c1/members/u2", map[string]any{"role": "member"}))
	must(s.Put(ctx, "classrooms/c2/members/u1", map[string]any{"role": "member"}))

	docs, err := s.Query(ctx, "classrooms/c1/members", "", nil, gateway.Options{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d docs, want 2", len(docs))
	}

	docs, err = s.Query(ctx, "classrooms/c1/members", "role", "creator", gateway.Options{})
	if err != nil {
		t.Fatalf("Query filtered: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "u1" {
		t.Fatalf("filtered query = %v", docs)
	}
}

func TestQueryGroupKeysetPagination(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		path := fmt.Sprintf("classrooms/c%d/members/u1", i)
		err := s.Put(ctx, path, map[string]any{
			"user_id":              "u1",
			"classroom_created_at": base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Put %s: %v", path, err)
		}
	}

	filters := []gateway.Filter{{Field: "user_id", Value: "u1"}}
	opts := gateway.Options{OrderBy: "classroom_created_at", Descending: true, Limit: 2}

	var got []string
	var cursor *gateway.Doc
	for {
		opts.StartAfter = cursor
		docs, err := s.QueryGroup(ctx, "members", filters, opts)
		if err != nil {
			t.Fatalf("QueryGroup: %v", err)
		}
		if len(docs) == 0 {
			break
		}
		for i := range docs {
			got = append(got, docs[i].Path)
		}
		cursor = &docs[len(docs)-1]
	}

	want := []string{
		"classrooms/c4/members/u1",
		"classrooms/c3/members/u1",
		"classrooms/c2/members/u1",
		"classrooms/c1/members/u1",
		"classrooms/c0/members/u1",
	}
	if len(got) != len(want) {
		t.Fatalf("paged through %d docs, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("page order [%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestQueryGroupTiedSortValues(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, c := range []string{"ca", "cb", "cc"} {
		err := s.Put(ctx, "classrooms/"+c+"/members/u1", map[string]any{
			"user_id":              "u1",
			"classroom_created_at": at,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	filters := []gateway.Filter{{Field: "user_id", Value: "u1"}}
	opts := gateway.Options{OrderBy: "classroom_created_at", Descending: true, Limit: 1}

	seen := map[string]bool{}
	var cursor *gateway.Doc
	for i := 0; i < 3; i++ {
		opts.StartAfter = cursor
		docs, err := s.QueryGroup(ctx, "members", filters, opts)
		if err != nil {
			t.Fatalf("QueryGroup: %v", err)
		}
		if len(docs) != 1 {
			t.Fatalf("page %d had %d docs", i, len(docs))
		}
		if seen[docs[0].Path] {
			t.Fatalf("doc %s returned twice across ties", docs[0].Path)
		}
		seen[docs[0].Path] = true
		cursor = &docs[0]
	}
}
