package gateway

import "testing"

func TestParseDocPath(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantErr    bool
		id         string
		collection string
		parent     string
	}{
		{
			name:       "top-level document",
			path:       "classrooms/c1",
			id:         "c1",
			collection: "classrooms",
			parent:     "",
		},
		{
			name:       "nested document",
			path:       "classrooms/c1/members/u1",
			id:         "u1",
			collection: "members",
			parent:     "classrooms/c1",
		},
		{
			name:    "collection path rejected",
			path:    "classrooms",
			wantErr: true,
		},
		{
			name:    "nested collection path rejected",
			path:    "classrooms/c1/members",
			wantErr: true,
		},
		{
			name:    "empty",
			path:    "",
			wantErr: true,
		},
		{
			name:    "empty segment",
			path:    "classrooms//members/u1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDocPath(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDocPath(%q) expected error, got %+v", tt.path, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDocPath(%q) failed: %v", tt.path, err)
			}
			if got.ID != tt.id {
				t.Errorf("ID: got %q, want %q", got.ID, tt.id)
			}
			if got.Collection != tt.collection {
				t.Errorf("Collection: got %q, want %q", got.Collection, tt.collection)
			}
			if got.Parent != tt.parent {
				t.Errorf("Parent: got %q, want %q", got.Parent, tt.parent)
			}
		})
	}
}

func TestParseCollPath(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantErr    bool
		collection string
		parent     string
	}{
		{
			name:       "top-level collection",
			path:       "classrooms",
			collection: "classrooms",
			parent:     "",
		},
		{
			name:       "nested collection",
			path:       "classrooms/c1/members",
			collection: "members",
			parent:     "classrooms/c1",
		},
		{
			name:    "document path rejected",
			path:    "classrooms/c1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCollPath(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseCollPath(%q) expected error, got %+v", tt.path, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCollPath(%q) failed: %v", tt.path, err)
			}
			if got.Collection != tt.collection {
				t.Errorf("Collection: got %q, want %q", got.Collection, tt.collection)
			}
			if got.Parent != tt.parent {
				t.Errorf("Parent: got %q, want %q", got.Parent, tt.parent)
			}
		})
	}
}

func TestParentDoc(t *testing.T) {
	if p, ok := ParentDoc("classrooms/c1/members/u1"); !ok || p != "classrooms/c1" {
		t.Errorf("ParentDoc: got (%q, %v), want (\"classrooms/c1\", true)", p, ok)
	}
	if _, ok := ParentDoc("classrooms/c1"); ok {
		t.Error("ParentDoc on top-level document should report no parent")
	}
}
