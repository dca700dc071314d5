package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/seamline/pkg/errors"
	"github.com/matzehuels/seamline/pkg/pattern"
)

func loadSkirt(t *testing.T) *pattern.Spec {
	t.Helper()
	s, err := pattern.Load(filepath.Join("..", "pattern", "testdata", "skirt", "specification.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer st.Close(ctx)

	s := loadSkirt(t)
	if err := s.Apply(map[string]pattern.Value{"length": pattern.Scalar(1.2)}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	put, err := st.Put(ctx, "skirt-long", s)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if put.Revision == "" || put.UpdatedAt.IsZero() {
		t.Errorf("Put returned no revision metadata: %+v", put)
	}

	got, err := st.Get(ctx, "skirt-long")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Revision != put.Revision || got.Name != "skirt-long" || got.Spec.Name != "skirt-long" {
		t.Errorf("Get = %s %s (spec %s), want revision %s", got.Name, got.Revision, got.Spec.Name, put.Revision)
	}
	if diff := cmp.Diff(s.Pattern.Panels, got.Spec.Pattern.Panels); diff != "" {
		t.Errorf("panels changed in store (-put +got):\n%s", diff)
	}
	if v := got.Spec.Parameters["length"].Value; !v.Equal(pattern.Scalar(1.2)) {
		t.Errorf("stored length = %s, want 1.2", v)
	}

	again, err := st.Put(ctx, "skirt-long", s)
	if err != nil {
		t.Fatalf("second Put: %v", err)
	}
	if again.Revision == put.Revision {
		t.Error("Put did not assign a new revision")
	}
}

func TestFileStoreListAndDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	s := loadSkirt(t)
	for _, name := range []string{"b", "a", "c"} {
		if _, err := st.Put(ctx, name, s); err != nil {
			t.Fatalf("Put %s: %v", name, err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}

	list, err := st.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var names []string
	for _, sum := range list {
		names = append(names, sum.Name)
		if sum.Panels != 2 || sum.Parameters != 3 {
			t.Errorf("%s: summary = %+v", sum.Name, sum)
		}
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, names); diff != "" {
		t.Errorf("List order (-want +got):\n%s", diff)
	}

	if err := st.Delete(ctx, "b"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := st.Get(ctx, "b"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get deleted = %v, want NOT_FOUND", err)
	}
	if err := st.Delete(ctx, "b"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Delete twice = %v, want NOT_FOUND", err)
	}
}

func TestFileStoreRejectsNames(t *testing.T) {
	ctx := context.Background()
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	s := loadSkirt(t)
	for _, name := range []string{"", "../escape", "a/b", ".hidden", "with space"} {
		if _, err := st.Put(ctx, name, s); !errors.Is(err, errors.ErrCodeInvalidName) {
			t.Errorf("Put(%q) = %v, want INVALID_NAME", name, err)
		}
		if _, err := st.Get(ctx, name); !errors.Is(err, errors.ErrCodeInvalidName) {
			t.Errorf("Get(%q) = %v, want INVALID_NAME", name, err)
		}
	}
}

func TestFileStoreCorruptEntry(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"revision": "x", "spec": {"pattern": `), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Get(ctx, "broken"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Get = %v, want INVALID_FORMAT", err)
	}
}
