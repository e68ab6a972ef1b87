package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRouterForProject(t *testing.T) {
	r, err := NewRouterWithDir(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewRouterWithDir: %v", err)
	}
	defer r.CloseAll()

	a, err := r.ForProject("tmp-app")
	if err != nil {
		t.Fatalf("ForProject: %v", err)
	}
	again, _ := r.ForProject("tmp-app")
	if a != again {
		t.Error("ForProject should return the open store")
	}
	b, err := r.ForProject("tmp-other")
	if err != nil {
		t.Fatalf("ForProject: %v", err)
	}

	// Pruning one project leaves the other alone.
	for _, s := range []*Store{a, b} {
		if err := s.Put(Entry{RelPath: "lib/app.ex", Hash: "h", Fingerprint: "f", Data: []byte("x")}); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	if _, err := a.Prune(nil); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if _, ok, _ := b.Get("lib/app.ex", "h", "f"); !ok {
		t.Error("prune leaked across projects")
	}

	if !r.HasProject("tmp-app") {
		t.Error("expected tmp-app.db")
	}
	names, err := r.Projects()
	if err != nil {
		t.Fatalf("Projects: %v", err)
	}
	if len(names) != 2 || names[0] != "tmp-app" || names[1] != "tmp-other" {
		t.Errorf("Projects = %v", names)
	}
}

func TestRouterInvalidName(t *testing.T) {
	r, err := NewRouterWithDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"", "..", "a/b"} {
		if _, err := r.ForProject(name); err == nil {
			t.Errorf("ForProject(%q) should fail", name)
		}
	}
}

func TestRouterDeleteProject(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRouterWithDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer r.CloseAll()

	if _, err := r.ForProject("gone"); err != nil {
		t.Fatal(err)
	}
	if err := r.DeleteProject("gone"); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if r.HasProject("gone") {
		t.Error("database should be removed")
	}
	if _, err := os.Stat(filepath.Join(dir, "gone.db-wal")); !os.IsNotExist(err) {
		t.Error("WAL file should be removed")
	}
}

func TestNewRouterHonorsEnv(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "env-cache")
	t.Setenv("ELIXIR_ANALYZER_CACHE_DIR", dir)
	r, err := NewRouter()
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	if r.Dir() != dir {
		t.Errorf("Dir = %q, want %q", r.Dir(), dir)
	}
}
