package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Router manages per-project cache databases. Each project gets its own
// .db file in the cache directory, so pruning one project never touches
// another's entries.
type Router struct {
	dir    string            // ~/.cache/elixir-analyzer/
	stores map[string]*Store // project name → open Store (lazy)
	mu     sync.Mutex
}

// NewRouter creates a Router over the default cache directory.
func NewRouter() (*Router, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, err
	}
	return &Router{dir: dir, stores: make(map[string]*Store)}, nil
}

// NewRouterWithDir creates a Router using a custom directory.
func NewRouterWithDir(dir string) (*Router, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	return &Router{dir: dir, stores: make(map[string]*Store)}, nil
}

func validProjectName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

// ForProject returns the Store for the given project, opening it lazily.
func (r *Router) ForProject(name string) (*Store, error) {
	if !validProjectName(name) {
		return nil, fmt.Errorf("invalid project name: %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[name]; ok {
		return s, nil
	}
	s, err := OpenPath(filepath.Join(r.dir, name+".db"))
	if err != nil {
		return nil, fmt.Errorf("open store %q: %w", name, err)
	}
	r.stores[name] = s
	return s, nil
}

// Projects lists the projects that have a cache database, sorted by name.
func (r *Router) Projects() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("readdir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".db") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".db"))
	}
	sort.Strings(names)
	return names, nil
}

// DeleteProject closes the Store connection and removes the .db + WAL/SHM files.
func (r *Router) DeleteProject(name string) error {
	if !validProjectName(name) {
		return fmt.Errorf("invalid project name: %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[name]; ok {
		s.Close()
		delete(r.stores, name)
	}

	dbPath := filepath.Join(r.dir, name+".db")
	for _, suffix := range []string{"", "-wal", "-shm"} {
		p := dbPath + suffix
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	slog.Info("router.delete", "project", name)
	return nil
}

// HasProject checks if a .db file exists for the given project (without opening it).
func (r *Router) HasProject(name string) bool {
	_, err := os.Stat(filepath.Join(r.dir, name+".db"))
	return err == nil
}

// Dir returns the cache directory path.
func (r *Router) Dir() string {
	return r.dir
}

// CloseAll closes all open Store connections.
func (r *Router) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, s := range r.stores {
		if err := s.Close(); err != nil {
			slog.Warn("router.close", "project", name, "err", err)
		}
	}
	r.stores = make(map[string]*Store)
}
