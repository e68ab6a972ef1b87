// Package store keeps translator output on disk so unchanged files are not
// re-parsed. Entries are keyed by relative path and invalidated by a content
// hash and a translator fingerprint. Analysis results are never stored.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Querier abstracts *sql.DB and *sql.Tx so store methods work in both contexts.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Store wraps a SQLite connection holding the parse cache.
type Store struct {
	db     *sql.DB
	q      Querier // active querier: db or tx
	dbPath string
}

// Entry is one cached translator result.
type Entry struct {
	RelPath     string
	Hash        string
	Fingerprint string
	Data        []byte
	UpdatedAt   time.Time
}

// cacheDir returns the default cache directory for databases.
func cacheDir() (string, error) {
	if dir := os.Getenv("ELIXIR_ANALYZER_CACHE_DIR"); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir cache: %w", err)
		}
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	dir := filepath.Join(home, ".cache", "elixir-analyzer")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir cache: %w", err)
	}
	return dir, nil
}

// OpenPath opens a SQLite database at the given path.
func OpenPath(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &Store{db: db, dbPath: dbPath}
	s.q = s.db
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// OpenMemory opens an in-memory SQLite database (for testing).
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open memory db: %w", err)
	}
	// Every pooled connection would get its own empty in-memory database.
	db.SetMaxOpenConns(1)
	s := &Store{db: db, dbPath: ":memory:"}
	s.q = s.db
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// WithTransaction executes fn within a single SQLite transaction.
// The callback receives a transaction-scoped Store; the receiver is left
// untouched so concurrent readers keep using the plain connection.
func (s *Store) WithTransaction(fn func(txStore *Store) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	txStore := &Store{db: s.db, q: tx, dbPath: s.dbPath}
	if err := fn(txStore); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS parse_cache (
		rel_path TEXT PRIMARY KEY,
		hash TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		data BLOB NOT NULL,
		updated_at TEXT NOT NULL
	);
	`)
	return err
}

// Get returns the cached data for relPath when both the content hash and
// the translator fingerprint match.
func (s *Store) Get(relPath, hash, fingerprint string) ([]byte, bool, error) {
	var data []byte
	err := s.q.QueryRow(
		`SELECT data FROM parse_cache WHERE rel_path = ? AND hash = ? AND fingerprint = ?`,
		relPath, hash, fingerprint,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", relPath, err)
	}
	return data, true, nil
}

// Put stores data for relPath, replacing any previous entry.
func (s *Store) Put(e Entry) error {
	updated := e.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	_, err := s.q.Exec(`
		INSERT INTO parse_cache (rel_path, hash, fingerprint, data, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(rel_path) DO UPDATE SET
			hash = excluded.hash,
			fingerprint = excluded.fingerprint,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		e.RelPath, e.Hash, e.Fingerprint, e.Data, updated.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("put %s: %w", e.RelPath, err)
	}
	return nil
}

// Delete removes the entry for relPath.
func (s *Store) Delete(relPath string) error {
	_, err := s.q.Exec(`DELETE FROM parse_cache WHERE rel_path = ?`, relPath)
	return err
}

// Prune removes entries whose path is not in keep and returns how many
// were removed.
func (s *Store) Prune(keep []string) (int, error) {
	paths, err := s.Paths()
	if err != nil {
		return 0, err
	}
	live := make(map[string]bool, len(keep))
	for _, p := range keep {
		live[p] = true
	}
	removed := 0
	for _, p := range paths {
		if live[p] {
			continue
		}
		if err := s.Delete(p); err != nil {
			return removed, fmt.Errorf("prune %s: %w", p, err)
		}
		removed++
	}
	return removed, nil
}

// Paths lists every cached relative path in sorted order.
func (s *Store) Paths() ([]string, error) {
	rows, err := s.q.Query(`SELECT rel_path FROM parse_cache ORDER BY rel_path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
