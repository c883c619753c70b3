// Package history persists refresh and ingestion records locally so the
// operator can review recent activity without the backend being up.
package history

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database holding the console's local activity log.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (used by
// tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "salesdeck.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		var version int
		if _, err := fmt.Sscanf(entry.Name(), "%d_", &version); err != nil {
			return fmt.Errorf("parsing migration version from %q: %w", entry.Name(), err)
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

// --- Refreshes ---

func (s *Store) SaveRefresh(r Refresh) error {
	at := r.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO refreshes (at, api_ok, queue_ok, rag_ok, unreachable, queued, failed, catalog, support_docs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		at.UTC().Format(time.RFC3339), r.APIOK, r.QueueOK, r.RAGOK, r.Unreachable,
		r.Queued, r.Failed, r.Catalog, r.SupportDocs,
	)
	return err
}

// RecentRefreshes returns up to limit refreshes, newest first.
func (s *Store) RecentRefreshes(limit int) ([]Refresh, error) {
	rows, err := s.db.Query(`
		SELECT id, at, api_ok, queue_ok, rag_ok, unreachable, queued, failed, catalog, support_docs
		FROM refreshes ORDER BY at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Refresh
	for rows.Next() {
		var r Refresh
		var at string
		if err := rows.Scan(&r.ID, &at, &r.APIOK, &r.QueueOK, &r.RAGOK, &r.Unreachable,
			&r.Queued, &r.Failed, &r.Catalog, &r.SupportDocs); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, at); err == nil {
			r.At = t
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// --- Ingestions ---

func (s *Store) SaveIngestion(i Ingestion) error {
	at := i.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO ingestions (id, at, type, status, collection, chunks, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		i.ID, at.UTC().Format(time.RFC3339), i.Type, i.Status, i.Collection, i.Chunks, i.Error,
	)
	return err
}

// GetIngestion returns one recorded submission by id.
func (s *Store) GetIngestion(id string) (Ingestion, error) {
	var i Ingestion
	var at string
	err := s.db.QueryRow(`
		SELECT id, at, type, status, collection, chunks, error
		FROM ingestions WHERE id = ?`, id,
	).Scan(&i.ID, &at, &i.Type, &i.Status, &i.Collection, &i.Chunks, &i.Error)
	if err == sql.ErrNoRows {
		return Ingestion{}, ErrNotFound
	}
	if err != nil {
		return Ingestion{}, err
	}
	if t, err := time.Parse(time.RFC3339, at); err == nil {
		i.At = t
	}
	return i, nil
}

// RecentIngestions returns up to limit submissions, newest first.
func (s *Store) RecentIngestions(limit int) ([]Ingestion, error) {
	rows, err := s.db.Query(`
		SELECT id, at, type, status, collection, chunks, error
		FROM ingestions ORDER BY at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Ingestion
	for rows.Next() {
		var i Ingestion
		var at string
		if err := rows.Scan(&i.ID, &at, &i.Type, &i.Status, &i.Collection, &i.Chunks, &i.Error); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, at); err == nil {
			i.At = t
		}
		result = append(result, i)
	}
	return result, rows.Err()
}
