// Package history records finished searches in a local SQLite database and
// exports them as Markdown, HTML or YAML.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrison/tgrep/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes shape.
const schemaVersion = 1

// Entry is one recorded search.
type Entry struct {
	ID            int64
	SearchID      string
	Term          string
	FilePattern   string
	Directory     string
	Recursive     bool
	Limit         int64
	TotalMatches  int64
	Outcome       string
	Candidates    int
	FilesSearched int
	FilesFailed   int
	Duration      time.Duration
	CreatedAt     time.Time
}

// Store manages the SQLite search history database
type Store struct {
	db         *sql.DB
	dbPath     string
	maxEntries int
	now        func() time.Time
}

// NewStore opens (creating if needed) the history database at dbPath.
// maxEntries > 0 keeps only the newest maxEntries searches.
func NewStore(dbPath string, maxEntries int) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Every connection to :memory: is a separate database
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// busy_timeout first so the remaining pragmas wait on a concurrent tgrep
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{
		db:         db,
		dbPath:     dbPath,
		maxEntries: maxEntries,
		now:        time.Now,
	}

	if err := store.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

// execWithRetry executes a SQL statement with exponential backoff retry on lock errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}

		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}

		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// initSchema applies schema.sql once and records the version.
func (s *Store) initSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var current int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&current); err != nil {
		return fmt.Errorf("query schema version: %w", err)
	}

	if current < schemaVersion {
		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	}

	return tx.Commit()
}

// Version returns the applied schema version.
func (s *Store) Version() (int, error) {
	var version int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version); err != nil {
		return 0, fmt.Errorf("query schema version: %w", err)
	}
	return version, nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record stores a finished search and prunes the oldest entries beyond the
// configured maximum. It returns the row id of the new entry.
func (s *Store) Record(ctx context.Context, req models.SearchRequest, summary models.SearchSummary) (int64, error) {
	query := `INSERT INTO searches
		(search_id, term, file_pattern, directory, recursive, match_limit, total_matches, outcome,
		 candidates, files_searched, files_failed, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query,
		summary.ID,
		req.SearchTerm,
		req.Pattern(),
		req.Directory,
		req.Recursive,
		req.Limit,
		summary.TotalMatches,
		summary.Outcome(),
		summary.Candidates,
		summary.FilesSearched,
		summary.FilesFailed,
		summary.Duration.Milliseconds(),
		s.now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert search: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get inserted id: %w", err)
	}

	if s.maxEntries > 0 {
		if _, err := s.Prune(ctx, s.maxEntries); err != nil {
			return id, err
		}
	}

	return id, nil
}

// List returns up to limit entries, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, search_id, term, file_pattern, directory, recursive, match_limit, total_matches,
		outcome, candidates, files_searched, files_failed, duration_ms, created_at
		FROM searches ORDER BY id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query searches: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var durationMS int64
		if err := rows.Scan(&e.ID, &e.SearchID, &e.Term, &e.FilePattern, &e.Directory, &e.Recursive,
			&e.Limit, &e.TotalMatches, &e.Outcome, &e.Candidates, &e.FilesSearched, &e.FilesFailed,
			&durationMS, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan search: %w", err)
		}
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate searches: %w", err)
	}

	return entries, nil
}

// Count returns the number of recorded searches.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM searches`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count searches: %w", err)
	}
	return count, nil
}

// Prune deletes all but the newest keep entries and returns how many were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM searches WHERE id NOT IN (SELECT id FROM searches ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune searches: %w", err)
	}
	return result.RowsAffected()
}

// Clear deletes every recorded search and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM searches`)
	if err != nil {
		return 0, fmt.Errorf("clear searches: %w", err)
	}
	return result.RowsAffected()
}
