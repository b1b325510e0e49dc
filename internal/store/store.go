// Package store persists processed lectures, chat transcripts, and the quiz
// handoff snapshot in a local SQLite database.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tmercer/lectern/internal/config"
	_ "modernc.org/sqlite"
)

// ErrNoLecture indicates the library holds no completed lecture yet.
var ErrNoLecture = errors.New("no processed lecture in library")

// Store wraps the SQLite handle for the lecture library.
type Store struct {
	db *sql.DB
}

// DefaultDir resolves the library location from config, falling back to the
// XDG state path.
func DefaultDir(cfg config.LibraryConfig) (string, error) {
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}
	stateDir, err := config.ResolveStateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(stateDir, "lectern"), nil
}

// Open initializes the library database at baseDir/library.db.
// The baseDir parameter lets tests use t.TempDir().
func Open(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create library directory: %w", err)
	}

	dbPath := filepath.Join(baseDir, "library.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open library database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	_ = os.Chmod(dbPath, 0o600)
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS lectures (
		  id              TEXT PRIMARY KEY,
		  title           TEXT NOT NULL,
		  source_file     TEXT NOT NULL,
		  transcript      TEXT NOT NULL,
		  summary_json    TEXT NOT NULL,
		  flashcards_json TEXT NOT NULL,
		  quiz_json       TEXT NOT NULL,
		  created_at      INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS chat_messages (
		  id         INTEGER PRIMARY KEY AUTOINCREMENT,
		  lecture_id TEXT NOT NULL REFERENCES lectures(id) ON DELETE CASCADE,
		  role       TEXT NOT NULL,
		  content    TEXT NOT NULL,
		  created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_chat_messages_lecture ON chat_messages(lecture_id, id);

		CREATE TABLE IF NOT EXISTS quiz_handoff (
		  id         INTEGER PRIMARY KEY CHECK (id = 1),
		  payload    TEXT NOT NULL,
		  written_at INTEGER NOT NULL
		);

		PRAGMA user_version = 1;
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("apply schema v1: %w", err)
		}
	}

	return nil
}
