package httpcache

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists cached responses to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("http cache opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS responses (
			key       TEXT PRIMARY KEY,
			response  BLOB NOT NULL,
			stored_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_responses_stored ON responses(stored_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// Get returns the entry for key, or nil if there is none.
func (s *SQLiteStore) Get(key string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		raw      []byte
		storedAt int64
	)
	err := s.db.QueryRow(`SELECT response, stored_at FROM responses WHERE key = ?`, key).Scan(&raw, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &Entry{Key: key, Response: raw, StoredAt: time.Unix(storedAt, 0)}, nil
}

// Put inserts or replaces the entry for entry.Key.
func (s *SQLiteStore) Put(entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO responses (key, response, stored_at) VALUES (?,?,?)
		ON CONFLICT(key) DO UPDATE SET response = excluded.response, stored_at = excluded.stored_at`,
		entry.Key, entry.Response, entry.StoredAt.Unix(),
	)
	return err
}

// PurgeExpired deletes entries stored before olderThan.
func (s *SQLiteStore) PurgeExpired(olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM responses WHERE stored_at < ?`, olderThan.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Close() error {
	log.Info().Msg("closing http cache")
	return s.db.Close()
}
