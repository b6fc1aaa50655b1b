package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver for database/sql
)

// OpenSQLite opens the SQLite database file at path using the pure-Go
// modernc.org/sqlite driver. Pass ":memory:" for a throwaway database.
//
// The pool is limited to one connection: an in-memory database exists per
// connection, and a single writer is all SQLite supports anyway.
func OpenSQLite(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("repo.OpenSQLite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("repo.OpenSQLite: ping: %w", err)
	}
	return db, nil
}

// sqliteStore is the SQLite implementation of Store, the embedded
// counterpart of the browser's local storage.
type sqliteStore struct {
	db *sql.DB
	// mu serializes Update calls within this process.
	mu sync.Mutex
}

// NewSQLiteStore constructs a Store on an open SQLite database whose
// migrations have been applied.
func NewSQLiteStore(db *sql.DB) Store {
	return &sqliteStore{db: db}
}

func (s *sqliteStore) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT data FROM collections WHERE key = ?`

	var data string
	err := s.db.QueryRowContext(ctx, q, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("repo.sqliteStore.Get %s: %w", key, err)
	}
	return []byte(data), nil
}

func (s *sqliteStore) Put(ctx context.Context, key string, data []byte) error {
	if err := upsertSQLite(ctx, s.db, key, data); err != nil {
		return fmt.Errorf("repo.sqliteStore.Put %s: %w", key, err)
	}
	return nil
}

func (s *sqliteStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repo.sqliteStore.Update %s: begin: %w", key, err)
	}
	defer func() { _ = tx.Rollback() }()

	var current []byte
	var data string
	err = tx.QueryRowContext(ctx, `SELECT data FROM collections WHERE key = ?`, key).Scan(&data)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("repo.sqliteStore.Update %s: read: %w", key, err)
	default:
		current = []byte(data)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	if err := upsertSQLite(ctx, tx, key, next); err != nil {
		return fmt.Errorf("repo.sqliteStore.Update %s: write: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repo.sqliteStore.Update %s: commit: %w", key, err)
	}
	return nil
}

func (s *sqliteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM collections WHERE key = ?`, key); err != nil {
		return fmt.Errorf("repo.sqliteStore.Delete %s: %w", key, err)
	}
	return nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertSQLite(ctx context.Context, db execer, key string, data []byte) error {
	const q = `
		INSERT INTO collections (key, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE
		SET data       = excluded.data,
		    updated_at = excluded.updated_at`

	_, err := db.ExecContext(ctx, q, key, string(data), time.Now().UTC().Format(time.RFC3339Nano))
	return err
}
