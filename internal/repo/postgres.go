package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup. Begin on a pgx.Tx opens a
// savepoint, so Update works the same way inside a test transaction.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// pgStore is the Postgres implementation of Store.
// Each key is one row of the collections table with a jsonb payload.
type pgStore struct {
	db db
}

// NewPostgresStore constructs a Store backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPostgresStore(db db) Store {
	return &pgStore{db: db}
}

// Get returns the jsonb payload for key, or nil when no row exists.
func (s *pgStore) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT data FROM collections WHERE key = @key`

	var data []byte
	err := s.db.QueryRow(ctx, q, pgx.NamedArgs{"key": key}).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("repo.pgStore.Get %s: %w", key, err)
	}
	return data, nil
}

// Put upserts the row for key.
func (s *pgStore) Put(ctx context.Context, key string, data []byte) error {
	const q = `
		INSERT INTO collections (key, data)
		VALUES (@key, @data)
		ON CONFLICT (key) DO UPDATE
		SET data       = EXCLUDED.data,
		    updated_at = now()`

	if _, err := s.db.Exec(ctx, q, pgx.NamedArgs{"key": key, "data": string(data)}); err != nil {
		return fmt.Errorf("repo.pgStore.Put %s: %w", key, err)
	}
	return nil
}

// Update locks the row for key with SELECT ... FOR UPDATE for the duration of
// fn, so concurrent writers of the same collection queue up behind each other.
// An absent key is materialized as an empty array first so there is a row to
// lock; fn still receives nil for it.
func (s *pgStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	const (
		ensure = `
			INSERT INTO collections (key, data)
			VALUES (@key, '[]'::jsonb)
			ON CONFLICT (key) DO NOTHING`
		lock  = `SELECT data FROM collections WHERE key = @key FOR UPDATE`
		write = `
			UPDATE collections
			SET data       = @data,
			    updated_at = now()
			WHERE key = @key`
	)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.pgStore.Update %s: begin: %w", key, err)
	}
	// Rollback after Commit is a no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, ensure, pgx.NamedArgs{"key": key})
	if err != nil {
		return fmt.Errorf("repo.pgStore.Update %s: ensure row: %w", key, err)
	}

	var current []byte
	if err := tx.QueryRow(ctx, lock, pgx.NamedArgs{"key": key}).Scan(&current); err != nil {
		return fmt.Errorf("repo.pgStore.Update %s: lock: %w", key, err)
	}
	if tag.RowsAffected() == 1 {
		// The row was created just now; fn sees the key as absent.
		current = nil
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, write, pgx.NamedArgs{"key": key, "data": string(next)}); err != nil {
		return fmt.Errorf("repo.pgStore.Update %s: write: %w", key, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.pgStore.Update %s: commit: %w", key, err)
	}
	return nil
}

// Delete removes the row for key.
func (s *pgStore) Delete(ctx context.Context, key string) error {
	const q = `DELETE FROM collections WHERE key = @key`

	if _, err := s.db.Exec(ctx, q, pgx.NamedArgs{"key": key}); err != nil {
		return fmt.Errorf("repo.pgStore.Delete %s: %w", key, err)
	}
	return nil
}
