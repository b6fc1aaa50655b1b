// Package migrations embeds the SQL migration files so they can be used
// by the goose programmatic API in tests, the migrate command and server
// bootstrap. There is one migration set per SQL dialect.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Postgres returns the Postgres migration set.
func Postgres() fs.FS { return sub("postgres") }

// SQLite returns the SQLite migration set.
func SQLite() fs.FS { return sub("sqlite") }

func sub(dir string) fs.FS {
	f, err := fs.Sub(files, dir)
	if err != nil {
		// dir is a constant embedded above; this cannot fail at runtime.
		panic(err)
	}
	return f
}

// NewProvider returns a goose provider for db using the migration set that
// matches dialect.
func NewProvider(dialect goose.Dialect, db *sql.DB) (*goose.Provider, error) {
	var fsys fs.FS
	switch dialect {
	case goose.DialectPostgres:
		fsys = Postgres()
	case goose.DialectSQLite3:
		fsys = SQLite()
	default:
		return nil, fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}
	return goose.NewProvider(dialect, db, fsys)
}

// Up applies every pending migration and returns how many ran.
func Up(ctx context.Context, dialect goose.Dialect, db *sql.DB) (int, error) {
	p, err := NewProvider(dialect, db)
	if err != nil {
		return 0, fmt.Errorf("migrations.Up: %w", err)
	}
	results, err := p.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("migrations.Up: %w", err)
	}
	return len(results), nil
}
