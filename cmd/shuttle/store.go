package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pkordes/shuttle-control/internal/config"
	"github.com/pkordes/shuttle-control/internal/repo"
	"github.com/pkordes/shuttle-control/migrations"
)

// storage is an open key/value store plus what it takes to migrate and
// close it.
type storage struct {
	repo.Store
	// sqlDB and dialect are set for the SQL drivers only.
	sqlDB   *sql.DB
	dialect goose.Dialect
	closers []func()
}

func (s *storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openStorage connects to the backend selected by STORE_DRIVER.
func openStorage(ctx context.Context, c config.Config) (*storage, error) {
	switch c.StoreDriver {
	case config.DriverMemory:
		logger.Warn("using in-memory storage; data is lost on exit")
		return &storage{Store: repo.NewMemoryStore()}, nil

	case config.DriverSQLite:
		db, err := repo.OpenSQLite(c.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("sqlite database opened", "path", c.SQLitePath)
		return &storage{
			Store:   repo.NewSQLiteStore(db),
			sqlDB:   db,
			dialect: goose.DialectSQLite3,
			closers: []func(){func() { _ = db.Close() }},
		}, nil

	case config.DriverPostgres:
		// pgxpool.New does not open connections immediately; the ping does.
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("create database pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		logger.Info("database connection established")
		db := stdlib.OpenDBFromPool(pool)
		return &storage{
			Store:   repo.NewPostgresStore(pool),
			sqlDB:   db,
			dialect: goose.DialectPostgres,
			closers: []func(){pool.Close, func() { _ = db.Close() }},
		}, nil

	case config.DriverMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(c.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("connect to mongo: %w", err)
		}
		if err := client.Ping(connectCtx, nil); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("ping mongo: %w", err)
		}
		logger.Info("mongo connection established", "database", c.MongoDatabase)
		return &storage{
			Store:   repo.NewMongoStore(client.Database(c.MongoDatabase)),
			closers: []func(){func() { _ = client.Disconnect(context.Background()) }},
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", c.StoreDriver)
}

// migrate applies pending SQL migrations. It is a no-op for the drivers
// without a schema.
func (s *storage) migrate(ctx context.Context) error {
	if s.sqlDB == nil {
		return nil
	}
	n, err := migrations.Up(ctx, s.dialect, s.sqlDB)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Info("migrations applied", "count", n)
	}
	return nil
}

// openMigrated opens the configured storage and brings its schema up to date.
func openMigrated(ctx context.Context) (*storage, error) {
	st, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := st.migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}
