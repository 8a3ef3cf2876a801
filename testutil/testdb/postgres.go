// Package testdb starts a disposable PostgreSQL for integration tests and
// applies the repository migrations to it.
package testdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const image = "postgres:16-alpine"

// resetTables lists every table Reset empties. Children come first so the
// statement reads in dependency order even though CASCADE would cover it.
var resetTables = []string{
	"investment_transactions",
	"watchlist_entries",
	"expenses",
	"incomes",
}

// TestDB is a running container plus a pool connected to it
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// NewTestDB starts the container, runs every *.up.sql migration in order and
// connects a pool
func NewTestDB(ctx context.Context) (*TestDB, error) {
	scripts, err := upMigrations()
	if err != nil {
		return nil, err
	}

	container, err := postgres.Run(ctx, image,
		postgres.WithDatabase("fintrack_test"),
		postgres.WithUsername("fintrack"),
		postgres.WithPassword("fintrack"),
		postgres.WithInitScripts(scripts...),
		testcontainers.WithWaitStrategy(
			// the server restarts once after the init scripts ran
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(2*time.Minute),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	db := &TestDB{Container: container}
	if err := db.connect(ctx); err != nil {
		return nil, errors.Join(err, db.Close(ctx))
	}
	return db, nil
}

func (db *TestDB) connect(ctx context.Context) error {
	connStr, err := db.Container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return fmt.Errorf("failed to get connection string: %w", err)
	}
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	db.Pool, db.ConnStr = pool, connStr

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Reset empties every application table
func (db *TestDB) Reset(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, "TRUNCATE TABLE "+strings.Join(resetTables, ", ")+" CASCADE"); err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	return nil
}

// Close closes the pool and terminates the container
func (db *TestDB) Close(ctx context.Context) error {
	if db.Pool != nil {
		db.Pool.Close()
	}
	if db.Container == nil {
		return nil
	}
	return db.Container.Terminate(ctx)
}

// upMigrations returns the absolute paths of migrations/*.up.sql, sorted by name
func upMigrations() ([]string, error) {
	_, here, _, ok := runtime.Caller(0)
	if !ok {
		return nil, errors.New("failed to locate testdb package")
	}
	root := filepath.Join(filepath.Dir(here), "..", "..")

	scripts, err := filepath.Glob(filepath.Join(root, "migrations", "*.up.sql"))
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	if len(scripts) == 0 {
		return nil, fmt.Errorf("no migrations found under %s", filepath.Join(root, "migrations"))
	}
	sort.Strings(scripts)
	return scripts, nil
}
