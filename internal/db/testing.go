package db

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/jackc/pgx/v4/pgxpool"
)

// CreateTestPool connects to TEST_POSTGRESQL_URL and applies migrations.
// The test is skipped if the variable is not set.
func CreateTestPool(t testing.TB) *pgxpool.Pool {
	t.Helper()
	connString := os.Getenv("TEST_POSTGRESQL_URL")
	if connString == "" {
		t.Skip("TEST_POSTGRESQL_URL is not set.")
	}
	if err := ApplyMigrations(testMigrationsPath(), connString); err != nil {
		t.Fatalf("Could not apply DB migrations: %v.", err)
	}

	pool, err := pgxpool.Connect(context.Background(), connString)
	if err != nil {
		t.Fatalf("Could not connect to the database: %v.", err)
	}
	return pool
}

func TruncateTables(pool *pgxpool.Pool) {
	_, err := pool.Exec(context.Background(), "TRUNCATE account RESTART IDENTITY")
	if err != nil {
		panic("Could not truncate DB tables.")
	}
}

func testMigrationsPath() string {
	if path := os.Getenv("TEST_MIGRATIONS_PATH"); path != "" {
		return path
	}
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}
