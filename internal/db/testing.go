package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v4/pgxpool"
)

// CreateTestPool connects to TEST_POSTGRESQL_URL and applies migrations. Tests are skipped
// when it is not set.
func CreateTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	connString := os.Getenv("TEST_POSTGRESQL_URL")
	if connString == "" {
		t.Skip("TEST_POSTGRESQL_URL is not set.")
	}
	if err := ApplyMigrations(DriverPostgres, connString); err != nil {
		t.Fatalf("Could not apply DB migrations: %v", err)
	}

	pool, err := pgxpool.Connect(context.Background(), connString)
	if err != nil {
		t.Fatalf("Could not connect to the database: %v", err)
	}
	return pool
}

func TruncateTables(pool *pgxpool.Pool) {
	_, err := pool.Exec(context.Background(), `TRUNCATE "user" RESTART IDENTITY`)
	if err != nil {
		panic(fmt.Sprintf("Could not truncate DB tables: %v", err))
	}
}

// CreateTestSQLite creates a migrated database file in a temporary directory.
func CreateTestSQLite(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notesauth.db")
	if err := ApplyMigrations(DriverSQLite, path); err != nil {
		t.Fatalf("Could not apply DB migrations: %v", err)
	}
	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("Could not open the database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
