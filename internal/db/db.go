package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"notesauth/internal/db/migrations"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v4/pgxpool"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// WAL mode so that reads and writes don't block each other, and immediate transactions so
// that a transaction holds the write lock from its first statement.
const sqliteOptions = "?_foreign_keys=on&_journal_mode=wal&_busy_timeout=5000&_txlock=immediate"

func ConnectPostgres(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("could not connect to postgres: %w", err)
	}
	return pool, nil
}

// OpenSQLite opens path with a single connection, SQLite serializes writers anyway.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+sqliteOptions)
	if err != nil {
		return nil, fmt.Errorf("could not open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not open sqlite database: %w", err)
	}
	return db, nil
}

// ApplyMigrations brings the schema up to date. For sqlite3 databaseURL is the file path.
func ApplyMigrations(driver string, databaseURL string) error {
	var migrationURL string
	switch driver {
	case DriverPostgres:
		migrationURL = databaseURL
	case DriverSQLite:
		migrationURL = "sqlite3://" + databaseURL
	default:
		return fmt.Errorf("unknown database driver %q", driver)
	}

	source, err := iofs.New(migrations.FS, driver)
	if err != nil {
		return fmt.Errorf("could not read migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, migrationURL)
	if err != nil {
		return fmt.Errorf("could not connect to database for applying migrations: %w", err)
	}
	defer m.Close()

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not apply migrations: %w", err)
	}
	return nil
}
