package uow

import (
	"context"
	"database/sql"
	uow "notesauth/internal/core/domain/unit_of_work"
	"notesauth/internal/core/domain/user"
	dbuser "notesauth/internal/db/user"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type pgxUnitOfWorkContext struct {
	tx pgx.Tx
}

func newPgxUnitOfWorkContext(tx pgx.Tx) *pgxUnitOfWorkContext {
	return &pgxUnitOfWorkContext{
		tx: tx,
	}
}

func (c *pgxUnitOfWorkContext) Commit(ctx context.Context) error {
	return c.tx.Commit(ctx)
}

func (c *pgxUnitOfWorkContext) Rollback(ctx context.Context) error {
	return c.tx.Rollback(ctx)
}

func (c *pgxUnitOfWorkContext) Users() user.UserRepository {
	return dbuser.NewPgxRepository(c.tx)
}

type PgxUnitOfWork struct {
	db *pgxpool.Pool
}

func NewPgxUnitOfWork(db *pgxpool.Pool) *PgxUnitOfWork {
	if db == nil {
		panic("Argument db must not be nil.")
	}
	return &PgxUnitOfWork{db: db}
}

func (u *PgxUnitOfWork) Begin(ctx context.Context) (uow.Context, error) {
	tx, err := u.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return newPgxUnitOfWorkContext(tx), nil
}

type sqliteUnitOfWorkContext struct {
	tx *sql.Tx
}

func (c *sqliteUnitOfWorkContext) Commit(ctx context.Context) error {
	return c.tx.Commit()
}

func (c *sqliteUnitOfWorkContext) Rollback(ctx context.Context) error {
	return c.tx.Rollback()
}

func (c *sqliteUnitOfWorkContext) Users() user.UserRepository {
	return dbuser.NewSqliteRepository(c.tx)
}

// SqliteUnitOfWork expects a database opened with db.OpenSQLite, whose transactions take
// the write lock on begin.
type SqliteUnitOfWork struct {
	db *sql.DB
}

func NewSqliteUnitOfWork(db *sql.DB) *SqliteUnitOfWork {
	if db == nil {
		panic("Argument db must not be nil.")
	}
	return &SqliteUnitOfWork{db: db}
}

func (u *SqliteUnitOfWork) Begin(ctx context.Context) (uow.Context, error) {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteUnitOfWorkContext{tx: tx}, nil
}
