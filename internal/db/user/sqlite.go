package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	c "notesauth/internal/core/domain/common"
	"notesauth/internal/core/domain/user"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

type SqlDBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// SqliteUserRepository stores times as unix nanoseconds. Transactions are started with
// BEGIN IMMEDIATE (see db.OpenSQLite), so a transaction already holds the write lock and
// GetByEmailForUpdate needs no row lock.
type SqliteUserRepository struct {
	db SqlDBTX
}

func NewSqliteRepository(db SqlDBTX) *SqliteUserRepository {
	if db == nil {
		panic("Argument db must not be nil.")
	}
	return &SqliteUserRepository{db: db}
}

func (r *SqliteUserRepository) Create(ctx context.Context, input user.CreateUserInput) (u user.User, err error) {
	row := r.db.QueryRowContext(
		ctx,
		`INSERT INTO "user" (username, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING `+userColumns,
		string(input.Username),
		string(input.Email),
		string(input.PasswordHash),
		input.CreatedAt.UnixNano(),
	)
	u, err = scanSqliteUser(row)

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		switch {
		case strings.Contains(sqliteErr.Error(), "user.username"):
			return u, user.ErrUsernameAlreadyExists
		case strings.Contains(sqliteErr.Error(), "user.email"):
			return u, user.ErrEmailAlreadyExists
		}
	}
	if err != nil {
		return u, err
	}
	return u, u.Validate()
}

func (r *SqliteUserRepository) GetByID(ctx context.Context, id user.ID) (u user.User, err error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM "user" WHERE id = ?`, int64(id))
}

func (r *SqliteUserRepository) GetByEmail(ctx context.Context, email c.Email) (u user.User, err error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM "user" WHERE email = ?`, string(email))
}

func (r *SqliteUserRepository) GetByEmailForUpdate(ctx context.Context, email c.Email) (u user.User, err error) {
	return r.GetByEmail(ctx, email)
}

func (r *SqliteUserRepository) GetByIdentifier(
	ctx context.Context,
	identifier user.Identifier,
) (u user.User, err error) {
	username := string(identifier.AsUsername())
	return r.getOne(
		ctx,
		`SELECT `+userColumns+` FROM "user"
		WHERE username = ? OR email = ?
		ORDER BY (username = ?) DESC
		LIMIT 1`,
		username,
		string(identifier.AsEmail()),
		username,
	)
}

func (r *SqliteUserRepository) SetPasswordReset(ctx context.Context, id user.ID, reset user.PasswordReset) error {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE "user" SET reset_token = ?, reset_token_expires_at = ? WHERE id = ?`,
		string(reset.Token),
		reset.ExpiresAt.UnixNano(),
		int64(id),
	)
	return expectAffected(result, err, user.ErrUserDoesNotExist)
}

func (r *SqliteUserRepository) ConsumePasswordReset(ctx context.Context, input user.ConsumePasswordResetInput) error {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE "user"
		SET password_hash = ?, reset_token = NULL, reset_token_expires_at = NULL
		WHERE id = ? AND reset_token = ?`,
		string(input.PasswordHash),
		int64(input.ID),
		string(input.Token),
	)
	return expectAffected(result, err, user.ErrInvalidPasswordResetToken)
}

func (r *SqliteUserRepository) SetPassword(ctx context.Context, id user.ID, password user.PasswordHash) error {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE "user"
		SET password_hash = ?, reset_token = NULL, reset_token_expires_at = NULL
		WHERE id = ?`,
		string(password),
		int64(id),
	)
	return expectAffected(result, err, user.ErrUserDoesNotExist)
}

func (r *SqliteUserRepository) ClearExpiredPasswordResets(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE "user"
		SET reset_token = NULL, reset_token_expires_at = NULL
		WHERE reset_token_expires_at <= ?`,
		now.UnixNano(),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *SqliteUserRepository) getOne(ctx context.Context, query string, args ...interface{}) (u user.User, err error) {
	u, err = scanSqliteUser(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return u, user.ErrUserDoesNotExist
	}
	if err != nil {
		return u, err
	}
	if err := u.Validate(); err != nil {
		return u, fmt.Errorf("invalid user %d in the database: %w", u.ID, err)
	}
	return u, nil
}

func expectAffected(result sql.Result, err error, errNotAffected error) error {
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errNotAffected
	}
	return nil
}

func scanSqliteUser(row *sql.Row) (u user.User, err error) {
	var (
		id             int64
		username       string
		email          string
		passwordHash   string
		resetToken     sql.NullString
		resetExpiresAt sql.NullInt64
		createdAt      int64
	)
	err = row.Scan(&id, &username, &email, &passwordHash, &resetToken, &resetExpiresAt, &createdAt)
	if err != nil {
		return u, err
	}

	var token *string
	if resetToken.Valid {
		token = &resetToken.String
	}
	var expiresAt *time.Time
	if resetExpiresAt.Valid {
		at := time.Unix(0, resetExpiresAt.Int64)
		expiresAt = &at
	}
	return decodeUser(id, username, email, passwordHash, token, expiresAt, time.Unix(0, createdAt)), nil
}
