package user

import (
	"context"
	"errors"
	"fmt"
	c "notesauth/internal/core/domain/common"
	"notesauth/internal/core/domain/user"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

const PG_UNIQUE_CONSTRAINT_ERR_CODE = "23505"

const (
	USERNAME_CONSTRAINT_NAME = "user_username_idx"
	EMAIL_CONSTRAINT_NAME    = "user_email_idx"
)

const userColumns = `id, username, email, password_hash, reset_token, reset_token_expires_at, created_at`

type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type PgxUserRepository struct {
	db DBTX
}

func NewPgxRepository(db DBTX) *PgxUserRepository {
	if db == nil {
		panic("Argument db must not be nil.")
	}
	return &PgxUserRepository{db: db}
}

func (r *PgxUserRepository) Create(ctx context.Context, input user.CreateUserInput) (u user.User, err error) {
	row := r.db.QueryRow(
		ctx,
		`INSERT INTO "user" (username, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		string(input.Username),
		string(input.Email),
		string(input.PasswordHash),
		input.CreatedAt,
	)
	u, err = scanUser(row)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == PG_UNIQUE_CONSTRAINT_ERR_CODE {
		switch pgErr.ConstraintName {
		case USERNAME_CONSTRAINT_NAME:
			return u, user.ErrUsernameAlreadyExists
		case EMAIL_CONSTRAINT_NAME:
			return u, user.ErrEmailAlreadyExists
		}
	}
	if err != nil {
		return u, err
	}
	return u, u.Validate()
}

func (r *PgxUserRepository) GetByID(ctx context.Context, id user.ID) (u user.User, err error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM "user" WHERE id = $1`, int64(id))
}

func (r *PgxUserRepository) GetByEmail(ctx context.Context, email c.Email) (u user.User, err error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM "user" WHERE email = $1`, string(email))
}

func (r *PgxUserRepository) GetByEmailForUpdate(ctx context.Context, email c.Email) (u user.User, err error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM "user" WHERE email = $1 FOR UPDATE`, string(email))
}

func (r *PgxUserRepository) GetByIdentifier(
	ctx context.Context,
	identifier user.Identifier,
) (u user.User, err error) {
	return r.getOne(
		ctx,
		`SELECT `+userColumns+` FROM "user"
		WHERE username = $1 OR email = $2
		ORDER BY (username = $1) DESC
		LIMIT 1`,
		string(identifier.AsUsername()),
		string(identifier.AsEmail()),
	)
}

func (r *PgxUserRepository) SetPasswordReset(ctx context.Context, id user.ID, reset user.PasswordReset) error {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE "user" SET reset_token = $2, reset_token_expires_at = $3 WHERE id = $1`,
		int64(id),
		string(reset.Token),
		reset.ExpiresAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserDoesNotExist
	}
	return nil
}

func (r *PgxUserRepository) ConsumePasswordReset(ctx context.Context, input user.ConsumePasswordResetInput) error {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE "user"
		SET password_hash = $3, reset_token = NULL, reset_token_expires_at = NULL
		WHERE id = $1 AND reset_token = $2`,
		int64(input.ID),
		string(input.Token),
		string(input.PasswordHash),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return user.ErrInvalidPasswordResetToken
	}
	return nil
}

func (r *PgxUserRepository) SetPassword(ctx context.Context, id user.ID, password user.PasswordHash) error {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE "user"
		SET password_hash = $2, reset_token = NULL, reset_token_expires_at = NULL
		WHERE id = $1`,
		int64(id),
		string(password),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserDoesNotExist
	}
	return nil
}

func (r *PgxUserRepository) ClearExpiredPasswordResets(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE "user"
		SET reset_token = NULL, reset_token_expires_at = NULL
		WHERE reset_token_expires_at <= $1`,
		now,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PgxUserRepository) getOne(ctx context.Context, sql string, args ...interface{}) (u user.User, err error) {
	u, err = scanUser(r.db.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
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

func scanUser(row pgx.Row) (u user.User, err error) {
	var (
		id             int64
		username       string
		email          string
		passwordHash   string
		resetToken     *string
		resetExpiresAt *time.Time
		createdAt      time.Time
	)
	err = row.Scan(&id, &username, &email, &passwordHash, &resetToken, &resetExpiresAt, &createdAt)
	if err != nil {
		return u, err
	}
	return decodeUser(id, username, email, passwordHash, resetToken, resetExpiresAt, createdAt), nil
}

func decodeUser(
	id int64,
	username string,
	email string,
	passwordHash string,
	resetToken *string,
	resetExpiresAt *time.Time,
	createdAt time.Time,
) user.User {
	u := user.User{
		ID:           user.ID(id),
		Username:     user.Username(username),
		Email:        c.Email(email),
		PasswordHash: user.PasswordHash(passwordHash),
		CreatedAt:    createdAt.UTC(),
	}
	if resetToken != nil || resetExpiresAt != nil {
		reset := user.PasswordReset{}
		if resetToken != nil {
			reset.Token = user.PasswordResetToken(*resetToken)
		}
		if resetExpiresAt != nil {
			reset.ExpiresAt = resetExpiresAt.UTC()
		}
		u.PasswordReset = c.NewOptional(reset, true)
	}
	return u
}
