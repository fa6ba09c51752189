package user

import (
	"context"
	c "notesauth/internal/core/domain/common"
	"notesauth/internal/core/domain/user"
	"notesauth/internal/db"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const (
	USERNAME      = user.Username("alice")
	EMAIL         = c.Email("alice@example.com")
	PASSWORD_HASH = user.PasswordHash("test-password-hash")
	TOKEN         = user.PasswordResetToken("482913")
)

var NOW time.Time = time.Date(2020, 6, 6, 15, 30, 30, 0, time.UTC)

type testSuite struct {
	suite.Suite
	open func(t *testing.T) user.UserRepository
	repo user.UserRepository
}

func (suite *testSuite) SetupTest() {
	suite.repo = suite.open(suite.T())
}

func TestPgxUserRepository(t *testing.T) {
	suite.Run(t, &testSuite{open: func(t *testing.T) user.UserRepository {
		pool := db.CreateTestPool(t)
		t.Cleanup(func() {
			db.TruncateTables(pool)
			pool.Close()
		})
		return NewPgxRepository(pool)
	}})
}

func TestSqliteUserRepository(t *testing.T) {
	suite.Run(t, &testSuite{open: func(t *testing.T) user.UserRepository {
		return NewSqliteRepository(db.CreateTestSQLite(t))
	}})
}

func (suite *testSuite) create(username user.Username, email c.Email) user.User {
	u, err := suite.repo.Create(context.Background(), user.CreateUserInput{
		Username:     username,
		Email:        email,
		PasswordHash: PASSWORD_HASH,
		CreatedAt:    NOW,
	})
	suite.Require().Nil(err)
	return u
}

func (suite *testSuite) get(id user.ID) user.User {
	u, err := suite.repo.GetByID(context.Background(), id)
	suite.Require().Nil(err)
	return u
}

func (suite *testSuite) TestCreateSuccess() {
	u := suite.create(USERNAME, EMAIL)

	assert := suite.Require()
	assert.NotEqual(user.ID(0), u.ID)
	assert.Equal(USERNAME, u.Username)
	assert.Equal(EMAIL, u.Email)
	assert.Equal(PASSWORD_HASH, u.PasswordHash)
	assert.True(NOW.Equal(u.CreatedAt))
	assert.False(u.HasPendingPasswordReset())
}

func (suite *testSuite) TestCreateConflicts() {
	suite.create(USERNAME, EMAIL)

	_, err := suite.repo.Create(context.Background(), user.CreateUserInput{
		Username: USERNAME, Email: "other@example.com", PasswordHash: PASSWORD_HASH, CreatedAt: NOW,
	})
	suite.Require().ErrorIs(err, user.ErrUsernameAlreadyExists)

	_, err = suite.repo.Create(context.Background(), user.CreateUserInput{
		Username: "bob", Email: EMAIL, PasswordHash: PASSWORD_HASH, CreatedAt: NOW,
	})
	suite.Require().ErrorIs(err, user.ErrEmailAlreadyExists)
}

func (suite *testSuite) TestGetByEmail() {
	created := suite.create(USERNAME, EMAIL)
	ctx := context.Background()

	u, err := suite.repo.GetByEmail(ctx, EMAIL)
	suite.Require().Nil(err)
	suite.Require().Equal(created.ID, u.ID)

	u, err = suite.repo.GetByEmailForUpdate(ctx, EMAIL)
	suite.Require().Nil(err)
	suite.Require().Equal(created.ID, u.ID)

	_, err = suite.repo.GetByEmail(ctx, "Alice@Example.com")
	suite.Require().ErrorIs(err, user.ErrUserDoesNotExist)

	_, err = suite.repo.GetByID(ctx, created.ID+100)
	suite.Require().ErrorIs(err, user.ErrUserDoesNotExist)
}

func (suite *testSuite) TestGetByIdentifier() {
	alice := suite.create(USERNAME, EMAIL)
	// Bob's username equals Alice's email.
	bob := suite.create(user.Username(EMAIL), "bob@example.com")
	ctx := context.Background()

	u, err := suite.repo.GetByIdentifier(ctx, "alice")
	suite.Require().Nil(err)
	suite.Require().Equal(alice.ID, u.ID)

	u, err = suite.repo.GetByIdentifier(ctx, user.Identifier(EMAIL))
	suite.Require().Nil(err)
	suite.Require().Equal(bob.ID, u.ID)

	u, err = suite.repo.GetByIdentifier(ctx, "bob@example.com")
	suite.Require().Nil(err)
	suite.Require().Equal(bob.ID, u.ID)

	_, err = suite.repo.GetByIdentifier(ctx, "carol")
	suite.Require().ErrorIs(err, user.ErrUserDoesNotExist)
}

func (suite *testSuite) TestSetPasswordResetOverwrites() {
	u := suite.create(USERNAME, EMAIL)
	ctx := context.Background()

	err := suite.repo.SetPasswordReset(ctx, u.ID, user.NewPasswordReset("111111", NOW, 15))
	suite.Require().Nil(err)
	second := user.NewPasswordReset(TOKEN, NOW.Add(time.Minute), 15)
	err = suite.repo.SetPasswordReset(ctx, u.ID, second)
	suite.Require().Nil(err)

	stored := suite.get(u.ID)
	assert := suite.Require()
	assert.True(stored.HasPendingPasswordReset())
	assert.Equal(TOKEN, stored.PasswordReset.Value.Token)
	assert.True(second.ExpiresAt.Equal(stored.PasswordReset.Value.ExpiresAt))
	assert.False(stored.IsPasswordResetTokenValid("111111", NOW.Add(2*time.Minute)))

	err = suite.repo.SetPasswordReset(ctx, u.ID+100, second)
	assert.ErrorIs(err, user.ErrUserDoesNotExist)
}

func (suite *testSuite) TestConsumePasswordReset() {
	u := suite.create(USERNAME, EMAIL)
	ctx := context.Background()
	suite.Require().Nil(suite.repo.SetPasswordReset(ctx, u.ID, user.NewPasswordReset(TOKEN, NOW, 15)))

	err := suite.repo.ConsumePasswordReset(ctx, user.ConsumePasswordResetInput{
		ID: u.ID, Token: "000000", PasswordHash: "new-hash",
	})
	suite.Require().ErrorIs(err, user.ErrInvalidPasswordResetToken)
	suite.Require().Equal(PASSWORD_HASH, suite.get(u.ID).PasswordHash)

	err = suite.repo.ConsumePasswordReset(ctx, user.ConsumePasswordResetInput{
		ID: u.ID, Token: TOKEN, PasswordHash: "new-hash",
	})
	suite.Require().Nil(err)
	stored := suite.get(u.ID)
	suite.Require().Equal(user.PasswordHash("new-hash"), stored.PasswordHash)
	suite.Require().False(stored.HasPendingPasswordReset())

	err = suite.repo.ConsumePasswordReset(ctx, user.ConsumePasswordResetInput{
		ID: u.ID, Token: TOKEN, PasswordHash: "third-hash",
	})
	suite.Require().ErrorIs(err, user.ErrInvalidPasswordResetToken)
	suite.Require().Equal(user.PasswordHash("new-hash"), suite.get(u.ID).PasswordHash)
}

func (suite *testSuite) TestSetPasswordDropsPendingReset() {
	u := suite.create(USERNAME, EMAIL)
	ctx := context.Background()
	suite.Require().Nil(suite.repo.SetPasswordReset(ctx, u.ID, user.NewPasswordReset(TOKEN, NOW, 15)))

	err := suite.repo.SetPassword(ctx, u.ID, "new-hash")

	suite.Require().Nil(err)
	stored := suite.get(u.ID)
	suite.Require().Equal(user.PasswordHash("new-hash"), stored.PasswordHash)
	suite.Require().False(stored.HasPendingPasswordReset())
}

func (suite *testSuite) TestClearExpiredPasswordResets() {
	ctx := context.Background()
	expired := suite.create("expired", "expired@example.com")
	boundary := suite.create("boundary", "boundary@example.com")
	pending := suite.create("pending", "pending@example.com")
	suite.create("none", "none@example.com")
	now := NOW.Add(time.Hour)
	suite.Require().Nil(suite.repo.SetPasswordReset(ctx, expired.ID, user.NewPasswordReset(TOKEN, NOW, 15)))
	suite.Require().Nil(suite.repo.SetPasswordReset(ctx, boundary.ID, user.NewPasswordReset(TOKEN, now.Add(-15*time.Minute), 15)))
	suite.Require().Nil(suite.repo.SetPasswordReset(ctx, pending.ID, user.NewPasswordReset(TOKEN, now.Add(-time.Minute), 15)))

	cleared, err := suite.repo.ClearExpiredPasswordResets(ctx, now)

	assert := suite.Require()
	assert.Nil(err)
	assert.Equal(int64(2), cleared)
	assert.False(suite.get(expired.ID).HasPendingPasswordReset())
	assert.False(suite.get(boundary.ID).HasPendingPasswordReset())
	assert.True(suite.get(pending.ID).HasPendingPasswordReset())
}
