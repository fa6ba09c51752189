package resetpassword

import (
	"context"
	c "notesauth/internal/core/domain/common"
	"notesauth/internal/core/domain/logging"
	uow "notesauth/internal/core/domain/unit_of_work"
	"notesauth/internal/core/domain/user"
	"notesauth/internal/core/services"
	sendpasswordresettoken "notesauth/internal/core/services/send_password_reset_token"
	validatecredentials "notesauth/internal/core/services/validate_credentials"
	verifypasswordresettoken "notesauth/internal/core/services/verify_password_reset_token"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const (
	EMAIL        = c.Email("alice@example.com")
	TOKEN        = user.PasswordResetToken("482913")
	OLD_PASSWORD = user.RawPassword("old-password")
	NEW_PASSWORD = user.RawPassword("new-password")
)

var ISSUED_AT = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type testSuite struct {
	suite.Suite
	Logger         *logging.FakeLogger
	UserRepository *user.FakeUserRepository
	UnitOfWork     *uow.FakeUnitOfWork
	PasswordHasher *user.FakePasswordHasher
	Now            time.Time
	Service        services.Service[Input, Result]
	User           user.User
}

func (suite *testSuite) SetupTest() {
	suite.Logger = logging.NewFakeLogger()
	suite.UserRepository = user.NewFakeUserRepository()
	suite.UnitOfWork = uow.NewFakeUnitOfWork(suite.UserRepository)
	suite.PasswordHasher = user.NewFakePasswordHasher()
	suite.Now = ISSUED_AT.Add(5 * time.Minute)
	suite.Service = New(
		suite.Logger,
		suite.UserRepository,
		suite.UnitOfWork,
		suite.PasswordHasher,
		func() time.Time { return suite.Now },
	)

	hash, err := suite.PasswordHasher.HashPassword(OLD_PASSWORD)
	suite.Require().Nil(err)
	u, err := suite.UserRepository.Create(context.Background(), user.CreateUserInput{
		Username:     "alice",
		Email:        EMAIL,
		PasswordHash: hash,
		CreatedAt:    ISSUED_AT,
	})
	suite.Require().Nil(err)
	suite.User = u
	err = suite.UserRepository.SetPasswordReset(
		context.Background(),
		u.ID,
		user.NewPasswordReset(TOKEN, ISSUED_AT, user.DefaultPasswordResetValidMinutes),
	)
	suite.Require().Nil(err)
}

func (suite *testSuite) storedUser() user.User {
	u, err := suite.UserRepository.GetByID(context.Background(), suite.User.ID)
	suite.Require().Nil(err)
	return u
}

func TestResetPasswordService(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (suite *testSuite) TestSuccess() {
	_, err := suite.Service.Run(
		context.Background(),
		Input{Email: EMAIL, Token: TOKEN, NewPassword: NEW_PASSWORD},
	)

	assert := suite.Require()
	assert.Nil(err)
	stored := suite.storedUser()
	assert.True(suite.PasswordHasher.ValidatePassword(NEW_PASSWORD, stored.PasswordHash))
	assert.False(suite.PasswordHasher.ValidatePassword(OLD_PASSWORD, stored.PasswordHash))
	assert.False(stored.HasPendingPasswordReset())
	assert.True(suite.UnitOfWork.Context.WasCommitCalled)
}

func (suite *testSuite) TestTokenCanBeConsumedOnce() {
	input := Input{Email: EMAIL, Token: TOKEN, NewPassword: NEW_PASSWORD}
	_, err := suite.Service.Run(context.Background(), input)
	suite.Require().Nil(err)

	input.NewPassword = "third-password"
	_, err = suite.Service.Run(context.Background(), input)

	assert := suite.Require()
	assert.ErrorIs(err, user.ErrInvalidPasswordResetToken)
	assert.True(suite.PasswordHasher.ValidatePassword(NEW_PASSWORD, suite.storedUser().PasswordHash))
}

func (suite *testSuite) TestConcurrentResetsConsumeTokenOnce() {
	const attempts = 10
	var (
		wg        sync.WaitGroup
		lock      sync.Mutex
		successes int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.Service.Run(
				context.Background(),
				Input{Email: EMAIL, Token: TOKEN, NewPassword: NEW_PASSWORD},
			)
			if err == nil {
				lock.Lock()
				successes++
				lock.Unlock()
			}
		}()
	}
	wg.Wait()

	suite.Require().Equal(1, successes)
}

func (suite *testSuite) TestInvalidToken() {
	cases := []struct {
		id    string
		input Input
		now   time.Time
	}{
		{
			id:    "wrong code",
			input: Input{Email: EMAIL, Token: "111111", NewPassword: NEW_PASSWORD},
			now:   ISSUED_AT.Add(time.Minute),
		},
		{
			id:    "unknown email",
			input: Input{Email: "nobody@example.com", Token: TOKEN, NewPassword: NEW_PASSWORD},
			now:   ISSUED_AT.Add(time.Minute),
		},
		{
			id:    "exactly at expiry",
			input: Input{Email: EMAIL, Token: TOKEN, NewPassword: NEW_PASSWORD},
			now:   ISSUED_AT.Add(15 * time.Minute),
		},
		{
			id:    "after expiry",
			input: Input{Email: EMAIL, Token: TOKEN, NewPassword: NEW_PASSWORD},
			now:   ISSUED_AT.Add(16 * time.Minute),
		},
	}
	for _, testcase := range cases {
		suite.Run(testcase.id, func() {
			suite.Now = testcase.now

			_, err := suite.Service.Run(context.Background(), testcase.input)

			assert := suite.Require()
			assert.ErrorIs(err, user.ErrInvalidPasswordResetToken)
			stored := suite.storedUser()
			assert.True(suite.PasswordHasher.ValidatePassword(OLD_PASSWORD, stored.PasswordHash))
			assert.True(stored.HasPendingPasswordReset())
		})
	}
	suite.Require().Equal(0, suite.UnitOfWork.BeginCount())
}

func (suite *testSuite) TestHashingFailureKeepsToken() {
	suite.PasswordHasher.ReturnError = true

	_, err := suite.Service.Run(
		context.Background(),
		Input{Email: EMAIL, Token: TOKEN, NewPassword: NEW_PASSWORD},
	)

	assert := suite.Require()
	assert.ErrorIs(err, user.ErrPasswordHashing)
	assert.True(suite.storedUser().HasPendingPasswordReset())
	assert.False(suite.UnitOfWork.Context.WasCommitCalled)
}

func (suite *testSuite) TestBeginFailure() {
	suite.UnitOfWork.ReturnError = true

	_, err := suite.Service.Run(
		context.Background(),
		Input{Email: EMAIL, Token: TOKEN, NewPassword: NEW_PASSWORD},
	)

	assert := suite.Require()
	assert.NotNil(err)
	assert.NotErrorIs(err, user.ErrInvalidPasswordResetToken)
}

// Request, verify, reset and log in with the new password.
func (suite *testSuite) TestFullFlow() {
	ctx := context.Background()
	sender := user.NewFakePasswordResetTokenSender()
	sendToken := sendpasswordresettoken.NewWithTokenSending(
		suite.Logger,
		sender,
		sendpasswordresettoken.New(
			suite.Logger,
			suite.UserRepository,
			user.NewFakePasswordResetTokenGenerator("482913"),
			user.DefaultPasswordResetValidMinutes,
			func() time.Time { return ISSUED_AT },
		),
	)
	verifyToken := verifypasswordresettoken.New(
		suite.Logger,
		suite.UserRepository,
		func() time.Time { return ISSUED_AT.Add(3 * time.Minute) },
	)
	validateCredentials := validatecredentials.New(suite.Logger, suite.UserRepository, suite.PasswordHasher)

	_, err := sendToken.Run(ctx, sendpasswordresettoken.Input{Email: EMAIL})
	suite.Require().Nil(err)
	code := sender.LastSent().Reset.Token

	verified, err := verifyToken.Run(ctx, verifypasswordresettoken.Input{Email: EMAIL, Token: code})
	suite.Require().Nil(err)
	suite.Require().True(verified.Valid)

	suite.Now = ISSUED_AT.Add(4 * time.Minute)
	_, err = suite.Service.Run(ctx, Input{Email: EMAIL, Token: code, NewPassword: NEW_PASSWORD})
	suite.Require().Nil(err)

	_, err = verifyToken.Run(ctx, verifypasswordresettoken.Input{Email: EMAIL, Token: code})
	suite.Require().ErrorIs(err, user.ErrInvalidPasswordResetToken)

	_, err = validateCredentials.Run(ctx, validatecredentials.Input{Identifier: "alice", Password: OLD_PASSWORD})
	suite.Require().ErrorIs(err, user.ErrInvalidCredentials)

	loggedIn, err := validateCredentials.Run(
		ctx,
		validatecredentials.Input{Identifier: "alice@example.com", Password: NEW_PASSWORD},
	)
	suite.Require().Nil(err)
	suite.Require().Equal(suite.User.ID, loggedIn.User.ID)
}
