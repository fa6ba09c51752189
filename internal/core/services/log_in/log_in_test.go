package login

import (
	"context"
	"notesauth/internal/core/domain/logging"
	"notesauth/internal/core/domain/user"
	"notesauth/internal/core/services"
	validatecredentials "notesauth/internal/core/services/validate_credentials"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const PASSWORD = user.RawPassword("correct-horse")

type testSuite struct {
	suite.Suite
	Logger            *logging.FakeLogger
	UserRepository    *user.FakeUserRepository
	PasswordHasher    *user.FakePasswordHasher
	AccessTokenIssuer *user.FakeAccessTokenIssuer
	Service           services.Service[Input, Result]
}

func (suite *testSuite) SetupTest() {
	suite.Logger = logging.NewFakeLogger()
	suite.UserRepository = user.NewFakeUserRepository()
	suite.PasswordHasher = user.NewFakePasswordHasher()
	suite.AccessTokenIssuer = user.NewFakeAccessTokenIssuer()
	suite.Service = New(
		suite.Logger,
		validatecredentials.New(suite.Logger, suite.UserRepository, suite.PasswordHasher),
		suite.AccessTokenIssuer,
	)

	hash, err := suite.PasswordHasher.HashPassword(PASSWORD)
	suite.Require().Nil(err)
	_, err = suite.UserRepository.Create(context.Background(), user.CreateUserInput{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
	suite.Require().Nil(err)
}

func TestLogInService(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (suite *testSuite) TestSuccess() {
	result, err := suite.Service.Run(context.Background(), Input{Identifier: "alice", Password: PASSWORD})

	assert := suite.Require()
	assert.Nil(err)
	assert.Equal(user.Username("alice"), result.User.Username)
	assert.Equal(user.AccessToken("access-token-1"), result.AccessToken)
}

func (suite *testSuite) TestInvalidCredentials() {
	_, err := suite.Service.Run(context.Background(), Input{Identifier: "alice", Password: "wrong"})

	suite.Require().ErrorIs(err, user.ErrInvalidCredentials)
}

func (suite *testSuite) TestAccessTokenIssuerFailure() {
	suite.AccessTokenIssuer.ReturnError = true

	_, err := suite.Service.Run(context.Background(), Input{Identifier: "alice", Password: PASSWORD})

	assert := suite.Require()
	assert.NotNil(err)
	assert.Equal(logging.ERROR, suite.Logger.Logged[len(suite.Logger.Logged)-1].Level)
}

func (suite *testSuite) TestRateLimitKey() {
	suite.Require().Equal("log-in::alice", Input{Identifier: "alice"}.GetRateLimitKey())
}
