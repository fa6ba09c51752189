package login

import (
	"context"
	e "notesauth/internal/core/domain/errors"
	"notesauth/internal/core/domain/logging"
	"notesauth/internal/core/domain/user"
	"notesauth/internal/core/services"
	validatecredentials "notesauth/internal/core/services/validate_credentials"
)

type Input struct {
	Identifier user.Identifier
	Password   user.RawPassword
}

func (i Input) GetRateLimitKey() string {
	return "log-in::" + string(i.Identifier)
}

type Result struct {
	User        user.User
	AccessToken user.AccessToken
}

type service struct {
	log                 logging.Logger
	validateCredentials services.Service[validatecredentials.Input, validatecredentials.Result]
	accessTokenIssuer   user.AccessTokenIssuer
}

func New(
	log logging.Logger,
	validateCredentials services.Service[validatecredentials.Input, validatecredentials.Result],
	accessTokenIssuer user.AccessTokenIssuer,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if validateCredentials == nil {
		panic(e.NewNilArgumentError("validateCredentials"))
	}
	if accessTokenIssuer == nil {
		panic(e.NewNilArgumentError("accessTokenIssuer"))
	}
	return &service{
		log:                 log,
		validateCredentials: validateCredentials,
		accessTokenIssuer:   accessTokenIssuer,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	validated, err := s.validateCredentials.Run(
		ctx,
		validatecredentials.Input{Identifier: input.Identifier, Password: input.Password},
	)
	if err != nil {
		return result, err
	}

	accessToken, err := s.accessTokenIssuer.IssueAccessToken(validated.User)
	if err != nil {
		s.log.Error(
			ctx,
			"Could not issue access token.",
			logging.Entry("userID", validated.User.ID),
			logging.Entry("err", err),
		)
		return result, err
	}

	s.log.Info(ctx, "User logged in.", logging.Entry("userID", validated.User.ID))
	return Result{User: validated.User, AccessToken: accessToken}, nil
}
