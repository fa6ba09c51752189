package validatecredentials

import (
	"context"
	"errors"
	e "notesauth/internal/core/domain/errors"
	"notesauth/internal/core/domain/logging"
	"notesauth/internal/core/domain/user"
	"notesauth/internal/core/services"
)

// Compared against when the identifier is unknown so both failure paths cost a hash comparison.
const dummyPasswordHash = user.PasswordHash("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

type Input struct {
	Identifier user.Identifier
	Password   user.RawPassword
}

type Result struct {
	User user.User
}

type service struct {
	log            logging.Logger
	userRepository user.UserRepository
	passwordHasher user.PasswordHasher
}

// New returns ErrInvalidCredentials both for an unknown identifier and for a wrong password.
func New(
	log logging.Logger,
	userRepository user.UserRepository,
	passwordHasher user.PasswordHasher,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if userRepository == nil {
		panic(e.NewNilArgumentError("userRepository"))
	}
	if passwordHasher == nil {
		panic(e.NewNilArgumentError("passwordHasher"))
	}
	return &service{
		log:            log,
		userRepository: userRepository,
		passwordHasher: passwordHasher,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	u, err := s.userRepository.GetByIdentifier(ctx, input.Identifier)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if errors.Is(err, user.ErrUserDoesNotExist) {
		s.passwordHasher.ValidatePassword(input.Password, dummyPasswordHash)
		s.log.Info(ctx, "User not found by identifier.", logging.Entry("identifier", input.Identifier))
		return result, user.ErrInvalidCredentials
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not get user by identifier.",
			logging.Entry("identifier", input.Identifier),
			logging.Entry("err", err),
		)
		return result, err
	}

	if !s.passwordHasher.ValidatePassword(input.Password, u.PasswordHash) {
		s.log.Info(ctx, "Invalid password.", logging.Entry("userID", u.ID))
		return result, user.ErrInvalidCredentials
	}
	return Result{User: u}, nil
}
