package purgeexpiredpasswordresets

import (
	"context"
	"errors"
	e "notesauth/internal/core/domain/errors"
	"notesauth/internal/core/domain/logging"
	"notesauth/internal/core/domain/user"
	"notesauth/internal/core/services"
	"time"
)

type Input struct{}

type Result struct {
	Cleared int64
}

type service struct {
	log            logging.Logger
	userRepository user.UserRepository
	now            func() time.Time
}

func New(
	log logging.Logger,
	userRepository user.UserRepository,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if userRepository == nil {
		panic(e.NewNilArgumentError("userRepository"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:            log,
		userRepository: userRepository,
		now:            now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	cleared, err := s.userRepository.ClearExpiredPasswordResets(ctx, s.now())
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if err != nil {
		s.log.Error(ctx, "Could not clear expired password resets.", logging.Entry("err", err))
		return result, err
	}
	if cleared > 0 {
		s.log.Info(ctx, "Expired password resets have been cleared.", logging.Entry("cleared", cleared))
	}
	return Result{Cleared: cleared}, nil
}
