package services

import (
	"notesauth/internal/app/deps"
	drl "notesauth/internal/core/domain/rate_limiter"
	"notesauth/internal/core/services"
	"notesauth/internal/core/services/auth"
	changepassword "notesauth/internal/core/services/change_password"
	getuser "notesauth/internal/core/services/get_user"
	login "notesauth/internal/core/services/log_in"
	purgeexpiredpasswordresets "notesauth/internal/core/services/purge_expired_password_resets"
	ratelimiting "notesauth/internal/core/services/rate_limiting"
	resetpassword "notesauth/internal/core/services/reset_password"
	sendpasswordresettoken "notesauth/internal/core/services/send_password_reset_token"
	signupwithemail "notesauth/internal/core/services/sign_up_with_email"
	validatecredentials "notesauth/internal/core/services/validate_credentials"
	verifypasswordresettoken "notesauth/internal/core/services/verify_password_reset_token"
)

type Services struct {
	SignUpWithEmail            services.Service[signupwithemail.Input, signupwithemail.Result]
	LogIn                      services.Service[login.Input, login.Result]
	SendPasswordResetToken     services.Service[sendpasswordresettoken.Input, sendpasswordresettoken.Result]
	VerifyPasswordResetToken   services.Service[verifypasswordresettoken.Input, verifypasswordresettoken.Result]
	ResetPassword              services.Service[resetpassword.Input, resetpassword.Result]
	PurgeExpiredPasswordResets services.Service[purgeexpiredpasswordresets.Input, purgeexpiredpasswordresets.Result]

	ChangePassword services.Service[changepassword.Input, changepassword.Result]
	GetUser        services.Service[getuser.Input, getuser.Result]
}

func InitServices(deps *deps.Deps) *Services {
	s := &Services{}

	s.SignUpWithEmail = signupwithemail.New(
		deps.Logger,
		deps.UnitOfWork,
		deps.PasswordHasher,
		deps.AccessTokenIssuer,
		deps.Now,
	)
	s.LogIn = ratelimiting.WithRateLimiting(
		deps.Logger,
		deps.RateLimiter,
		drl.Limit{Interval: drl.Hour, Value: 10},
		login.New(
			deps.Logger,
			validatecredentials.New(deps.Logger, deps.UserRepository, deps.PasswordHasher),
			deps.AccessTokenIssuer,
		),
	)
	s.SendPasswordResetToken = ratelimiting.WithRateLimiting(
		deps.Logger,
		deps.RateLimiter,
		drl.Limit{Interval: drl.Hour, Value: 3},
		sendpasswordresettoken.NewWithTokenSending(
			deps.Logger,
			deps.PasswordResetTokenSender,
			sendpasswordresettoken.New(
				deps.Logger,
				deps.UserRepository,
				deps.PasswordResetTokenGenerator,
				deps.Config.PasswordResetValidDurationMinutes,
				deps.Now,
			),
		),
	)
	s.VerifyPasswordResetToken = ratelimiting.WithRateLimiting(
		deps.Logger,
		deps.RateLimiter,
		drl.Limit{Interval: drl.Minute, Value: 10},
		verifypasswordresettoken.New(deps.Logger, deps.UserRepository, deps.Now),
	)
	s.ResetPassword = ratelimiting.WithRateLimiting(
		deps.Logger,
		deps.RateLimiter,
		drl.Limit{Interval: drl.Minute, Value: 5},
		resetpassword.New(
			deps.Logger,
			deps.UserRepository,
			deps.UnitOfWork,
			deps.PasswordHasher,
			deps.Now,
		),
	)
	s.PurgeExpiredPasswordResets = purgeexpiredpasswordresets.New(deps.Logger, deps.UserRepository, deps.Now)

	s.ChangePassword = auth.WithAuthentication(
		deps.AccessTokenIssuer,
		deps.UserRepository,
		changepassword.New(deps.Logger, deps.UserRepository, deps.PasswordHasher),
	)
	s.GetUser = auth.WithAuthentication(
		deps.AccessTokenIssuer,
		deps.UserRepository,
		getuser.New(),
	)

	return s
}
