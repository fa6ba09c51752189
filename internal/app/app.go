package app

import (
	"fmt"
	"net/http"
	"notesauth/internal/app/deps"
	"notesauth/internal/app/services"
	"notesauth/internal/http/handlers/auth"
	login "notesauth/internal/http/handlers/auth/log_in"
	resetpassword "notesauth/internal/http/handlers/auth/reset_password"
	sendpasswordresettoken "notesauth/internal/http/handlers/auth/send_password_reset_token"
	signupwithemail "notesauth/internal/http/handlers/auth/sign_up_with_email"
	verifypasswordresettoken "notesauth/internal/http/handlers/auth/verify_password_reset_token"
	changepassword "notesauth/internal/http/handlers/user/change_password"
	me "notesauth/internal/http/handlers/user/me"
	"notesauth/internal/http/middleware"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func InitHttpServer(deps *deps.Deps, s *services.Services) *http.Server {
	return &http.Server{
		Handler:           NewRouter(deps, s),
		Addr:              fmt.Sprintf("0.0.0.0:%d", deps.Config.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func NewRouter(deps *deps.Deps, s *services.Services) http.Handler {
	authRouter := chi.NewRouter()
	authRouter.Method(http.MethodPost, "/register", signupwithemail.New(s.SignUpWithEmail))
	authRouter.Method(http.MethodPost, "/login", login.New(s.LogIn))
	authRouter.Method(
		http.MethodPost,
		"/forgot-password",
		sendpasswordresettoken.New(s.SendPasswordResetToken),
	)
	authRouter.Method(
		http.MethodPost,
		"/verify-reset-code",
		verifypasswordresettoken.New(s.VerifyPasswordResetToken),
	)
	authRouter.Method(http.MethodPost, "/reset-password", resetpassword.New(s.ResetPassword))

	profileRouter := chi.NewRouter()
	profileRouter.Use(auth.SetAccessTokenToContext)
	profileRouter.Method(http.MethodGet, "/me", me.New(s.GetUser))
	profileRouter.Method(http.MethodPut, "/password", changepassword.New(s.ChangePassword))

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.AccessLog(deps.Logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))
	router.Mount("/auth", authRouter)
	router.Mount("/profile", profileRouter)

	return router
}
