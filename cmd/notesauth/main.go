package main

import (
	"context"
	"errors"
	"net/http"
	"notesauth/internal/app"
	"notesauth/internal/app/deps"
	"notesauth/internal/app/services"
	dl "notesauth/internal/core/domain/logging"
	purgeexpiredpasswordresets "notesauth/internal/core/services/purge_expired_password_resets"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

func main() {
	deps, shutdownDeps := deps.InitDeps()
	services := services.InitServices(deps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := app.InitHttpServer(deps, services)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error { return start(httpServer, deps) })
	group.Go(func() error { return purgeExpiredPasswordResets(ctx, deps, services) })
	group.Go(func() error {
		<-ctx.Done()
		return shutdown(httpServer, deps)
	})

	if err := group.Wait(); err != nil {
		deps.Logger.Error(context.Background(), "Server stopped with an error.", dl.Entry("err", err))
	}
	shutdownDeps()
}

func start(server *http.Server, deps *deps.Deps) error {
	deps.Logger.Info(
		context.Background(),
		"HTTP server has started.",
		dl.Entry("address", server.Addr),
		dl.Entry("isTestMode", deps.Config.IsTestMode),
		dl.Entry("dbDriver", deps.Config.DBDriver),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	deps.Logger.Info(context.Background(), "HTTP service is stopping gracefully.")
	return nil
}

func shutdown(server *http.Server, deps *deps.Deps) error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return err
	}
	deps.Logger.Info(ctx, "HTTP server has shutdowned.")
	return nil
}

func purgeExpiredPasswordResets(ctx context.Context, deps *deps.Deps, services *services.Services) error {
	ticker := time.NewTicker(deps.Config.PasswordResetPurgePeriod)
	defer ticker.Stop()

	deps.Logger.Info(
		ctx,
		"Starting periodic purge of expired password resets.",
		dl.Entry("period", deps.Config.PasswordResetPurgePeriod.String()),
	)
	for {
		select {
		case <-ctx.Done():
			deps.Logger.Info(context.Background(), "Stopping periodic purge of expired password resets.")
			return nil
		case <-ticker.C:
			_, err := services.PurgeExpiredPasswordResets.Run(ctx, purgeexpiredpasswordresets.Input{})
			if err != nil && !errors.Is(err, context.Canceled) {
				deps.Logger.Error(ctx, "Purge service returned an error.", dl.Entry("err", err))
			}
		}
	}
}
