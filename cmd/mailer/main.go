package main

import (
	"context"
	"notesauth/internal/app/consumers"
	"notesauth/internal/app/deps"
	dl "notesauth/internal/core/domain/logging"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	deps, shutdownDeps := deps.InitMailerDeps()
	defer shutdownDeps()

	runConsumers, shutdownConsumers := consumers.InitConsumers(deps)
	defer shutdownConsumers()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps.Logger.Info(ctx, "Mailer has started.", dl.Entry("queue", deps.Config.RabbitmqPasswordResetQueue))
	if err := runConsumers(ctx); err != nil {
		deps.Logger.Error(context.Background(), "Mailer stopped with an error.", dl.Entry("err", err))
		return
	}
	deps.Logger.Info(context.Background(), "Mailer has stopped.")
}
