package consumers

import (
	"context"
	"notesauth/internal/app/deps"
	dl "notesauth/internal/core/domain/logging"
	passwordresettokenready "notesauth/internal/rabbitmq/consumers/password_reset_token_ready"
)

func initPasswordResetTokenReadyConsumer(deps *deps.Deps) (*passwordresettokenready.Consumer, func()) {
	rabbitmqChannel, err := deps.Rabbitmq.Channel()
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ channel.", dl.Entry("err", err))
		panic(err)
	}

	queue := deps.Config.RabbitmqPasswordResetQueue
	if err := rabbitmqChannel.DeclareQueue(queue); err != nil {
		deps.Logger.Error(
			context.Background(),
			"Could not create RabbitMQ queue.",
			dl.Entry("queue", queue),
			dl.Entry("err", err),
		)
		panic(err)
	}

	consumer := passwordresettokenready.New(
		deps.Logger,
		rabbitmqChannel,
		queue,
		deps.PasswordResetTokenSender,
		deps.Now,
	)
	return consumer, func() { rabbitmqChannel.Close() }
}

// InitConsumers returns a function running every consumer until ctx is done.
func InitConsumers(deps *deps.Deps) (func(ctx context.Context) error, func()) {
	passwordResetTokenReadyConsumer, shutdownPasswordResetTokenReadyConsumer := initPasswordResetTokenReadyConsumer(deps)

	return passwordResetTokenReadyConsumer.Run, func() {
		shutdownPasswordResetTokenReadyConsumer()
	}
}
