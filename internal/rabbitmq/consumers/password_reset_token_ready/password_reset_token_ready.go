package passwordresettokenready

import (
	"context"
	"notesauth/internal/core/domain/common"
	e "notesauth/internal/core/domain/errors"
	"notesauth/internal/core/domain/logging"
	"notesauth/internal/core/domain/user"
	"notesauth/internal/rabbitmq/schema"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

type channel interface {
	Consume(queue, consumer string) (<-chan amqp091.Delivery, error)
}

// Consumer delivers queued reset codes with sender.
type Consumer struct {
	log     logging.Logger
	channel channel
	queue   string
	sender  user.PasswordResetTokenSender
	now     func() time.Time
}

func New(
	log logging.Logger,
	channel channel,
	queue string,
	sender user.PasswordResetTokenSender,
	now func() time.Time,
) *Consumer {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if channel == nil {
		panic(e.NewNilArgumentError("channel"))
	}
	if queue == "" {
		panic("queue name must not be empty")
	}
	if sender == nil {
		panic(e.NewNilArgumentError("sender"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &Consumer{log: log, channel: channel, queue: queue, sender: sender, now: now}
}

// Run consumes until ctx is done or the channel is closed.
func (c *Consumer) Run(ctx context.Context) error {
	deliveries, err := c.channel.Consume(c.queue, "")
	if err != nil {
		c.log.Error(ctx, "Could not start consuming.", logging.Entry("err", err))
		return err
	}
	c.log.Info(ctx, "Consumer has started.", logging.Entry("queue", c.queue))

	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return nil
			}
			c.handle(ctx, delivery)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, delivery amqp091.Delivery) {
	message := &schema.PasswordResetTokenReady{}
	if err := message.Unmarshal(delivery.Body); err != nil {
		c.log.Error(ctx, "Could not unmarshal password reset token message.", logging.Entry("err", err))
		c.ack(ctx, delivery)
		return
	}

	reset := user.PasswordReset{
		Token:     user.PasswordResetToken(message.Code),
		ExpiresAt: message.ExpiresAt,
	}
	if reset.IsExpired(c.now()) {
		c.log.Info(ctx, "Skip expired password reset token.", logging.Entry("expiresAt", reset.ExpiresAt))
		c.ack(ctx, delivery)
		return
	}

	err := c.sender.SendPasswordResetToken(ctx, common.NewEmail(message.Email), reset)
	if err == nil {
		c.log.Info(ctx, "Password reset token has been sent.", logging.Entry("expiresAt", reset.ExpiresAt))
		c.ack(ctx, delivery)
		return
	}

	// Retry once, a message that fails again is dropped.
	requeue := !delivery.Redelivered
	c.log.Error(
		ctx,
		"Could not send password reset token.",
		logging.Entry("err", err),
		logging.Entry("requeue", requeue),
	)
	if err := delivery.Nack(false, requeue); err != nil {
		c.log.Error(ctx, "Could not NACK AMQP message.", logging.Entry("err", err))
	}
}

func (c *Consumer) ack(ctx context.Context, delivery amqp091.Delivery) {
	if err := delivery.Ack(false); err != nil {
		c.log.Error(ctx, "Could not ACK AMQP message.", logging.Entry("err", err))
	}
}
