package passwordresettokensender

import (
	"context"
	"fmt"
	c "notesauth/internal/core/domain/common"
	e "notesauth/internal/core/domain/errors"
	"notesauth/internal/core/domain/logging"
	"notesauth/internal/core/domain/user"
	"notesauth/internal/rabbitmq/schema"
	"strconv"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

type channel interface {
	PublishWithContext(
		ctx context.Context,
		exchange, key string,
		mandatory, immediate bool,
		msg amqp091.Publishing,
	) error
}

// RabbitMQ queues reset codes for the mailer. For the API the publish is the delivery, so a
// publish failure is reported as a delivery failure.
type RabbitMQ struct {
	log     logging.Logger
	channel channel
	queue   string
	now     func() time.Time
}

func NewRabbitMQ(log logging.Logger, channel channel, queue string, now func() time.Time) *RabbitMQ {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if channel == nil {
		panic(e.NewNilArgumentError("channel"))
	}
	if queue == "" {
		panic("queue name must not be empty")
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &RabbitMQ{log: log, channel: channel, queue: queue, now: now}
}

func (s *RabbitMQ) SendPasswordResetToken(ctx context.Context, to c.Email, reset user.PasswordReset) error {
	ttl := reset.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("password reset token has already expired")
	}

	message := schema.PasswordResetTokenReady{
		Email:     string(to),
		Code:      string(reset.Token),
		ExpiresAt: reset.ExpiresAt,
	}
	body, err := message.Marshal()
	if err != nil {
		return fmt.Errorf("could not marshal password reset token message: %w", err)
	}

	err = s.channel.PublishWithContext(ctx, "", s.queue, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		// The broker drops the message once the code could not be used anyway.
		Expiration: strconv.FormatInt(ttl.Milliseconds(), 10),
		Body:       body,
	})
	if err != nil {
		return fmt.Errorf("could not publish password reset token message: %w", err)
	}
	s.log.Info(ctx, "AMQP message has been successfully published.", logging.Entry("queue", s.queue))
	return nil
}
