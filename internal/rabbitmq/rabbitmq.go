package rabbitmq

import (
	"context"
	"fmt"
	"notesauth/internal/core/domain/logging"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const reconnectDelay = 3 * time.Second

// Connection re-dials the broker whenever the underlying connection drops.
type Connection struct {
	conn *amqp.Connection
	lock sync.RWMutex
	log  logging.Logger
}

func Dial(url string, log logging.Logger) (*Connection, error) {
	if log == nil {
		return nil, fmt.Errorf("log argument must not be nil")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	connection := &Connection{conn: conn, log: log}
	go connection.reconnect(url)
	return connection, nil
}

func (c *Connection) reconnect(url string) {
	for {
		reason, ok := <-c.current().NotifyClose(make(chan *amqp.Error, 1))
		if !ok {
			c.log.Info(context.Background(), "RabbitMQ connection closed.")
			return
		}

		c.log.Warning(context.Background(), "RabbitMQ connection lost.", logging.Entry("reason", reason.Error()))
		for {
			time.Sleep(reconnectDelay)

			conn, err := amqp.Dial(url)
			if err == nil {
				c.lock.Lock()
				c.conn = conn
				c.lock.Unlock()
				c.log.Info(context.Background(), "RabbitMQ reconnect success.")
				break
			}
			c.log.Error(context.Background(), "RabbitMQ reconnect failed.", logging.Entry("err", err))
		}
	}
}

func (c *Connection) current() *amqp.Connection {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.conn
}

func (c *Connection) Close() error {
	return c.current().Close()
}

// Channel opens a channel that is recreated when the broker closes it.
func (c *Connection) Channel() (*Channel, error) {
	ch, err := c.current().Channel()
	if err != nil {
		return nil, err
	}

	channel := &Channel{ch: ch, log: c.log}
	go func() {
		for {
			reason, ok := <-channel.current().NotifyClose(make(chan *amqp.Error, 1))
			if !ok || channel.IsClosed() {
				channel.Close()
				return
			}

			c.log.Warning(context.Background(), "RabbitMQ channel closed.", logging.Entry("reason", reason.Error()))
			for {
				time.Sleep(reconnectDelay)

				ch, err := c.current().Channel()
				if err == nil {
					channel.lock.Lock()
					channel.ch = ch
					channel.lock.Unlock()
					c.log.Info(context.Background(), "RabbitMQ channel recreated.")
					break
				}
				c.log.Error(context.Background(), "RabbitMQ channel recreate failed.", logging.Entry("err", err))
			}
		}
	}()

	return channel, nil
}

type Channel struct {
	ch     *amqp.Channel
	lock   sync.RWMutex
	closed int32
	log    logging.Logger
}

func (ch *Channel) current() *amqp.Channel {
	ch.lock.RLock()
	defer ch.lock.RUnlock()
	return ch.ch
}

// IsClosed reports whether Close has been called.
func (ch *Channel) IsClosed() bool {
	return atomic.LoadInt32(&ch.closed) == 1
}

func (ch *Channel) Close() error {
	if !atomic.CompareAndSwapInt32(&ch.closed, 0, 1) {
		return amqp.ErrClosed
	}
	return ch.current().Close()
}

// DeclareQueue declares a durable queue, publishing to the default exchange with the queue
// name as routing key then reaches it.
func (ch *Channel) DeclareQueue(name string) error {
	_, err := ch.current().QueueDeclare(name, true, false, false, false, nil)
	return err
}

func (ch *Channel) PublishWithContext(
	ctx context.Context,
	exchange, key string,
	mandatory, immediate bool,
	msg amqp.Publishing,
) error {
	return ch.current().PublishWithContext(ctx, exchange, key, mandatory, immediate, msg)
}

// Consume keeps delivering across channel recreation until the channel is closed with Close.
func (ch *Channel) Consume(queue, consumer string) (<-chan amqp.Delivery, error) {
	if err := ch.current().Qos(1, 0, false); err != nil {
		return nil, err
	}
	deliveries := make(chan amqp.Delivery)

	go func() {
		defer close(deliveries)
		for {
			d, err := ch.current().Consume(queue, consumer, false, false, false, false, nil)
			if err != nil {
				if ch.IsClosed() {
					return
				}
				ch.log.Error(context.Background(), "Consume failed.", logging.Entry("err", err))
				time.Sleep(reconnectDelay)
				continue
			}

			for msg := range d {
				deliveries <- msg
			}

			// The closed flag may be set a little after the delivery channel ends.
			time.Sleep(reconnectDelay)

			if ch.IsClosed() {
				ch.log.Info(context.Background(), "Channel is closed, stop consuming.", logging.Entry("queue", queue))
				return
			}
		}
	}()

	return deliveries, nil
}
