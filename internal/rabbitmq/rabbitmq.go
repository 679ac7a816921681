package rabbitmq

import (
	"accounts/internal/core/domain/logging"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const delay = 3 // reconnect after delay seconds

var ErrNotAcknowledged = errors.New("message was not acknowledged by the broker")

// Connection amqp.Connection wrapper
type Connection struct {
	*amqp.Connection
	log  logging.Logger
	lock sync.RWMutex
}

func (c *Connection) connection() *amqp.Connection {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.Connection
}

// Channel wrap amqp.Connection.Channel, get a auto reconnect channel
func (c *Connection) Channel() (*Channel, error) {
	return c.channel(false)
}

// ConfirmChannel returns an auto reconnect channel in publisher confirm mode.
// Confirm mode is enabled again on every reconnect.
func (c *Connection) ConfirmChannel() (*Channel, error) {
	return c.channel(true)
}

func (c *Connection) channel(confirm bool) (*Channel, error) {
	ch, err := c.open(confirm)
	if err != nil {
		return nil, err
	}

	channel := &Channel{
		channel: ch,
		confirm: confirm,
		log:     c.log,
	}

	go func() {
		for {
			reason, ok := <-channel.current().NotifyClose(make(chan *amqp.Error, 1))
			// exit this goroutine if closed by developer
			if !ok || channel.IsClosed() {
				channel.Close() // close again, ensure closed flag set when connection closed
				break
			}

			c.log.Warning(context.Background(), "RabbitMQ channel closed.", logging.Entry("reason", *reason))
			for {
				time.Sleep(delay * time.Second)

				ch, err := c.open(confirm)
				if err == nil {
					c.log.Info(context.Background(), "Channel recreate success.")
					channel.replace(ch)
					break
				}

				c.log.Error(context.Background(), "Channel recreate failed.", logging.Entry("err", err))
			}
		}
	}()

	return channel, nil
}

func (c *Connection) open(confirm bool) (*amqp.Channel, error) {
	ch, err := c.connection().Channel()
	if err != nil {
		return nil, err
	}
	if confirm {
		if err := ch.Confirm(false); err != nil {
			ch.Close()
			return nil, fmt.Errorf("could not put channel into confirm mode: %w", err)
		}
	}
	return ch, nil
}

func (c *Connection) Close() error {
	return c.connection().Close()
}

func Dial(url string, log logging.Logger) (*Connection, error) {
	if log == nil {
		return nil, fmt.Errorf("log argument must not be nil")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	connection := &Connection{
		Connection: conn,
		log:        log,
	}

	go func() {
		for {
			reason, ok := <-connection.connection().NotifyClose(make(chan *amqp.Error, 1))
			if !ok {
				log.Info(context.Background(), "RabbitMQ connection closed.")
				break
			}

			log.Warning(context.Background(), "RabbitMQ connection closed.", logging.Entry("reason", *reason))
			for {
				time.Sleep(delay * time.Second)

				conn, err := amqp.Dial(url)
				if err == nil {
					connection.lock.Lock()
					connection.Connection = conn
					connection.lock.Unlock()
					log.Info(context.Background(), "RabbitMQ reconnect success.")
					break
				}
				log.Error(context.Background(), "RabbitMQ reconnect failed.", logging.Entry("err", err))
			}
		}
	}()

	return connection, nil
}

// Channel amqp.Channel wapper
type Channel struct {
	channel *amqp.Channel
	confirm bool
	closed  int32
	log     logging.Logger
	lock    sync.RWMutex
}

func (ch *Channel) current() *amqp.Channel {
	ch.lock.RLock()
	defer ch.lock.RUnlock()
	return ch.channel
}

func (ch *Channel) replace(c *amqp.Channel) {
	ch.lock.Lock()
	defer ch.lock.Unlock()
	ch.channel = c
}

// IsClosed indicate closed by developer
func (ch *Channel) IsClosed() bool {
	return (atomic.LoadInt32(&ch.closed) == 1)
}

// Close ensure closed flag set
func (ch *Channel) Close() error {
	if ch.IsClosed() {
		return amqp.ErrClosed
	}

	atomic.StoreInt32(&ch.closed, 1)

	return ch.current().Close()
}

func (ch *Channel) QueueDeclare(name string, durable bool, args amqp.Table) (amqp.Queue, error) {
	return ch.current().QueueDeclare(name, durable, false, false, false, args)
}

// DeadLetterQueueArgs routes rejected messages through the default exchange
// to deadLetterQueue.
func DeadLetterQueueArgs(deadLetterQueue string) amqp.Table {
	return amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": deadLetterQueue,
	}
}

// DeclareQueueWithDeadLetter declares deadLetterQueue and a durable queue
// whose rejected messages are moved there. Publisher and consumer must
// declare the queue the same way, otherwise the broker refuses the second
// declaration.
func (ch *Channel) DeclareQueueWithDeadLetter(name, deadLetterQueue string) (amqp.Queue, error) {
	if _, err := ch.QueueDeclare(deadLetterQueue, true, nil); err != nil {
		return amqp.Queue{}, fmt.Errorf("could not declare dead letter queue %q: %w", deadLetterQueue, err)
	}
	return ch.QueueDeclare(name, true, DeadLetterQueueArgs(deadLetterQueue))
}

// PublishAndConfirm publishes msg and blocks until the broker acks or nacks
// it, or ctx is done. Works only for channels made by ConfirmChannel.
func (ch *Channel) PublishAndConfirm(ctx context.Context, exchange, key string, msg amqp.Publishing) error {
	if !ch.confirm {
		return errors.New("channel is not in confirm mode")
	}
	confirmation, err := ch.current().PublishWithDeferredConfirmWithContext(ctx, exchange, key, false, false, msg)
	if err != nil {
		return err
	}
	if confirmation == nil {
		return errors.New("channel did not return a deferred confirmation")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-confirmation.Done():
	}
	if !confirmation.Acked() {
		return ErrNotAcknowledged
	}
	return nil
}

// Consume wrap amqp.Channel.Consume, the returned delivery will end only when channel closed by developer
func (ch *Channel) Consume(
	queue, consumer string,
	autoAck, exclusive, noLocal, noWait bool,
	args amqp.Table,
) (<-chan amqp.Delivery, error) {
	deliveries := make(chan amqp.Delivery)

	go func() {
		for {
			d, err := ch.current().Consume(queue, consumer, autoAck, exclusive, noLocal, noWait, args)
			if err != nil {
				ch.log.Error(context.Background(), "Consume failed.", logging.Entry("err", err))
				time.Sleep(delay * time.Second)
				continue
			}

			for msg := range d {
				deliveries <- msg
			}

			// sleep before IsClose call. closed flag may not set before sleep.
			time.Sleep(delay * time.Second)

			if ch.IsClosed() {
				ch.log.Info(context.Background(), "Channel is closed, stop consuming.", logging.Entry("queue", queue))
				close(deliveries)
				break
			}
		}
	}()

	return deliveries, nil
}
