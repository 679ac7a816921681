package activationnotice

import (
	"accounts/internal/core/domain/account"
	"accounts/internal/core/domain/common"
	e "accounts/internal/core/domain/errors"
	"accounts/internal/core/domain/logging"
	"accounts/internal/rabbitmq/schema"
	"context"

	"github.com/rabbitmq/amqp091-go"
)

type consumer interface {
	Consume(
		queue, consumer string,
		autoAck, exclusive, noLocal, noWait bool,
		args amqp091.Table,
	) (<-chan amqp091.Delivery, error)
}

// Consumer mails activation notices taken from the queue. A notice that
// could not be mailed is rejected without requeueing and lands in the
// queue's dead letter queue. Its account stays pending until the notice is
// replayed from there.
type Consumer struct {
	log     logging.Logger
	channel consumer
	queue   string
	sender  account.ActivationNoticeSender
}

func New(
	log logging.Logger,
	channel consumer,
	queue string,
	sender account.ActivationNoticeSender,
) *Consumer {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if channel == nil {
		panic(e.NewNilArgumentError("channel"))
	}
	if queue == "" {
		panic(e.NewInvalidArgumentError("queue", "must not be empty"))
	}
	if sender == nil {
		panic(e.NewNilArgumentError("sender"))
	}

	return &Consumer{log: log, channel: channel, queue: queue, sender: sender}
}

// Consume starts handling deliveries in a goroutine. The returned channel is
// closed once the deliveries channel is exhausted.
func (c *Consumer) Consume() (<-chan struct{}, error) {
	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		c.log.Error(context.Background(), "Could not start consuming.", logging.Entry("err", err))
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for delivery := range deliveries {
			c.handle(context.Background(), delivery)
		}
	}()
	return done, nil
}

func (c *Consumer) handle(ctx context.Context, delivery amqp091.Delivery) {
	notice := &schema.ActivationNotice{}
	if err := notice.Unmarshal(delivery.Body); err != nil {
		c.log.Error(
			ctx,
			"Could not unmarshal activation notice.",
			logging.Entry("err", err),
			logging.Entry("body", string(delivery.Body)),
		)
		c.reject(ctx, delivery)
		return
	}

	err := c.sender.SendActivationNotice(ctx, account.Account{
		ID:              account.ID(notice.AccountID),
		Username:        account.Username(notice.Username),
		Email:           common.NewEmail(notice.Email),
		Status:          account.Pending,
		ActivationToken: common.NewOptional(account.ActivationToken(notice.ActivationToken), notice.ActivationToken != ""),
	})
	if err != nil {
		c.log.Error(
			ctx,
			"Could not mail activation notice.",
			logging.Entry("accountId", notice.AccountID),
			logging.Entry("err", err),
		)
		c.reject(ctx, delivery)
		return
	}

	c.log.Info(ctx, "Activation notice has been mailed.", logging.Entry("accountId", notice.AccountID))
	if err := delivery.Ack(false); err != nil {
		c.log.Error(ctx, "Could not ACK AMQP message.", logging.Entry("err", err))
	}
}

func (c *Consumer) reject(ctx context.Context, delivery amqp091.Delivery) {
	if err := delivery.Nack(false, false); err != nil {
		c.log.Error(ctx, "Could not NACK AMQP message.", logging.Entry("err", err))
	}
}
