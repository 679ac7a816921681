package activationnotice

import (
	"accounts/internal/core/domain/account"
	e "accounts/internal/core/domain/errors"
	"accounts/internal/core/domain/logging"
	"accounts/internal/rabbitmq/schema"
	"context"
	"errors"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

type confirmPublisher interface {
	PublishAndConfirm(ctx context.Context, exchange, key string, msg amqp091.Publishing) error
}

// RabbitMQ hands activation notices over to the notice mailer through a
// durable queue. A notice counts as accepted once the broker confirms it.
type RabbitMQ struct {
	log            logging.Logger
	channel        confirmPublisher
	queue          string
	confirmTimeout time.Duration
}

func NewRabbitMQ(
	log logging.Logger,
	channel confirmPublisher,
	queue string,
	confirmTimeout time.Duration,
) *RabbitMQ {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if channel == nil {
		panic(e.NewNilArgumentError("channel"))
	}
	if queue == "" {
		panic(e.NewInvalidArgumentError("queue", "must not be empty"))
	}
	if confirmTimeout <= 0 {
		panic(e.NewInvalidArgumentError("confirmTimeout", "must be positive"))
	}
	return &RabbitMQ{log: log, channel: channel, queue: queue, confirmTimeout: confirmTimeout}
}

func (p *RabbitMQ) SendActivationNotice(ctx context.Context, a account.Account) error {
	if !a.ActivationToken.IsPresent {
		return errors.New("account activation token is not defined")
	}

	notice := schema.ActivationNotice{
		AccountID:       int64(a.ID),
		Username:        string(a.Username),
		Email:           string(a.Email),
		ActivationToken: string(a.ActivationToken.Value),
	}
	body, err := notice.Marshal()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.confirmTimeout)
	defer cancel()

	err = p.channel.PublishAndConfirm(ctx, "", p.queue, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Body:         body,
	})
	if err != nil {
		p.log.Error(
			ctx,
			"Activation notice has not been confirmed by RabbitMQ.",
			logging.Entry("queue", p.queue),
			logging.Entry("accountId", a.ID),
			logging.Entry("err", err),
		)
		return err
	}
	p.log.Info(
		ctx,
		"Activation notice has been confirmed by RabbitMQ.",
		logging.Entry("queue", p.queue),
		logging.Entry("accountId", a.ID),
	)
	return nil
}
