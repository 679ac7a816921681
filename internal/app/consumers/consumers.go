package consumers

import (
	"accounts/internal/app/deps"
	dl "accounts/internal/core/domain/logging"
	activationnotice "accounts/internal/rabbitmq/consumers/activation_notice"
	"context"
)

func initActivationNoticeConsumer(deps *deps.Deps) func() {
	rabbitmqChannel, err := deps.Rabbitmq.Channel()
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ channel.", dl.Entry("err", err))
		panic(err)
	}

	queue := deps.Config.RabbitmqActivationNoticeQueue
	deadLetterQueue := deps.Config.RabbitmqActivationNoticeDeadLetterQueue
	if _, err = rabbitmqChannel.DeclareQueueWithDeadLetter(queue, deadLetterQueue); err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ queue.", dl.Entry("err", err))
		panic(err)
	}

	activationNoticeConsumer := activationnotice.New(
		deps.Logger,
		rabbitmqChannel,
		queue,
		deps.EmailSender,
	)
	done, err := activationNoticeConsumer.Consume()
	if err != nil {
		deps.Logger.Error(
			context.Background(),
			"Could not start RabbitMQ consuming.",
			dl.Entry("err", err),
			dl.Entry("queue", queue),
		)
		panic(err)
	}

	deps.Logger.Info(context.Background(), "Consumer has started.", dl.Entry("queue", queue))
	return func() {
		rabbitmqChannel.Close()
		<-done
	}
}

func InitConsumers(deps *deps.Deps) func() {
	shutdownActivationNoticeConsumer := initActivationNoticeConsumer(deps)

	return func() {
		shutdownActivationNoticeConsumer()
	}
}
