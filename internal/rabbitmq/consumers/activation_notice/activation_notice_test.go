package activationnotice

import (
	"accounts/internal/core/domain/account"
	"accounts/internal/core/domain/logging"
	"accounts/internal/rabbitmq/schema"
	"errors"
	"sync"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/suite"
)

const QUEUE = "activation-notice"

type fakeAcknowledger struct {
	Acked    []uint64
	Nacked   []uint64
	Requeued []uint64
	lock     sync.Mutex
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.Acked = append(a.Acked, tag)
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.Nacked = append(a.Nacked, tag)
	if requeue {
		a.Requeued = append(a.Requeued, tag)
	}
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

type fakeChannel struct {
	Deliveries  chan amqp091.Delivery
	Queue       string
	ReturnError error
}

func (c *fakeChannel) Consume(
	queue, consumer string,
	autoAck, exclusive, noLocal, noWait bool,
	args amqp091.Table,
) (<-chan amqp091.Delivery, error) {
	if c.ReturnError != nil {
		return nil, c.ReturnError
	}
	c.Queue = queue
	return c.Deliveries, nil
}

type testSuite struct {
	suite.Suite
	Logger       *logging.FakeLogger
	Channel      *fakeChannel
	Acknowledger *fakeAcknowledger
	Sender       *account.FakeActivationNoticeSender
	Consumer     *Consumer
}

func (s *testSuite) SetupTest() {
	s.Logger = logging.NewFakeLogger()
	s.Channel = &fakeChannel{Deliveries: make(chan amqp091.Delivery, 10)}
	s.Acknowledger = &fakeAcknowledger{}
	s.Sender = account.NewFakeActivationNoticeSender()
	s.Consumer = New(s.Logger, s.Channel, QUEUE, s.Sender)
}

func TestActivationNoticeConsumer(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) delivery(tag uint64, body []byte) amqp091.Delivery {
	return amqp091.Delivery{Acknowledger: s.Acknowledger, DeliveryTag: tag, Body: body}
}

func (s *testSuite) notice(id int64) []byte {
	n := schema.ActivationNotice{
		AccountID:       id,
		Username:        "user1",
		Email:           "User1@Mail.com",
		ActivationToken: "token",
	}
	body, err := n.Marshal()
	s.Require().Nil(err)
	return body
}

func (s *testSuite) consumeAll(deliveries ...amqp091.Delivery) {
	done, err := s.Consumer.Consume()
	s.Require().Nil(err)
	for _, d := range deliveries {
		s.Channel.Deliveries <- d
	}
	close(s.Channel.Deliveries)
	<-done
}

func (s *testSuite) TestNoticeMailedAndAcked() {
	s.consumeAll(s.delivery(1, s.notice(42)))

	assert := s.Require()
	assert.Equal(QUEUE, s.Channel.Queue)
	assert.Equal(1, s.Sender.SentCount())
	sent := s.Sender.LastSentTo()
	assert.Equal(account.ID(42), sent.ID)
	assert.Equal("user1@mail.com", string(sent.Email))
	assert.Equal(account.ActivationToken("token"), sent.ActivationToken.Value)
	assert.Equal([]uint64{1}, s.Acknowledger.Acked)
	assert.Empty(s.Acknowledger.Nacked)
}

func (s *testSuite) TestMalformedNoticeRejected() {
	s.consumeAll(s.delivery(1, []byte("{not json")))

	assert := s.Require()
	assert.Equal(0, s.Sender.SentCount())
	assert.Equal([]uint64{1}, s.Acknowledger.Nacked)
}

func (s *testSuite) TestMailingFailureRejected() {
	s.Sender.ReturnError = true

	s.consumeAll(s.delivery(1, s.notice(1)), s.delivery(2, s.notice(2)))

	assert := s.Require()
	assert.Empty(s.Acknowledger.Acked)
	assert.Equal([]uint64{1, 2}, s.Acknowledger.Nacked)
	assert.Empty(s.Acknowledger.Requeued)
}

func (s *testSuite) TestConsumeError() {
	s.Channel.ReturnError = errors.New("channel closed")

	_, err := s.Consumer.Consume()

	s.NotNil(err)
}
