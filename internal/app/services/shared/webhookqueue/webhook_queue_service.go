package webhookqueue

import (
	"context"
	"fmt"
	"sync"

	"screener-service/internal/app/models"
	"screener-service/internal/pkg/constvars"
	"screener-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const deadLetterSuffix = "_dlq"

// channel is the subset of *amqp.Channel the queue needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Get(queue string, autoAck bool) (amqp.Delivery, bool, error)
	Ack(tag uint64, multiple bool) error
	Nack(tag uint64, multiple, requeue bool) error
	Close() error
}

// Service keeps submissions in a durable RabbitMQ queue with a dead letter
// queue beside it.
type Service struct {
	ch        channel
	log       *zap.Logger
	queueName string
	dlqName   string
	confirms  <-chan amqp.Confirmation
	mu        sync.Mutex
}

// NewService opens a channel, declares the durable queues, enables publisher
// confirms and sets QoS.
func NewService(conn *amqp.Connection, log *zap.Logger, queueName string, prefetch int) (*Service, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	dlqName := DeadLetterQueueName(queueName)
	for _, name := range []string{queueName, dlqName} {
		_, err = ch.QueueDeclare(
			name,  // name
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		)
		if err != nil {
			_ = ch.Close()
			return nil, err
		}
	}

	if prefetch <= 0 {
		prefetch = 1
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		_ = ch.Close()
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		return nil, err
	}

	confirms := ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	return newService(ch, confirms, log, queueName), nil
}

func newService(ch channel, confirms <-chan amqp.Confirmation, log *zap.Logger, queueName string) *Service {
	return &Service{
		ch:        ch,
		log:       log,
		queueName: queueName,
		dlqName:   DeadLetterQueueName(queueName),
		confirms:  confirms,
	}
}

func DeadLetterQueueName(queueName string) string {
	return queueName + deadLetterSuffix
}

func (s *Service) QueueName() string {
	return s.queueName
}

// Publish puts a new submission at the tail of the queue and waits for the
// broker confirm.
func (s *Service) Publish(ctx context.Context, msg *models.SubmissionMessage) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.log.Info("WebhookQueue.Publish called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMessageIDKey, msg.ID),
		zap.String(constvars.LoggingFormTypeKey, msg.FormType),
	)
	return s.publishMessage(ctx, s.queueName, msg)
}

// Reenqueue publishes the (possibly modified) message to the queue tail.
func (s *Service) Reenqueue(ctx context.Context, msg *models.SubmissionMessage) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.log.Info("WebhookQueue.Reenqueue called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMessageIDKey, msg.ID),
		zap.Int(constvars.LoggingFailedCountKey, msg.FailedCount),
	)
	return s.publishMessage(ctx, s.queueName, msg)
}

// EnqueueToDeadQueue parks the message in the dead letter queue.
func (s *Service) EnqueueToDeadQueue(ctx context.Context, msg *models.SubmissionMessage) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.log.Info("WebhookQueue.EnqueueToDeadQueue called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMessageIDKey, msg.ID),
		zap.Int(constvars.LoggingFailedCountKey, msg.FailedCount),
	)
	return s.publishMessage(ctx, s.dlqName, msg)
}

// FetchN retrieves up to max messages with basic.get and no auto-ack.
// Undecodable payloads are moved to the dead letter queue.
func (s *Service) FetchN(ctx context.Context, max int) ([]models.QueuedSubmission, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.log.Info("WebhookQueue.FetchN called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingQueueNameKey, s.queueName),
	)

	if max <= 0 {
		max = 1
	}
	items := make([]models.QueuedSubmission, 0, max)
	for i := 0; i < max; i++ {
		d, ok, err := s.ch.Get(s.queueName, false)
		if err != nil {
			return items, exceptions.ErrRabbitMQFetchMessage(err, s.queueName)
		}
		if !ok {
			break
		}

		var payload models.SubmissionMessage
		if err := json.Unmarshal(d.Body, &payload); err != nil {
			s.log.Warn("WebhookQueue.FetchN poison message moved to dead letter queue",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
			if err := s.publishRaw(ctx, s.dlqName, d.Body); err == nil {
				_ = s.ch.Ack(d.DeliveryTag, false)
			}
			continue
		}
		items = append(items, models.QueuedSubmission{DeliveryTag: d.DeliveryTag, Message: payload})
	}

	s.log.Info("WebhookQueue.FetchN succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int("fetched_count", len(items)),
	)
	return items, nil
}

func (s *Service) Ack(ctx context.Context, deliveryTag uint64) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.log.Info("WebhookQueue.Ack called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Uint64("delivery_tag", deliveryTag),
	)
	return s.ch.Ack(deliveryTag, false)
}

// Nack hands a fetched delivery back to the broker, which requeues it.
func (s *Service) Nack(ctx context.Context, deliveryTag uint64) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.log.Info("WebhookQueue.Nack called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Uint64("delivery_tag", deliveryTag),
	)
	return s.ch.Nack(deliveryTag, false, true)
}

func (s *Service) Close() error {
	return s.ch.Close()
}

func (s *Service) publishMessage(ctx context.Context, queue string, msg *models.SubmissionMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}
	return s.publishRaw(ctx, queue, body)
}

func (s *Service) publishRaw(ctx context.Context, queue string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := amqp.Publishing{
		ContentType:  constvars.MIMEApplicationJSON,
		Body:         body,
		DeliveryMode: amqp.Persistent,
	}
	if err := s.ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		return exceptions.ErrRabbitMQPublishMessage(err, queue)
	}

	select {
	case confirmed := <-s.confirms:
		if !confirmed.Ack {
			return exceptions.ErrRabbitMQPublishMessage(fmt.Errorf("message not confirmed"), queue)
		}
	case <-ctx.Done():
		return exceptions.ErrRabbitMQPublishMessage(ctx.Err(), queue)
	}
	return nil
}
