package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"hiring-platform/domain"
)

const auditQueue = "audit_events"

// RabbitMQ carries audit events from the API to the audit writer.
type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *zap.Logger
}

func NewRabbitMQ(url string, logger *zap.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		auditQueue, // queue name
		true,       // durable
		false,      // delete when unused
		false,      // exclusive
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	logger.Info("connected to RabbitMQ", zap.String("queue", q.Name))
	return &RabbitMQ{conn: conn, channel: ch, queue: q, logger: logger}, nil
}

func (r *RabbitMQ) PublishAuditEvent(ctx context.Context, event domain.AuditEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.channel.PublishWithContext(
		ctx,
		"",           // exchange
		r.queue.Name, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID,
			Timestamp:    event.Timestamp,
			Body:         body,
		},
	)
}

// ConsumeAuditEvents hands every queued event to handler until the channel
// closes. Successfully handled messages are acked, the rest are dropped.
func (r *RabbitMQ) ConsumeAuditEvents(handler func(context.Context, domain.AuditEvent) error) error {
	msgs, err := r.channel.Consume(
		r.queue.Name,
		"",
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for d := range msgs {
			handleAuditDelivery(d, handler, r.logger)
		}
	}()
	return nil
}

func handleAuditDelivery(d amqp.Delivery, handler func(context.Context, domain.AuditEvent) error, logger *zap.Logger) {
	var event domain.AuditEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		logger.Error("invalid audit event format", zap.Error(err))
		_ = d.Nack(false, false)
		return
	}
	if err := handler(context.Background(), event); err != nil {
		logger.Error("failed to store audit event", zap.String("event_id", event.ID), zap.Error(err))
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func (r *RabbitMQ) Close() error {
	if err := r.channel.Close(); err != nil {
		r.conn.Close()
		return err
	}
	return r.conn.Close()
}

type auditPublisher interface {
	PublishAuditEvent(ctx context.Context, event domain.AuditEvent) error
}

// RabbitAuditSink queues audit events and writes them directly when the
// broker refuses them.
type RabbitAuditSink struct {
	publisher auditPublisher
	fallback  *DBAuditSink
	logger    *zap.Logger
}

func NewRabbitAuditSink(publisher auditPublisher, fallback *DBAuditSink, logger *zap.Logger) *RabbitAuditSink {
	return &RabbitAuditSink{publisher: publisher, fallback: fallback, logger: logger}
}

func (s *RabbitAuditSink) Record(ctx context.Context, event domain.AuditEvent) {
	if err := s.publisher.PublishAuditEvent(ctx, event); err != nil {
		s.logger.Warn("failed to queue audit event, writing directly",
			zap.String("event_id", event.ID),
			zap.Error(err))
		s.fallback.Record(ctx, event)
	}
}
