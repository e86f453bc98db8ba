package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// IAlertPublisher lets the ingest pipeline publish without knowing about
// AMQP; tests swap in a fake.
type IAlertPublisher interface {
	PublishEvent(ctx context.Context, ev AlertEvent) error
	HealthCheck() PublisherHealthStatus
}

// NoopPublisher drops every event. Used when RabbitMQ is unreachable at
// startup and in tests: alerting stays best-effort, zone state is the truth.
type NoopPublisher struct{}

func (NoopPublisher) PublishEvent(context.Context, AlertEvent) error { return nil }

func (NoopPublisher) HealthCheck() PublisherHealthStatus {
	return PublisherHealthStatus{Queue: AlertQueue}
}

// amqpChannel is the slice of *amqp.Channel the publisher uses.
type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AlertPublisher publishes zone alert transitions to RabbitMQ for the
// external notification pipeline. PublishEvent is called from the broker
// handler goroutine and the recheck goroutine concurrently, so the metrics
// are atomics and the timestamp is guarded.
type AlertPublisher struct {
	conn *RabbitMQConnection
	ch   amqpChannel

	messagesPublished atomic.Int64
	messagesFailed    atomic.Int64

	mu              sync.Mutex
	lastPublishTime time.Time
}

func NewAlertPublisher(conn *RabbitMQConnection) *AlertPublisher {
	return &AlertPublisher{
		conn:            conn,
		ch:              conn.Channel,
		lastPublishTime: time.Now(),
	}
}

// PublishEvent publishes one alert event to the safety_alert_events queue.
func (p *AlertPublisher) PublishEvent(ctx context.Context, ev AlertEvent) error {
	// Ensure the queue exists
	_, err := p.ch.QueueDeclare(
		AlertQueue, // queue name
		true,       // durable
		false,      // delete when unused
		false,      // exclusive
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		p.messagesFailed.Add(1)
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		p.messagesFailed.Add(1)
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}

	err = p.ch.PublishWithContext(
		ctx,
		"",         // exchange
		AlertQueue, // routing key (queue name)
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.messagesFailed.Add(1)
		return fmt.Errorf("failed to publish alert event: %w", err)
	}

	p.messagesPublished.Add(1)
	p.mu.Lock()
	p.lastPublishTime = time.Now()
	p.mu.Unlock()

	slog.Info("Alert event published",
		"queue", AlertQueue,
		"zone", ev.ZoneName,
		"type", ev.EventType,
	)

	return nil
}

// HealthCheck returns the health status of the publisher
func (p *AlertPublisher) HealthCheck() PublisherHealthStatus {
	p.mu.Lock()
	last := p.lastPublishTime
	p.mu.Unlock()

	isHealthy := p.conn != nil && p.conn.Connection != nil && !p.conn.Connection.IsClosed()

	return PublisherHealthStatus{
		IsHealthy:         isHealthy,
		MessagesPublished: p.messagesPublished.Load(),
		MessagesFailed:    p.messagesFailed.Load(),
		LastPublishTime:   last,
		Queue:             AlertQueue,
	}
}

// PublisherHealthStatus represents the health status of the publisher
type PublisherHealthStatus struct {
	IsHealthy         bool      `json:"is_healthy"`
	MessagesPublished int64     `json:"messages_published"`
	MessagesFailed    int64     `json:"messages_failed"`
	LastPublishTime   time.Time `json:"last_publish_time"`
	Queue             string    `json:"queue"`
}
