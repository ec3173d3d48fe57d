package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/job-portal-manager/internal/metrics"
	q "github.com/iliyamo/job-portal-manager/internal/queue"
)

// EventPublisher delivers domain events. Failures are reported to the
// caller, which logs and otherwise ignores them.
type EventPublisher interface {
	Publish(ctx context.Context, event q.PortalEvent) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, q.PortalEvent) error { return nil }

// AMQPPublisher publishes events to the portal.events queue. A connection is
// dialled per event; traffic is one event per user mutation.
type AMQPPublisher struct {
	URL string
}

// NewAMQPPublisher returns a publisher for the broker at url.
func NewAMQPPublisher(url string) *AMQPPublisher { return &AMQPPublisher{URL: url} }

// Publish marshals the event and publishes it as a persistent message.
func (p *AMQPPublisher) Publish(ctx context.Context, event q.PortalEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		q.PortalEventsQueue, // name
		true,                // durable
		false,               // autoDelete
		false,               // exclusive
		false,               // noWait
		nil,                 // args
	); err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Type:         event.Type,
		Body:         body,
	}

	return ch.PublishWithContext(ctx,
		"",                  // default exchange
		q.PortalEventsQueue, // routing key = queue name
		false,               // mandatory
		false,               // immediate
		pub,
	)
}

// publish sends event and logs, never returns, a failure.
func publish(ctx context.Context, p EventPublisher, log *slog.Logger, event q.PortalEvent) {
	if p == nil {
		return
	}
	if event.OccurredAt == "" {
		event.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	}
	if err := p.Publish(ctx, event); err != nil {
		log.Warn("publish event failed", "type", event.Type, "error", err)
		metrics.EventsPublished.WithLabelValues(event.Type, "error").Inc()
		return
	}
	metrics.EventsPublished.WithLabelValues(event.Type, "ok").Inc()
}
