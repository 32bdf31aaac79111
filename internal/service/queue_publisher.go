// Package queue_publisher provides functions to publish domain events to
// RabbitMQ.  Errors are logged and returned so callers can ignore broker
// failures without interrupting the main request flow.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/padelhq/club-reservation/internal/queue"
)

// PublishScheduleChanged publishes a ScheduleChangedEvent to the
// schedule.changed queue.
func PublishScheduleChanged(ctx context.Context, event q.ScheduleChangedEvent) error {
	return publish(ctx, q.ScheduleQueueName, event)
}

// PublishRegistrationChanged publishes a RegistrationChangedEvent to the
// registration.changed queue.
func PublishRegistrationChanged(ctx context.Context, event q.RegistrationChangedEvent) error {
	return publish(ctx, q.RegistrationQueueName, event)
}

// publish opens a short-lived connection, declares the durable queue
// (idempotent) and publishes one persistent JSON message to it.
func publish(ctx context.Context, queueName string, event interface{}) error {
	conn, err := amqp.Dial(q.BrokerURL())
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
