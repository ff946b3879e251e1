// Package queue mirrors ticket domain events onto a durable broker queue so
// downstream reporting and export consumers can follow the workflow without
// polling the ticket collection.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// QueueTicketEvents is the durable queue ticket events are mirrored to.
const QueueTicketEvents = "ticket-events"

// Publisher publishes serialized events.
type Publisher interface {
	Publish(ctx context.Context, queueName string, message []byte) error
	Close() error
}

// RabbitMQPublisher is the amqp-backed publisher.
type RabbitMQPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.RWMutex
}

// NewRabbitMQPublisher connects and declares the event queue.
func NewRabbitMQPublisher(url string) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := channel.QueueDeclare(
		QueueTicketEvents,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", QueueTicketEvents, err)
	}

	return &RabbitMQPublisher{conn: conn, channel: channel}, nil
}

// Publish sends one persistent JSON message.
func (p *RabbitMQPublisher) Publish(ctx context.Context, queueName string, message []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	err := p.channel.PublishWithContext(
		ctx,
		"",        // exchange
		queueName, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         message,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// Close releases the channel and connection.
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
