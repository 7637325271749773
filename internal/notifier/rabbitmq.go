// Package notifier delivers operator notifications about sync cycles to a
// message queue, throttled per error-category key so failures don't flood
// the recipients.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Config struct {
	URL        string
	Exchange   string
	RoutingKey string
	QueueName  string
	Throttle   time.Duration
}

type RabbitMQ struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
	throttle   time.Duration
	logger     *slog.Logger

	mu       sync.Mutex
	lastSent map[string]time.Time
}

func NewRabbitMQ(cfg Config, logger *slog.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		cfg.QueueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	err = ch.QueueBind(
		q.Name,
		cfg.RoutingKey,
		cfg.Exchange,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	logger.Info("connected to rabbitmq",
		"exchange", cfg.Exchange,
		"queue", cfg.QueueName,
		"routing_key", cfg.RoutingKey,
	)

	return &RabbitMQ{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		throttle:   cfg.Throttle,
		logger:     logger,
		lastSent:   make(map[string]time.Time),
	}, nil
}

// Notification is the wire message consumed by whatever delivers the alert
// (mail bridge, chat bot).
type Notification struct {
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
}

// Send publishes a notification unless one with the same throttle key went
// out within the throttle window.
func (r *RabbitMQ) Send(ctx context.Context, subject, body, key string) error {
	if !r.allow(key) {
		r.logger.Info("notification throttled", "subject", subject, "key", key)
		return nil
	}

	msg := Notification{
		Subject:   subject,
		Body:      body,
		Key:       key,
		Timestamp: time.Now().UTC(),
	}

	encoded, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	err = r.channel.PublishWithContext(
		ctx,
		r.exchange,
		r.routingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         encoded,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		// Don't mark the key sent on failure so the next attempt goes through.
		r.reset(key)
		return fmt.Errorf("publish notification: %w", err)
	}

	r.logger.Info("notification sent", "subject", subject, "key", key)
	return nil
}

func (r *RabbitMQ) allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if last, ok := r.lastSent[key]; ok && time.Since(last) < r.throttle {
		return false
	}
	r.lastSent[key] = time.Now()
	return true
}

func (r *RabbitMQ) reset(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lastSent, key)
}

func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
