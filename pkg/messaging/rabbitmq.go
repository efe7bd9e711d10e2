package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"github.com/grigta/numbering/pkg/logger"
)

// Publisher sends domain events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	PublishEvent(ctx context.Context, eventType string, data interface{}) error
}

type Message struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Timestamp time.Time              `json:"timestamp"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

func NewMessage(source, msgType string, data interface{}) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Type:      msgType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// RabbitMQ publishes JSON messages to a single topic exchange, using the
// event type as routing key.
type RabbitMQ struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	url      string
	exchange string
	source   string
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewRabbitMQ(url, exchange, source string) (*RabbitMQ, error) {
	r := &RabbitMQ{
		url:      url,
		exchange: exchange,
		source:   source,
		stopCh:   make(chan struct{}),
	}

	if err := r.connect(); err != nil {
		return nil, err
	}

	logger.Info("Connected to RabbitMQ", logger.String("exchange", exchange))

	go r.monitorConnection()

	return r, nil
}

func (r *RabbitMQ) connect() error {
	conn, err := amqp.Dial(r.url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(r.exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to declare %s exchange: %w", r.exchange, err)
	}

	r.mu.Lock()
	r.conn = conn
	r.channel = ch
	r.mu.Unlock()

	return nil
}

// messageFor builds the message for an event, recording the request id of
// ctx in its metadata.
func messageFor(ctx context.Context, source, eventType string, data interface{}) *Message {
	msg := NewMessage(source, eventType, data)
	if id := logger.RequestIDFrom(ctx); id != "" {
		msg.Metadata = map[string]interface{}{"request_id": id}
	}
	return msg
}

func (r *RabbitMQ) PublishEvent(ctx context.Context, eventType string, data interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(messageFor(ctx, r.source, eventType, data))
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	headers := amqp.Table{}
	if id := logger.RequestIDFrom(ctx); id != "" {
		headers["request_id"] = id
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.channel.Publish(
		r.exchange,
		eventType,
		false,
		false,
		amqp.Publishing{
			Headers:      headers,
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
}

func (r *RabbitMQ) Close() error {
	r.stopOnce.Do(func() { close(r.stopCh) })

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.channel.Close(); err != nil {
		return fmt.Errorf("failed to close channel: %w", err)
	}
	if err := r.conn.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

func (r *RabbitMQ) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn == nil || r.conn.IsClosed()
}

func (r *RabbitMQ) monitorConnection() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			if !r.isClosed() {
				continue
			}
			logger.Warn("RabbitMQ connection lost, attempting to reconnect")
			for i := 0; i < 5; i++ {
				if err := r.connect(); err != nil {
					logger.Error("Failed to reconnect to RabbitMQ",
						logger.Field{Key: "attempt", Value: i + 1},
						logger.Err(err),
					)
					time.Sleep(time.Duration(i+1) * time.Second)
					continue
				}
				logger.Info("Reconnected to RabbitMQ")
				break
			}
		}
	}
}

// NopPublisher drops every event. It stands in when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishEvent(context.Context, string, interface{}) error {
	return nil
}
