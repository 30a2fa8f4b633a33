package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Circuit breaker settings for publish failures.
const (
	breakerFailureThreshold = 5
	breakerOpenTimeout      = 30 * time.Second
)

// ErrCircuitOpen is returned by Publish when too many recent publishes failed
// and the breaker has not cooled down yet.
var ErrCircuitOpen = errors.New("amqp circuit breaker open")

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
	breaker      *circuitBreaker
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
		breaker:      newCircuitBreaker(breakerFailureThreshold, breakerOpenTimeout),
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Routing key matches the queue name on a direct exchange
	err = c.channel.QueueBind(c.queueName, c.queueName, c.exchangeName, false, nil)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// PublishDatasetIngested publishes a dataset ingestion event. Transient
// failures are retried with exponential backoff; repeated failures open the
// circuit breaker so uploads are not slowed down by a dead broker.
func (c *Client) PublishDatasetIngested(ctx context.Context, msg *DatasetIngestedMessage) error {
	if !c.breaker.allow() {
		return ErrCircuitOpen
	}

	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				c.breaker.recordFailure()
				return ctx.Err()
			case <-time.After(exponentialBackoff(attempt)):
			}
		}

		lastErr = c.channel.PublishWithContext(
			ctx,
			c.exchangeName, // exchange
			c.queueName,    // routing key
			false,          // mandatory
			false,          // immediate
			amqp091.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp091.Persistent,
				Timestamp:    time.Now(),
				Body:         body,
			},
		)
		if lastErr == nil {
			c.breaker.recordSuccess()
			slog.InfoContext(ctx, "Published dataset ingested event",
				"dataset_id", msg.DatasetID,
				"rows", msg.Rows,
				"exchange", c.exchangeName,
				"queue", c.queueName)
			return nil
		}
		if !isConnectionError(lastErr) {
			break
		}
	}

	c.breaker.recordFailure()
	return fmt.Errorf("publish message: %w", lastErr)
}

// ConsumeDatasetIngested consumes ingestion events until ctx is cancelled.
// Handler errors requeue the delivery; undecodable payloads are dropped.
func (c *Client) ConsumeDatasetIngested(ctx context.Context, handler func(*DatasetIngestedMessage) error) error {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack (we want manual ack)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming dataset events", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			msg, err := DatasetIngestedMessageFromJSON(delivery.Body)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to unmarshal message", "error", err)
				delivery.Nack(false, false) // reject and don't requeue
				continue
			}

			if err := handler(msg); err != nil {
				slog.ErrorContext(ctx, "Failed to handle message",
					"error", err,
					"dataset_id", msg.DatasetID)
				delivery.Nack(false, true) // reject and requeue
				continue
			}

			delivery.Ack(false)
			slog.DebugContext(ctx, "Processed dataset event", "dataset_id", msg.DatasetID)
		}
	}
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// exponentialBackoff returns the wait before retry number attempt: 1s, 2s,
// 4s, capped at 30s.
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		return time.Second
	}
	d := time.Second << (attempt - 1)
	if d > 30*time.Second {
		return 30 * time.Second
	}
	return d
}

// isConnectionError reports whether err looks like a broker connectivity
// problem worth retrying, as opposed to a protocol or payload error.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := err.Error()
	for _, s := range []string{"connection refused", "connection reset", "broken pipe", "i/o timeout", "EOF"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// circuitBreaker is a minimal failure counter with a cooldown. After
// threshold consecutive failures it rejects publishes until openTimeout has
// passed, then allows one probe through (half-open).
type circuitBreaker struct {
	mu          sync.Mutex
	threshold   int
	openTimeout time.Duration
	failures    int
	openedAt    time.Time
}

func newCircuitBreaker(threshold int, openTimeout time.Duration) *circuitBreaker {
	return &circuitBreaker{threshold: threshold, openTimeout: openTimeout}
}

func (b *circuitBreaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures < b.threshold {
		return true
	}
	// Half-open after the cooldown
	return time.Since(b.openedAt) >= b.openTimeout
}

func (b *circuitBreaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
}

func (b *circuitBreaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.failures == b.threshold {
		b.openedAt = time.Now()
	}
}
