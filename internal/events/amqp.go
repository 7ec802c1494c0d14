package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/rabbitmq/amqp091-go"
	"github.com/vytor/memora/internal/logger"
)

const publishTimeout = 5 * time.Second

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

type dialFunc func() (channel, io.Closer, error)

// AMQPPublisher publishes review events to a RabbitMQ topic exchange. A
// failed publish drops the channel and redials on the next attempt.
type AMQPPublisher struct {
	exchange string
	attempts uint
	delay    time.Duration
	dial     dialFunc
	log      *logger.Logger

	mu   sync.Mutex
	ch   channel
	conn io.Closer
}

// NewAMQPPublisher connects to url and declares a durable topic exchange.
// The initial dial is retried up to attempts times.
func NewAMQPPublisher(ctx context.Context, url, exchange string, attempts uint) (*AMQPPublisher, error) {
	p := newPublisher(func() (channel, io.Closer, error) {
		return dialExchange(url, exchange)
	}, exchange, attempts, 500*time.Millisecond)

	err := retry.Do(
		func() error {
			_, err := p.channel()
			return err
		},
		retry.Context(ctx),
		retry.Attempts(p.attempts),
		retry.Delay(p.delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			p.log.Warn("amqp dial attempt %d failed: %v", n+1, err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	p.log.Info("connected to exchange %s", exchange)
	return p, nil
}

func newPublisher(dial dialFunc, exchange string, attempts uint, delay time.Duration) *AMQPPublisher {
	if attempts == 0 {
		attempts = 1
	}
	return &AMQPPublisher{
		exchange: exchange,
		attempts: attempts,
		delay:    delay,
		dial:     dial,
		log:      logger.Default().WithPrefix("amqp"),
	}
}

func dialExchange(url, exchange string) (channel, io.Closer, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return ch, conn, nil
}

func (p *AMQPPublisher) channel() (channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		return p.ch, nil
	}
	ch, conn, err := p.dial()
	if err != nil {
		return nil, err
	}
	p.ch, p.conn = ch, conn
	return ch, nil
}

func (p *AMQPPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
}

func (p *AMQPPublisher) closeLocked() error {
	var firstErr error
	if p.ch != nil {
		firstErr = p.ch.Close()
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.ch, p.conn = nil, nil
	return firstErr
}

// Publish sends event as persistent JSON under RoutingKeyReviewGraded.
func (p *AMQPPublisher) Publish(ctx context.Context, event ReviewEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return retry.Do(
		func() error {
			ch, err := p.channel()
			if err != nil {
				return err
			}
			pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
			defer cancel()
			err = ch.PublishWithContext(
				pubCtx,
				p.exchange,             // exchange
				RoutingKeyReviewGraded, // routing key
				false,                  // mandatory
				false,                  // immediate
				amqp091.Publishing{
					ContentType:  "application/json",
					DeliveryMode: amqp091.Persistent,
					Timestamp:    event.ReviewedAt,
					Body:         body,
				},
			)
			if err != nil {
				p.reset()
				return fmt.Errorf("failed to publish event: %w", err)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(p.attempts),
		retry.Delay(p.delay),
		retry.LastErrorOnly(true),
	)
}

// Close releases the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeLocked()
}
