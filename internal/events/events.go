// Package events publishes coaching workflow events to RabbitMQ. Publishing
// is best effort: callers log failures and carry on.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Routing keys.
const (
	ClientApproved    = "client.approved"
	ClientRejected    = "client.rejected"
	ProgressSubmitted = "progress.submitted"
	ProgressReviewed  = "progress.reviewed"
)

// Event is the JSON body of every published message.
type Event struct {
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurredAt"`
	Data       map[string]any `json:"data"`
}

// New builds an event stamped with the current time.
func New(eventType string, data map[string]any) Event {
	return Event{Type: eventType, OccurredAt: time.Now().UTC(), Data: data}
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

// connection and channel are the parts of amqp091 the publisher drives.
type connection interface {
	Channel() (channel, error)
	IsClosed() bool
	Close() error
}

type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

type amqpConnection struct{ *amqp.Connection }

func (c amqpConnection) Channel() (channel, error) {
	ch, err := c.Connection.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func dialAMQP(url string) (connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return amqpConnection{conn}, nil
}

// AMQPPublisher publishes persistent JSON messages to a topic exchange,
// using the event type as routing key.
type AMQPPublisher struct {
	url      string
	exchange string
	log      *logrus.Logger
	dial     func(url string) (connection, error)

	mu   sync.Mutex
	conn connection
	ch   channel
}

// NewAMQPPublisher dials url and declares the durable topic exchange.
func NewAMQPPublisher(url, exchange string, log *logrus.Logger) (*AMQPPublisher, error) {
	p := &AMQPPublisher{url: url, exchange: exchange, log: log, dial: dialAMQP}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

// connect must be called with mu held or before the publisher is shared.
func (p *AMQPPublisher) connect() error {
	conn, err := p.dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq: dial failed: %w", err)
	}
	p.conn, p.ch = conn, nil
	if err := p.openChannel(); err != nil {
		_ = conn.Close()
		p.conn = nil
		return err
	}
	return nil
}

// openChannel opens a channel on the current connection and declares the
// exchange on it. Must be called with mu held.
func (p *AMQPPublisher) openChannel() error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq: channel open failed: %w", err)
	}
	if err := ch.ExchangeDeclare(
		p.exchange, // name
		"topic",    // kind
		true,       // durable
		false,      // autoDelete
		false,      // internal
		false,      // noWait
		nil,        // args
	); err != nil {
		_ = ch.Close()
		return fmt.Errorf("rabbitmq: exchange declare failed: %w", err)
	}
	p.ch = ch
	return nil
}

// Publish sends event. A lost connection is redialed and a channel closed by
// the broker is reopened before publishing.
func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		Type:         event.Type,
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.conn == nil || p.conn.IsClosed():
		if err := p.connect(); err != nil {
			return err
		}
	case p.ch == nil || p.ch.IsClosed():
		if p.log != nil {
			p.log.Warn("rabbitmq channel closed, reopening")
		}
		if err := p.openChannel(); err != nil {
			return err
		}
	}
	if err := p.ch.PublishWithContext(ctx, p.exchange, event.Type, false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq: publish failed: %w", err)
	}
	if p.log != nil {
		p.log.WithField("event", event.Type).Debug("event published")
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn.Close()
	}
	return nil
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Types returns the types of the recorded events in publish order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
