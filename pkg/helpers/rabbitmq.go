package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrPublisherClosed is returned by PublishJSON after Close or a dropped connection.
var ErrPublisherClosed = errors.New("rabbitmq: publisher closed")

// DialQueue opens a channel and declares queue as durable and non-exclusive,
// so the API and the worker agree on its shape whichever starts first.
func DialQueue(url, queue string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		closeAll(conn)
		return nil, nil, fmt.Errorf("rabbitmq: open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		closeAll(ch, conn)
		return nil, nil, fmt.Errorf("rabbitmq: declare %q: %w", queue, err)
	}
	return conn, ch, nil
}

func closeAll(cs ...io.Closer) {
	for _, c := range cs {
		_ = c.Close()
	}
}

// RabbitPublisher sends JSON bodies to one queue via the default exchange.
// A channel is not safe for concurrent publishes, hence the mutex.
type RabbitPublisher struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    *amqp.Channel
	Queue string
}

func NewRabbitPublisher(url, queue string) (*RabbitPublisher, error) {
	conn, ch, err := DialQueue(url, queue)
	if err != nil {
		return nil, err
	}
	return &RabbitPublisher{conn: conn, ch: ch, Queue: queue}, nil
}

func (p *RabbitPublisher) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		closeAll(p.ch, p.conn)
		p.ch, p.conn = nil, nil
	}
}

// PublishJSON marshals body and publishes it as a persistent message.
func (p *RabbitPublisher) PublishJSON(ctx context.Context, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("rabbitmq: encode: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Body:         payload,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil || p.conn.IsClosed() {
		return ErrPublisherClosed
	}
	if err := p.ch.PublishWithContext(ctx, "", p.Queue, false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq: publish to %s: %w", p.Queue, err)
	}
	return nil
}
