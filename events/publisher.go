package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	bk "github.com/hanksha/tbz-booking-console/booking"
	amqp "github.com/rabbitmq/amqp091-go"
)

const DefaultQueue = "booking.lifecycle"

type LifecycleEvent struct {
	ID         string    `json:"id"`
	BookingID  int64     `json:"bookingId"`
	Guest      string    `json:"guest"`
	Room       string    `json:"room"`
	Status     bk.Status `json:"status"`
	OccurredAt time.Time `json:"occurredAt"`
}

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends lifecycle events to a durable queue on the default
// exchange. One channel is shared and guarded by a mutex.
type Publisher struct {
	conn   *amqp.Connection
	ch     channel
	queue  string
	mu     sync.Mutex
	now    func() time.Time
	logger *slog.Logger
}

func Dial(url, queue string) (*Publisher, error) {
	if len(queue) == 0 {
		queue = DefaultQueue
	}

	conn, err := amqp.Dial(url)

	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()

	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %q: %w", queue, err)
	}

	p := newPublisher(ch, queue)
	p.conn = conn

	return p, nil
}

func newPublisher(ch channel, queue string) *Publisher {
	return &Publisher{
		ch:     ch,
		queue:  queue,
		now:    time.Now,
		logger: slog.Default().With("component", "events"),
	}
}

func (p *Publisher) Publish(ctx context.Context, event LifecycleEvent) error {
	body, err := json.Marshal(event)

	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Timestamp:    event.OccurredAt,
		Type:         string(event.Status),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Notify publishes the transition and logs a failure.
func (p *Publisher) Notify(ctx context.Context, bookingID int64, guestLabel, roomLabel string, status bk.Status) {
	event := LifecycleEvent{
		ID:         uuid.NewString(),
		BookingID:  bookingID,
		Guest:      guestLabel,
		Room:       roomLabel,
		Status:     status,
		OccurredAt: p.now().UTC(),
	}

	if err := p.Publish(ctx, event); err != nil {
		p.logger.Warn("failed to publish lifecycle event", "bookingId", bookingID, "status", status, "err", err)
	}
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.ch.Close()

	if p.conn != nil {
		if connErr := p.conn.Close(); err == nil {
			err = connErr
		}
	}

	return err
}
