package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	bk "github.com/hanksha/tbz-booking-console/booking"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	published []published
	err       error
	closed    bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestNotify(t *testing.T) {
	ch := &fakeChannel{}
	publisher := newPublisher(ch, DefaultQueue)
	publisher.now = func() time.Time { return time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC) }

	publisher.Notify(context.Background(), 10, "Alice", "R-101", bk.StatusApproved)

	require.Len(t, ch.published, 1)
	got := ch.published[0]
	assert.Equal(t, "", got.exchange)
	assert.Equal(t, "booking.lifecycle", got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, "APPROVED", got.msg.Type)

	var event LifecycleEvent
	require.NoError(t, json.Unmarshal(got.msg.Body, &event))
	assert.Equal(t, int64(10), event.BookingID)
	assert.Equal(t, "Alice", event.Guest)
	assert.Equal(t, "R-101", event.Room)
	assert.Equal(t, bk.StatusApproved, event.Status)
	assert.Equal(t, got.msg.MessageId, event.ID)
	assert.NotEmpty(t, event.ID)
}

func TestPublishFailure(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	publisher := newPublisher(ch, "q")

	err := publisher.Publish(context.Background(), LifecycleEvent{BookingID: 1})
	require.Error(t, err)

	assert.NotPanics(t, func() {
		publisher.Notify(context.Background(), 1, "a", "b", bk.StatusRejected)
	})

	require.NoError(t, publisher.Close())
	assert.True(t, ch.closed)
}
