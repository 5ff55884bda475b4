package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gas-booking-service/internal/domain/booking"
	"gas-booking-service/pkg/logger"
)

// recordingQueue captures enqueued messages and the context they came with.
type recordingQueue struct {
	err      error
	messages []Message
	ctxErr   error
}

func (q *recordingQueue) Enqueue(ctx context.Context, m Message) error {
	q.ctxErr = ctx.Err()
	if q.err != nil {
		return q.err
	}
	q.messages = append(q.messages, m)
	return nil
}

func (q *recordingQueue) Consume(context.Context, Handler) error { return nil }
func (q *recordingQueue) Close() error { return nil }

func TestDispatcher_Notify(t *testing.T) {
	q := &recordingQueue{}
	d := NewDispatcher(q, time.Second, zaptest.NewLogger(t))
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	d.now = func() time.Time { return fixed }

	ctx := logger.ContextWithRequestID(context.Background(), "req-42")
	d.Notify(ctx, booking.EventCancelled, sampleBooking())

	require.Len(t, q.messages, 1)
	m := q.messages[0]
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, booking.EventCancelled, m.Event)
	assert.Equal(t, "b1", m.BookingID)
	assert.Equal(t, "a@x.com", m.To)
	assert.Equal(t, "Gas Booking Cancelled", m.Subject)
	assert.Contains(t, m.HTML, "2024-01-01 at 10-11 has been cancelled")
	assert.Equal(t, "req-42", m.RequestID)
	assert.Equal(t, fixed, m.CreatedAt)
}

func TestDispatcher_IgnoresCallerCancellation(t *testing.T) {
	q := &recordingQueue{}
	d := NewDispatcher(q, time.Second, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Notify(ctx, booking.EventConfirmed, sampleBooking())

	assert.NoError(t, q.ctxErr)
	assert.Len(t, q.messages, 1)
}

func TestDispatcher_SwallowsQueueErrors(t *testing.T) {
	q := &recordingQueue{err: errors.New("redis unavailable")}
	d := NewDispatcher(q, time.Second, zaptest.NewLogger(t))

	assert.NotPanics(t, func() {
		d.Notify(context.Background(), booking.EventUpdated, sampleBooking())
	})
	assert.Empty(t, q.messages)
}

func TestDispatcher_FullMemoryQueue(t *testing.T) {
	q := NewMemoryQueue(1, zaptest.NewLogger(t))
	d := NewDispatcher(q, time.Second, zaptest.NewLogger(t))

	d.Notify(context.Background(), booking.EventConfirmed, sampleBooking())
	d.Notify(context.Background(), booking.EventUpdated, sampleBooking())

	assert.Equal(t, 1, q.Len())
}
