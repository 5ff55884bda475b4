package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gas-booking-service/internal/domain/booking"
	"gas-booking-service/pkg/logger"
)

// Dispatcher renders booking events into emails and queues them. It is the
// booking usecase's Notifier.
type Dispatcher struct {
	queue          Queue
	log            *zap.Logger
	enqueueTimeout time.Duration
	now            func() time.Time
}

// NewDispatcher creates a Dispatcher writing to q. enqueueTimeout bounds the
// time a request can spend handing a message to the queue backend.
func NewDispatcher(q Queue, enqueueTimeout time.Duration, log *zap.Logger) *Dispatcher {
	if enqueueTimeout <= 0 {
		enqueueTimeout = 2 * time.Second
	}
	return &Dispatcher{queue: q, log: log, enqueueTimeout: enqueueTimeout, now: time.Now}
}

// Notify queues the email for event. Failures are logged and counted, never
// returned: the booking write has already been committed.
func (d *Dispatcher) Notify(ctx context.Context, event booking.Event, b *booking.Booking) {
	log := logger.WithContext(ctx, d.log).With(
		zap.String("event", string(event)),
		zap.String("booking_id", b.ExternalID),
	)

	subject, html, err := Render(event, b)
	if err != nil {
		log.Error("failed to render notification", zap.Error(err))
		notificationsTotal.WithLabelValues(string(event), resultDropped).Inc()
		return
	}

	msg := Message{
		ID:        uuid.NewString(),
		Event:     event,
		BookingID: b.ExternalID,
		To:        b.Email,
		Subject:   subject,
		HTML:      html,
		RequestID: logger.GetRequestID(ctx),
		CreatedAt: d.now().UTC(),
	}

	// a client disconnect must not cancel the enqueue
	enqueueCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.enqueueTimeout)
	defer cancel()

	if err := d.queue.Enqueue(enqueueCtx, msg); err != nil {
		log.Error("failed to queue notification", zap.String("message_id", msg.ID), zap.Error(err))
		notificationsTotal.WithLabelValues(string(event), resultDropped).Inc()
		return
	}
	log.Debug("notification queued", zap.String("message_id", msg.ID))
}
