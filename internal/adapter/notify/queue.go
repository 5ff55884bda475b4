package notify

import (
	"context"
	"errors"
)

// ErrQueueFull is returned by a bounded queue that cannot take more messages.
var ErrQueueFull = errors.New("notification queue full")

// ErrQueueClosed is returned when enqueueing after Close.
var ErrQueueClosed = errors.New("notification queue closed")

// ErrDeliveryInterrupted is returned by a Handler that stopped because its
// context was cancelled. The message was not given up on and backends put it
// back instead of dead-lettering it.
var ErrDeliveryInterrupted = errors.New("notification delivery interrupted")

// Handler processes one message. A non-nil error means the message was not
// delivered; backends with a dead-letter facility park it there.
type Handler func(ctx context.Context, m Message) error

// Queue decouples the request path from email delivery.
type Queue interface {
	// Enqueue must not wait for delivery.
	Enqueue(ctx context.Context, m Message) error
	// Consume blocks, passing messages to h one at a time, until ctx is
	// cancelled or the queue is closed.
	Consume(ctx context.Context, h Handler) error
	Close() error
}
