package notify

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// MemoryQueue is a bounded in-process queue. Messages are lost on restart.
type MemoryQueue struct {
	mu     sync.RWMutex
	ch     chan Message
	closed bool
	log    *zap.Logger
}

// NewMemoryQueue creates a queue holding at most size messages.
func NewMemoryQueue(size int, log *zap.Logger) *MemoryQueue {
	if size <= 0 {
		size = 1
	}
	return &MemoryQueue{ch: make(chan Message, size), log: log}
}

// Enqueue adds m without blocking. It returns ErrQueueFull when the buffer
// is at capacity.
func (q *MemoryQueue) Enqueue(ctx context.Context, m Message) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.ch <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// Consume hands messages to h until ctx is done or the queue is closed and drained.
// Messages still buffered when ctx ends are lost with the process; the
// count is logged.
func (q *MemoryQueue) Consume(ctx context.Context, h Handler) error {
	for {
		if ctx.Err() != nil {
			q.logPending()
			return nil
		}
		select {
		case <-ctx.Done():
			q.logPending()
			return nil
		case m, ok := <-q.ch:
			if !ok {
				return nil
			}
			if err := h(ctx, m); errors.Is(err, ErrDeliveryInterrupted) {
				if err := q.Enqueue(context.WithoutCancel(ctx), m); err != nil {
					q.log.Warn("could not return interrupted notification to queue", zap.String("message_id", m.ID), zap.Error(err))
				}
			}
		}
	}
}

func (q *MemoryQueue) logPending() {
	if n := q.Len(); n > 0 {
		q.log.Warn("memory queue stopped with undelivered notifications", zap.Int("pending", n))
	}
}

// Len reports the number of buffered messages.
func (q *MemoryQueue) Len() int {
	return len(q.ch)
}

// Close stops accepting messages. Already buffered ones can still be consumed.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
	return nil
}
