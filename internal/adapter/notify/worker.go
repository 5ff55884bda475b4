package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	apperrors "gas-booking-service/pkg/errors"
	"gas-booking-service/pkg/logger"
)

// WorkerConfig bounds how hard the worker tries to deliver one message.
type WorkerConfig struct {
	MaxAttempts int           // total tries per message, at least 1
	SendTimeout time.Duration // deadline for a single Mailer.Send
	Backoff     time.Duration // wait before retry n is n*Backoff
}

// Worker drains a Queue and delivers each message through a Mailer.
type Worker struct {
	queue  Queue
	mailer Mailer
	cfg    WorkerConfig
	log    *zap.Logger
}

// NewWorker creates a Worker. Zero config values fall back to 3 attempts,
// a 10s send timeout and a 500ms backoff.
func NewWorker(q Queue, m Mailer, cfg WorkerConfig, log *zap.Logger) *Worker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 500 * time.Millisecond
	}
	return &Worker{queue: q, mailer: m, cfg: cfg, log: log}
}

// Run consumes until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("notification worker started",
		zap.Int("max_attempts", w.cfg.MaxAttempts),
		zap.Duration("send_timeout", w.cfg.SendTimeout),
	)
	defer w.log.Info("notification worker stopped")

	return w.queue.Consume(ctx, w.Deliver)
}

// Deliver sends m, retrying up to MaxAttempts. The returned error is a
// NotificationError once every attempt has failed, or wraps
// ErrDeliveryInterrupted when ctx is cancelled first.
func (w *Worker) Deliver(ctx context.Context, m Message) error {
	log := w.log.With(
		zap.String("message_id", m.ID),
		zap.String("event", string(m.Event)),
		zap.String("booking_id", m.BookingID),
	)
	if m.RequestID != "" {
		log = logger.WithContext(logger.ContextWithRequestID(ctx, m.RequestID), log)
	}

	var lastErr error
	for attempt := 1; attempt <= w.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			notificationsTotal.WithLabelValues(string(m.Event), resultRetried).Inc()
			select {
			case <-ctx.Done():
				return w.interrupted(ctx, log, attempt-1)
			case <-time.After(time.Duration(attempt-1) * w.cfg.Backoff):
			}
		}

		sendCtx, cancel := context.WithTimeout(ctx, w.cfg.SendTimeout)
		lastErr = w.mailer.Send(sendCtx, m)
		cancel()

		if lastErr == nil {
			notificationsTotal.WithLabelValues(string(m.Event), resultSent).Inc()
			log.Info("notification sent", zap.String("to", m.To), zap.Int("attempt", attempt))
			return nil
		}
		if ctx.Err() != nil {
			return w.interrupted(ctx, log, attempt)
		}
		log.Warn("notification attempt failed", zap.Int("attempt", attempt), zap.Error(lastErr))
	}

	return w.giveUp(log, m, w.cfg.MaxAttempts, lastErr)
}

// interrupted reports a delivery cut short by shutdown. It is not counted as
// a failure; the queue hands the message out again after restart.
func (w *Worker) interrupted(ctx context.Context, log *zap.Logger, attempts int) error {
	log.Info("notification delivery interrupted, returning it to the queue", zap.Int("attempts", attempts))
	return fmt.Errorf("%w: %w", ErrDeliveryInterrupted, ctx.Err())
}

func (w *Worker) giveUp(log *zap.Logger, m Message, attempts int, cause error) error {
	err := apperrors.NewNotificationError(string(m.Event), m.To, attempts, cause)
	notificationsTotal.WithLabelValues(string(m.Event), resultFailed).Inc()
	log.Error("notification undeliverable", zap.Error(err))
	return err
}
