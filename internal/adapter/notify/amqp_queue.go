package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const defaultAMQPRetryDelay = 2 * time.Second

// AMQPQueue publishes notifications to a durable RabbitMQ queue. Rejected
// deliveries are dead-lettered to "<queue>.dlq". A lost connection is
// re-dialed on the next publish and by the consumer loop.
type AMQPQueue struct {
	url        string
	queue      string
	log        *zap.Logger
	dial       func(url string) (*amqp.Connection, error)
	retryDelay time.Duration

	mu     sync.Mutex // guards conn and pub; amqp channels are not safe for concurrent publishing
	conn   *amqp.Connection
	pub    *amqp.Channel
	closed bool
}

// NewAMQPQueue dials url and declares the work queue and its dead-letter queue.
func NewAMQPQueue(url, queue string, log *zap.Logger) (*AMQPQueue, error) {
	q := &AMQPQueue{
		url:        url,
		queue:      queue,
		log:        log,
		dial:       amqp.Dial,
		retryDelay: defaultAMQPRetryDelay,
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.connectLocked(); err != nil {
		return nil, err
	}

	log.Info("rabbitmq notification queue ready", zap.String("queue", queue), zap.String("dlq", q.deadQueue()))
	return q, nil
}

func (q *AMQPQueue) deadQueue() string {
	return q.queue + ".dlq"
}

// connectLocked (re)opens whatever part of the connection is gone and
// declares both queues. Declaring is idempotent.
func (q *AMQPQueue) connectLocked() error {
	if q.conn != nil && !q.conn.IsClosed() && q.pub != nil && !q.pub.IsClosed() {
		return nil
	}

	if q.conn == nil || q.conn.IsClosed() {
		conn, err := q.dial(q.url)
		if err != nil {
			return fmt.Errorf("dial rabbitmq: %w", err)
		}
		q.conn = conn
	}

	ch, err := q.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(q.deadQueue(), true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return fmt.Errorf("declare queue %s: %w", q.deadQueue(), err)
	}
	if _, err := ch.QueueDeclare(q.queue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": q.deadQueue(),
	}); err != nil {
		_ = ch.Close()
		return fmt.Errorf("declare queue %s: %w", q.queue, err)
	}

	q.pub = ch
	return nil
}

// Enqueue publishes m as a persistent message. A publish on a channel the
// broker closed is retried once on a fresh one.
func (q *AMQPQueue) Enqueue(ctx context.Context, m Message) error {
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	if err := q.connectLocked(); err != nil {
		return err
	}

	err = q.publishLocked(ctx, m, body)
	if errors.Is(err, amqp.ErrClosed) {
		q.log.Warn("rabbitmq publish channel closed, reconnecting", zap.String("message_id", m.ID))
		if err := q.connectLocked(); err != nil {
			return err
		}
		err = q.publishLocked(ctx, m, body)
	}
	return err
}

func (q *AMQPQueue) publishLocked(ctx context.Context, m Message, body []byte) error {
	return q.pub.PublishWithContext(ctx, "", q.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    m.ID,
		Timestamp:    m.CreatedAt,
		Type:         string(m.Event),
		Body:         body,
	})
}

// Consume acks delivered messages and nacks, without requeue, the ones the
// handler gives up on. Broker outages are retried every retryDelay until ctx
// is cancelled; they never end Consume.
func (q *AMQPQueue) Consume(ctx context.Context, h Handler) error {
	for {
		err := q.consumeOnce(ctx, h)
		if ctx.Err() != nil || errors.Is(err, ErrQueueClosed) {
			return nil
		}

		q.log.Warn("rabbitmq consumer interrupted, reconnecting",
			zap.Error(err),
			zap.Duration("retry_in", q.retryDelay),
		)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(q.retryDelay):
		}
	}
}

func (q *AMQPQueue) consumeOnce(ctx context.Context, h Handler) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	err := q.connectLocked()
	conn := q.conn
	q.mu.Unlock()
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open consumer channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := ch.ConsumeWithContext(ctx, q.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", q.queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("rabbitmq delivery channel closed")
			}
			q.handle(ctx, d, h)
		}
	}
}

// handle settles one delivery: ack on success, requeue when the handler was
// interrupted by shutdown, otherwise reject to the dead-letter queue.
func (q *AMQPQueue) handle(ctx context.Context, d amqp.Delivery, h Handler) {
	var m Message
	if err := json.Unmarshal(d.Body, &m); err != nil {
		q.log.Error("dropping malformed notification", zap.String("message_id", d.MessageId), zap.Error(err))
		_ = d.Nack(false, false)
		return
	}

	if err := h(ctx, m); err != nil {
		requeue := errors.Is(err, ErrDeliveryInterrupted)
		if nackErr := d.Nack(false, requeue); nackErr != nil {
			q.log.Warn("nack failed", zap.String("message_id", d.MessageId), zap.Error(nackErr))
		}
		return
	}
	if err := d.Ack(false); err != nil {
		q.log.Warn("ack failed", zap.String("message_id", d.MessageId), zap.Error(err))
	}
}

// Close closes the publishing channel and the connection.
func (q *AMQPQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	if q.pub != nil {
		_ = q.pub.Close()
	}
	if q.conn != nil && !q.conn.IsClosed() {
		return q.conn.Close()
	}
	return nil
}
