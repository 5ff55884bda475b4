package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisQueue keeps pending messages in a Redis list so they survive a
// restart of the service. Messages that still fail after the worker's
// retries are pushed to DeadKey for manual inspection.
type RedisQueue struct {
	rdb         *redis.Client
	key         string
	deadKey     string
	pollTimeout time.Duration
	log         *zap.Logger
}

// NewRedisQueue creates a queue on the list named key.
func NewRedisQueue(rdb *redis.Client, key string, log *zap.Logger) *RedisQueue {
	return &RedisQueue{
		rdb:         rdb,
		key:         key,
		deadKey:     key + ":dead",
		pollTimeout: time.Second,
		log:         log,
	}
}

// DeadKey is the list holding undeliverable messages.
func (q *RedisQueue) DeadKey() string {
	return q.deadKey
}

// Enqueue pushes m onto the list.
func (q *RedisQueue) Enqueue(ctx context.Context, m Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return nil
}

// Consume pops messages in FIFO order. BRPOP is bounded by pollTimeout so a
// cancelled ctx is noticed promptly.
func (q *RedisQueue) Consume(ctx context.Context, h Handler) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		res, err := q.rdb.BRPop(ctx, q.pollTimeout, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			q.log.Warn("redis queue pop failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(q.pollTimeout):
			}
			continue
		}

		// res is [key, value]
		var m Message
		if err := json.Unmarshal([]byte(res[1]), &m); err != nil {
			q.log.Error("dropping malformed notification", zap.Error(err))
			q.bury(ctx, res[1])
			continue
		}

		if err := h(ctx, m); err != nil {
			if errors.Is(err, ErrDeliveryInterrupted) {
				q.requeue(ctx, res[1])
				continue
			}
			q.bury(ctx, res[1])
		}
	}
}

// requeue puts raw back at the tail BRPOP reads from, so it is the next
// message handed out.
func (q *RedisQueue) requeue(ctx context.Context, raw string) {
	if err := q.rdb.RPush(context.WithoutCancel(ctx), q.key, raw).Err(); err != nil {
		q.log.Error("failed to return notification to queue", zap.String("key", q.key), zap.Error(err))
	}
}

func (q *RedisQueue) bury(ctx context.Context, raw string) {
	if err := q.rdb.LPush(context.WithoutCancel(ctx), q.deadKey, raw).Err(); err != nil {
		q.log.Error("failed to move notification to dead list", zap.String("key", q.deadKey), zap.Error(err))
	}
}

// Close is a no-op; the Redis client is owned by the caller.
func (q *RedisQueue) Close() error {
	return nil
}
