package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client, mr
}

func runConsumer(t *testing.T, q Queue, h Handler) context.CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = q.Consume(ctx, h)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(3 * time.Second):
			t.Error("consumer did not stop")
		}
	})
	return cancel
}

func TestRedisQueue_FIFO(t *testing.T) {
	client, _ := setupTestRedis(t)
	q := NewRedisQueue(client, "notifications:test", zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, Message{ID: "1", To: "a@x.com", Subject: "s"}))
	require.NoError(t, q.Enqueue(ctx, Message{ID: "2", To: "b@x.com"}))

	got := make(chan Message, 2)
	runConsumer(t, q, func(_ context.Context, m Message) error {
		got <- m
		return nil
	})

	first := <-got
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "a@x.com", first.To)
	assert.Equal(t, "s", first.Subject)
	assert.Equal(t, "2", (<-got).ID)

	n, err := client.LLen(ctx, q.DeadKey()).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisQueue_FailedMessageIsBuried(t *testing.T) {
	client, _ := setupTestRedis(t)
	q := NewRedisQueue(client, "notifications:test", zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, Message{ID: "bad"}))
	runConsumer(t, q, func(context.Context, Message) error {
		return errors.New("smtp down")
	})

	assert.Eventually(t, func() bool {
		n, err := client.LLen(ctx, q.DeadKey()).Result()
		return err == nil && n == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRedisQueue_MalformedPayloadIsBuried(t *testing.T) {
	client, _ := setupTestRedis(t)
	q := NewRedisQueue(client, "notifications:test", zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, client.LPush(ctx, "notifications:test", "{not json").Err())
	called := make(chan struct{}, 1)
	runConsumer(t, q, func(context.Context, Message) error {
		called <- struct{}{}
		return nil
	})

	assert.Eventually(t, func() bool {
		n, err := client.LLen(ctx, q.DeadKey()).Result()
		return err == nil && n == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, called)
}

func TestRedisQueue_EnqueueFailsWhenRedisDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	q := NewRedisQueue(client, "notifications:test", zaptest.NewLogger(t))
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.Error(t, q.Enqueue(ctx, Message{ID: "1"}))
}
