package infrastructure

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gas-booking-service/internal/adapter/notify"
	"gas-booking-service/internal/config"
	redisclient "gas-booking-service/pkg/redis"
)

// NewRedisClient creates a new Redis client with configuration
func NewRedisClient(ctx context.Context, cfg *config.Config, l *zap.Logger) (*redisclient.Client, error) {
	rdb, err := redisclient.NewClient(ctx, redisclient.Config{
		Host:        cfg.Redis.Host,
		Port:        cfg.Redis.Port,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		MaxRetries:  cfg.Redis.MaxRetries,
		PoolSize:    cfg.Redis.PoolSize,
		MinIdleConn: cfg.Redis.MinIdleConn,
	}, l)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return rdb, nil
}

// NewQueue builds the notification queue selected by NOTIFY_QUEUE. The Redis
// client is returned so the caller can close it after the queue.
func NewQueue(ctx context.Context, cfg *config.Config, l *zap.Logger) (notify.Queue, *redisclient.Client, error) {
	switch cfg.Notify.Queue {
	case config.QueueMemory:
		return notify.NewMemoryQueue(cfg.Notify.QueueSize, l), nil, nil
	case config.QueueRedis:
		rdb, err := NewRedisClient(ctx, cfg, l)
		if err != nil {
			return nil, nil, err
		}
		return notify.NewRedisQueue(rdb.Client, cfg.Redis.QueueKey, l), rdb, nil
	case config.QueueAMQP:
		q, err := notify.NewAMQPQueue(cfg.AMQP.URL, cfg.AMQP.Queue, l)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		return q, nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported notification queue %q", cfg.Notify.Queue)
	}
}

// NewMailer returns an SMTP mailer, or a log mailer when SMTP_HOST is unset.
func NewMailer(cfg *config.Config, l *zap.Logger) (notify.Mailer, error) {
	if cfg.SMTP.Host == "" {
		l.Warn("SMTP_HOST not set, notifications will only be logged")
		return notify.NewLogMailer(l), nil
	}

	m, err := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		From:      cfg.SMTP.From,
		FromName:  cfg.SMTP.FromName,
		TLSPolicy: cfg.SMTP.TLSPolicy,
	})
	if err != nil {
		return nil, err
	}

	l.Info("SMTP mailer configured",
		zap.String("host", cfg.SMTP.Host),
		zap.Int("port", cfg.SMTP.Port),
		zap.String("tls_policy", cfg.SMTP.TLSPolicy),
	)
	return m, nil
}

// NewWorkerConfig converts the NOTIFY_* settings.
func NewWorkerConfig(cfg *config.Config) notify.WorkerConfig {
	return notify.WorkerConfig{
		MaxAttempts: cfg.Notify.MaxAttempts,
		SendTimeout: time.Duration(cfg.Notify.SendTimeoutSeconds) * time.Second,
		Backoff:     time.Duration(cfg.Notify.RetryBackoffMS) * time.Millisecond,
	}
}
