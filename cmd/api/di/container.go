package di

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gas-booking-service/cmd/api/infrastructure"
	"gas-booking-service/internal/adapter/db/postgres"
	ginhandler "gas-booking-service/internal/adapter/gin/handler"
	"gas-booking-service/internal/adapter/gin/router"
	"gas-booking-service/internal/adapter/notify"
	"gas-booking-service/internal/config"
	"gas-booking-service/internal/usecase/booking"
	"gas-booking-service/internal/usecase/user"
	redisclient "gas-booking-service/pkg/redis"
	"gas-booking-service/pkg/security"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client
	Queue       notify.Queue
	Worker      *notify.Worker
	UserUC      user.Usecase
	BookingUC   booking.Usecase
	Router      *gin.Engine
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (_ *Container, err error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c := &Container{Config: cfg, Logger: l}
	defer func() {
		if err != nil {
			_ = c.Close()
		}
	}()

	c.DB, err = infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	c.Queue, c.RedisClient, err = infrastructure.NewQueue(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize notification queue: %w", err)
	}

	mailer, err := infrastructure.NewMailer(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}
	c.Worker = notify.NewWorker(c.Queue, mailer, infrastructure.NewWorkerConfig(cfg), l)

	dispatcher := notify.NewDispatcher(c.Queue, time.Duration(cfg.Notify.EnqueueTimeoutMS)*time.Millisecond, l)

	c.UserUC = user.New(postgres.NewUserRepoPG(c.DB, l), security.NewPasswordHasher(security.DefaultCost), l)
	c.BookingUC = booking.New(postgres.NewBookingRepoPG(c.DB, l), dispatcher, l)

	c.Router = router.SetupRouter(
		ginhandler.NewUserHandler(c.UserUC, l),
		ginhandler.NewBookingHandler(c.BookingUC, l),
		cfg.Logger.ServiceName,
		l,
	)

	return c, nil
}

// Close releases the queue, Redis and the database, in that order.
func (c *Container) Close() error {
	var errs []error

	if c.Queue != nil {
		if err := c.Queue.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close queue: %w", err))
		}
	}

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
