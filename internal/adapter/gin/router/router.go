package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gas-booking-service/internal/adapter/gin/handler"
	"gas-booking-service/internal/adapter/gin/middleware"
	"gas-booking-service/pkg/logger"
)

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	userHandler *handler.UserHandler,
	bookingHandler *handler.BookingHandler,
	serviceName string,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(ginzap.GinzapWithConfig(log, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/health", "/metrics"},
		Context: func(c *gin.Context) []zapcore.Field {
			return []zapcore.Field{zap.String("request_id", logger.GetRequestID(c.Request.Context()))}
		},
	}))
	router.Use(ginzap.RecoveryWithZap(log, true))
	router.Use(cors.Default())
	router.Use(middleware.Metrics())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": serviceName,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/register", userHandler.Register)
	router.POST("/login", userHandler.Login)

	bookings := router.Group("/gasBookingForm")
	{
		bookings.POST("", bookingHandler.Create)
		bookings.GET("", bookingHandler.List)
		bookings.GET("/:id", bookingHandler.Get)
		bookings.PUT("/:id", bookingHandler.Update)
		bookings.DELETE("/:id", bookingHandler.Delete)
	}

	return router
}
