package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "gas-booking-service/pkg/errors"
	"gas-booking-service/pkg/logger"
)

const msgInvalidBody = "Invalid request body"

// respondError writes err as a plain-text body. NotFoundError maps to
// notFoundStatus and every other failure to 400. Internal and untyped errors
// may carry driver details, so they are logged and replaced by fallback.
func respondError(c *gin.Context, log *zap.Logger, err error, notFoundStatus int, fallback string) {
	log = logger.WithContext(c.Request.Context(), log)

	status := http.StatusBadRequest
	if apperrors.IsNotFound(err) {
		status = notFoundStatus
	}

	if !apperrors.IsClientError(err) {
		log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Bool("internal", apperrors.IsInternal(err)),
			zap.Error(err),
		)
		c.String(status, fallback)
		return
	}

	msg := apperrors.ClientMessage(err, fallback)
	log.Info("request rejected", zap.String("path", c.FullPath()), zap.Int("status", status), zap.String("reason", msg))
	c.String(status, msg)
}
