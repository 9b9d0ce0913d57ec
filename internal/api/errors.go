package api

import (
	"errors"
	"net/http"

	"github.com/Albion-ops/bytewave-hub/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// respondError maps a service error onto a status code and writes the
// error body. Only unexpected failures are logged here; the request log
// already records the status.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	var fieldErrs *service.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   service.ErrValidation.Error(),
			"details": fieldErrs.Errors,
		})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAuthRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": service.ErrAuthRequired.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
		msg := "internal server error"
		if errors.Is(err, service.ErrLoadFailed) {
			msg = "failed to load data"
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
