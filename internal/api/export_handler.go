package api

import (
	"github.com/Albion-ops/bytewave-hub/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ExportHandler handles export endpoints
type ExportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// StreamExport handles GET /v1/admin/export?resource=...&format=...
// Streams the export directly to the response
func (h *ExportHandler) StreamExport(c *gin.Context) {
	resource := c.Query("resource")
	format := c.DefaultQuery("format", service.FormatNDJSON)

	h.log.Info().
		Str("resource", resource).
		Str("format", format).
		Str("requested_by", actorFrom(c).UserID).
		Msg("Starting streaming export")

	err := h.services.Export.Stream(c.Request.Context(), c.Writer, resource, format)
	if err == nil {
		return
	}

	// Can't return error JSON after streaming has started
	if c.Writer.Written() {
		h.log.Error().Err(err).Str("resource", resource).Msg("Export failed mid-stream")
		return
	}
	respondError(c, h.log, err)
}
