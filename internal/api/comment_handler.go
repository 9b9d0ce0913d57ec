package api

import (
	"net/http"

	"github.com/Albion-ops/bytewave-hub/internal/models"
	"github.com/Albion-ops/bytewave-hub/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CommentHandler handles post comments
type CommentHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(services *service.Services, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		services: services,
		log:      log.With().Str("handler", "comment").Logger(),
	}
}

// ListComments handles GET /v1/posts/:slug/comments
func (h *CommentHandler) ListComments(c *gin.Context) {
	comments, err := h.services.Comment.List(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": comments})
}

// SubmitComment handles POST /v1/posts/:slug/comments
// Responds with the refreshed comment list, newest first.
func (h *CommentHandler) SubmitComment(c *gin.Context) {
	identity := identityFrom(c)
	if identity == nil {
		respondError(c, h.log, service.ErrAuthRequired)
		return
	}

	var req models.CommentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	comments, err := h.services.Comment.Submit(c.Request.Context(), identity, c.Param("slug"), req.Content)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": comments})
}
