package api

import (
	"encoding/json"
	"net/http"

	"github.com/Albion-ops/bytewave-hub/internal/listing"
	"github.com/Albion-ops/bytewave-hub/internal/render"
	"github.com/Albion-ops/bytewave-hub/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// PostHandler handles the public blog endpoints
type PostHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(services *service.Services, log zerolog.Logger) *PostHandler {
	return &PostHandler{
		services: services,
		log:      log.With().Str("handler", "post").Logger(),
	}
}

// ListPosts handles GET /v1/posts?q=...&category=...&page=...
func (h *PostHandler) ListPosts(c *gin.Context) {
	state := listing.ParseState(c.Request.URL.Query())

	page, err := h.services.Listing.ListPosts(c.Request.Context(), state)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetPost handles GET /v1/posts/:slug
// The body is tagged with an ETag; a matching If-None-Match gets 304.
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.services.Post.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	body, err := json.Marshal(post)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	etag := render.ETag(body)
	c.Header("ETag", etag)
	c.Header("Cache-Control", "no-cache")
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// RelatedPosts handles GET /v1/posts/:slug/related
func (h *PostHandler) RelatedPosts(c *gin.Context) {
	related, err := h.services.Post.Related(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": related})
}

// ListCategories handles GET /v1/categories
func (h *PostHandler) ListCategories(c *gin.Context) {
	categories, err := h.services.Category.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": categories})
}
