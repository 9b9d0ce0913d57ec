package api

import (
	"net/http"

	"github.com/Albion-ops/bytewave-hub/internal/models"
	"github.com/Albion-ops/bytewave-hub/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AdminHandler handles the back-office endpoints. Role checks happen in
// middleware; post ownership is checked by the post service.
type AdminHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(services *service.Services, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		services: services,
		log:      log.With().Str("handler", "admin").Logger(),
	}
}

// Stats handles GET /v1/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.services.Stats.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListPosts handles GET /v1/admin/posts
func (h *AdminHandler) ListPosts(c *gin.Context) {
	posts, err := h.services.Post.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": posts})
}

// CreatePost handles POST /v1/admin/posts
func (h *AdminHandler) CreatePost(c *gin.Context) {
	var input models.PostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	post, err := h.services.Post.Create(c.Request.Context(), actorFrom(c), &input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// UpdatePost handles PUT /v1/admin/posts/:id
func (h *AdminHandler) UpdatePost(c *gin.Context) {
	var input models.PostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	post, err := h.services.Post.Update(c.Request.Context(), actorFrom(c), c.Param("id"), &input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost handles DELETE /v1/admin/posts/:id
func (h *AdminHandler) DeletePost(c *gin.Context) {
	if err := h.services.Post.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateCategory handles POST /v1/admin/categories
func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var input models.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	category, err := h.services.Category.Create(c.Request.Context(), &input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// DeleteCategory handles DELETE /v1/admin/categories/:id
func (h *AdminHandler) DeleteCategory(c *gin.Context) {
	if err := h.services.Category.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListUsers handles GET /v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.services.Role.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

// AssignRole handles PUT /v1/admin/users/:id/role
func (h *AdminHandler) AssignRole(c *gin.Context) {
	var req models.RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	userID := c.Param("id")
	if err := h.services.Role.AssignRole(c.Request.Context(), userID, req.Role); err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info().
		Str("user_id", userID).
		Str("role", req.Role).
		Str("assigned_by", actorFrom(c).UserID).
		Msg("Role changed")

	c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": req.Role})
}
