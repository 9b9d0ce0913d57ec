package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/Albion-ops/bytewave-hub/internal/auth"
	"github.com/Albion-ops/bytewave-hub/internal/config"
	"github.com/Albion-ops/bytewave-hub/internal/models"
	"github.com/Albion-ops/bytewave-hub/internal/service"
	"github.com/Albion-ops/bytewave-hub/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HealthChecker reports store reachability and pool statistics
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
	Stats() sql.DBStats
}

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, verifier *auth.Verifier, health HealthChecker, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware(cfg.Server.AllowedOrigins))

	// Handlers
	postHandler := NewPostHandler(services, log)
	commentHandler := NewCommentHandler(services, log)
	adminHandler := NewAdminHandler(services, log)
	exportHandler := NewExportHandler(services, log)

	// Health check
	router.GET("/health", healthCheck(health))
	router.GET("/metrics", metricsHandler(services, health))

	timeout := timeoutMiddleware(cfg.Server.RequestTimeout)

	// API v1
	v1 := router.Group("/v1", authenticate(verifier))
	{
		public := v1.Group("", timeout)
		public.GET("/categories", postHandler.ListCategories)

		posts := public.Group("/posts")
		{
			posts.GET("", postHandler.ListPosts)
			posts.GET("/:slug", postHandler.GetPost)
			posts.GET("/:slug/related", postHandler.RelatedPosts)
			posts.GET("/:slug/comments", commentHandler.ListComments)
			posts.POST("/:slug/comments", commentHandler.SubmitComment)
		}

		// Authors manage their own posts, admins manage all of them
		editorial := v1.Group("/admin/posts", timeout, requireRole(services.Role, log, models.RoleAdmin, models.RoleAuthor))
		{
			editorial.GET("", adminHandler.ListPosts)
			editorial.POST("", adminHandler.CreatePost)
			editorial.PUT("/:id", adminHandler.UpdatePost)
			editorial.DELETE("/:id", adminHandler.DeletePost)
		}

		admin := v1.Group("/admin", requireRole(services.Role, log, models.RoleAdmin))
		{
			// Streaming exports run past the request timeout
			admin.GET("/export", exportHandler.StreamExport)

			bounded := admin.Group("", timeout)
			bounded.GET("/stats", adminHandler.Stats)
			bounded.POST("/categories", adminHandler.CreateCategory)
			bounded.DELETE("/categories/:id", adminHandler.DeleteCategory)
			bounded.GET("/users", adminHandler.ListUsers)
			bounded.PUT("/users/:id/role", adminHandler.AssignRole)
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(health HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if health != nil {
			ctx, cancel := contextWithTimeout(c, 2*time.Second)
			defer cancel()
			if err := health.HealthCheck(ctx); err != nil {
				status, code = "unhealthy", http.StatusServiceUnavailable
			}
		}

		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   logger.ServiceName,
		})
	}
}

// metricsHandler returns row counts and connection pool usage
func metricsHandler(services *service.Services, health HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := gin.H{"timestamp": time.Now().Format(time.RFC3339)}

		if stats, err := services.Stats.Dashboard(c.Request.Context()); err == nil {
			response["database"] = stats
		}
		if health != nil {
			pool := health.Stats()
			response["pool"] = gin.H{
				"open_connections": pool.OpenConnections,
				"in_use":           pool.InUse,
				"idle":             pool.Idle,
				"wait_count":       pool.WaitCount,
			}
		}

		c.JSON(http.StatusOK, response)
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Str("path", c.Request.URL.Path).Msg("Panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", c.Request.URL.RawQuery).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS. A "*" entry allows any origin.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowAll:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && allowed[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, If-None-Match")
		c.Header("Access-Control-Expose-Headers", "ETag")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// timeoutMiddleware bounds every store call of a request
func timeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := contextWithTimeout(c, timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// contextWithTimeout creates a context with timeout for handlers
func contextWithTimeout(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), timeout)
}
