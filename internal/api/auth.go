package api

import (
	"net/http"
	"slices"

	"github.com/Albion-ops/bytewave-hub/internal/auth"
	"github.com/Albion-ops/bytewave-hub/internal/models"
	"github.com/Albion-ops/bytewave-hub/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	identityKey = "identity"
	actorKey    = "actor"
)

// authenticate verifies a bearer token when one is sent. Requests without
// an Authorization header pass through anonymously; a bad token is
// rejected outright.
func authenticate(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		identity, err := verifier.VerifyHeader(header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// requireRole admits only callers whose effective role is one of allowed
func requireRole(roles service.RoleService, log zerolog.Logger, allowed ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := identityFrom(c)
		if identity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": service.ErrAuthRequired.Error()})
			return
		}

		role, err := roles.RoleOf(c.Request.Context(), identity.UserID)
		if err != nil {
			respondError(c, log, err)
			c.Abort()
			return
		}
		if !slices.Contains(allowed, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}

		c.Set(actorKey, service.Actor{UserID: identity.UserID, Role: role})
		c.Next()
	}
}

// identityFrom returns the verified caller, or nil for anonymous requests
func identityFrom(c *gin.Context) *auth.Identity {
	if v, ok := c.Get(identityKey); ok {
		if identity, ok := v.(*auth.Identity); ok {
			return identity
		}
	}
	return nil
}

func actorFrom(c *gin.Context) service.Actor {
	actor, _ := c.MustGet(actorKey).(service.Actor)
	return actor
}
