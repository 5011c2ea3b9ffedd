package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"immofox-http-service/internal/domain/models"
	"immofox-http-service/internal/domain/services"
	"immofox-http-service/internal/error/response"
)

// Context keys set by Authenticate
const (
	ContextUserID = "userID"
	ContextRole   = "role"
	ContextClaims = "claims"
)

// extractToken reads "Authorization: Bearer <token>". The token query
// parameter is only honored on websocket upgrades, where browsers cannot
// set headers.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if !websocket.IsWebSocketUpgrade(c.Request) {
		return ""
	}
	return c.Query("token")
}

// Authenticate validates the bearer token and stores user id, role and claims in the context
func Authenticate(jwtService services.InterfaceJWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			response.Unauthorized(c, "Anmeldung erforderlich")
			c.Abort()
			return
		}

		claims, err := jwtService.ParseToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "Sitzung ungültig oder abgelaufen")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// RequireRole lets only the given roles pass; it must run after Authenticate
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := CurrentRole(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		response.Forbidden(c, "Keine Berechtigung für diesen Bereich")
		c.Abort()
	}
}

// CurrentUserID returns the authenticated user id, 0 if unauthenticated
func CurrentUserID(c *gin.Context) uint {
	if v, ok := c.Get(ContextUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// CurrentRole returns the authenticated role
func CurrentRole(c *gin.Context) models.Role {
	if v, ok := c.Get(ContextRole); ok {
		if r, ok := v.(models.Role); ok {
			return r
		}
	}
	return ""
}

// CurrentClaims returns the token claims
func CurrentClaims(c *gin.Context) *services.JWTClaims {
	if v, ok := c.Get(ContextClaims); ok {
		if claims, ok := v.(*services.JWTClaims); ok {
			return claims
		}
	}
	return nil
}

// CurrentActor returns id and role as a service actor
func CurrentActor(c *gin.Context) services.Actor {
	return services.Actor{ID: CurrentUserID(c), Role: CurrentRole(c)}
}
