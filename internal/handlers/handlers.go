package handlers

import (
	"net/http"
	"strings"

	"github.com/craftfolio/backend/internal/analytics"
	"github.com/craftfolio/backend/internal/auth"
	"github.com/gin-gonic/gin"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	authService *auth.Service
	recorder    *analytics.Recorder
	queue       *analytics.Queue
	scanner     *analytics.Scanner
	aggregator  *analytics.Aggregator
}

// NewHandlers creates a new handlers instance
func NewHandlers(authService *auth.Service, recorder *analytics.Recorder, queue *analytics.Queue, scanner *analytics.Scanner, aggregator *analytics.Aggregator) *Handlers {
	return &Handlers{
		authService: authService,
		recorder:    recorder,
		queue:       queue,
		scanner:     scanner,
		aggregator:  aggregator,
	}
}

// bearerToken extracts the token from the Authorization header
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// AuthMiddleware validates requests with JWT tokens and loads the user
// into the Gin context
func (h *Handlers) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "no token provided"})
			c.Abort()
			return
		}

		user, err := h.authService.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

// OptionalAuthMiddleware loads the user when a valid token is present
// but lets anonymous requests through
func (h *Handlers) OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token != "" {
			if user, err := h.authService.ValidateToken(token); err == nil {
				c.Set("user", user)
				c.Set("user_id", user.ID)
			}
		}
		c.Next()
	}
}
