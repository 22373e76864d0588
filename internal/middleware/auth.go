package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/accounts-service/internal/service"
	"github.com/accounts-service/internal/session"
	"github.com/accounts-service/pkg/response"
	"github.com/gin-gonic/gin"
)

const (
	// ContextKeyUserID is the key for user ID in gin context
	ContextKeyUserID = "user_id"
	// ContextKeyUsername is the key for username in gin context
	ContextKeyUsername = "username"
)

// AuthMiddleware authenticates API requests. It accepts a Bearer JWT in the
// Authorization header or, when no header is sent, a session cookie issued by
// the web login flow.
func AuthMiddleware(authService *service.AuthService, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			// Check Bearer prefix
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				response.Unauthorized(c, "invalid authorization header format")
				c.Abort()
				return
			}

			claims, err := authService.ValidateToken(parts[1])
			if err != nil {
				response.Unauthorized(c, "invalid or expired token")
				c.Abort()
				return
			}

			c.Set(ContextKeyUserID, claims.UserID)
			c.Set(ContextKeyUsername, claims.Username)
			c.Next()
			return
		}

		if tok, ok := session.ReadCookie(c.Request); ok && sessions != nil {
			userID, err := sessions.Resolve(c.Request.Context(), tok)
			if err == nil {
				c.Set(ContextKeyUserID, userID)
				c.Next()
				return
			}
		}

		response.Unauthorized(c, "authentication required")
		c.Abort()
	}
}

// WebAuthMiddleware guards browser pages. Unauthenticated visitors are sent
// to the login form with the original path preserved in the next parameter.
func WebAuthMiddleware(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tok, ok := session.ReadCookie(c.Request); ok {
			userID, err := sessions.Resolve(c.Request.Context(), tok)
			if err == nil {
				c.Set(ContextKeyUserID, userID)
				c.Next()
				return
			}
		}

		c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// GetUserID gets the user ID from the gin context
func GetUserID(c *gin.Context) uint {
	userID, exists := c.Get(ContextKeyUserID)
	if !exists {
		return 0
	}
	return userID.(uint)
}

// GetUsername gets the username from the gin context
func GetUsername(c *gin.Context) string {
	username, exists := c.Get(ContextKeyUsername)
	if !exists {
		return ""
	}
	return username.(string)
}
