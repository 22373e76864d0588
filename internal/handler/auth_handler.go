package handler

import (
	"errors"
	"net/http"

	"github.com/accounts-service/internal/service"
	"github.com/accounts-service/internal/session"
	"github.com/accounts-service/internal/validation"
	"github.com/accounts-service/pkg/logger"
	"github.com/accounts-service/pkg/response"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication API requests
type AuthHandler struct {
	authService *service.AuthService
	sessions    *session.Manager
	log         *logger.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService, sessions *session.Manager, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		log:         log,
	}
}

// Login exchanges credentials for a JWT
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	input, ok := decodeFields(c)
	if !ok {
		return
	}

	token, err := h.authService.Login(input)
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			response.ValidationFailed(c, verrs)
			return
		}
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, service.ErrInvalidCredentials.Error())
			return
		}
		response.InternalError(c, "failed to login")
		return
	}

	response.Success(c, token)
}

// Logout ends the caller's web session, if one rode in on the request.
// JWTs are stateless and expire on their own.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if tok, ok := session.ReadCookie(c.Request); ok {
		if err := h.sessions.Destroy(c.Request.Context(), tok); err != nil {
			h.log.Error("Error destroying session on logout: %v", err)
		}
		session.ClearCookie(c.Writer, c.Request)
	}

	response.Message(c, http.StatusOK, "User logged out successfully")
}

// RegisterRoutes registers auth routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	auth := rg.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/logout", authMiddleware, h.Logout)
	}
}
