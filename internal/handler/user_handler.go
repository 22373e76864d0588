package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/accounts-service/internal/middleware"
	"github.com/accounts-service/internal/models"
	"github.com/accounts-service/internal/repository"
	"github.com/accounts-service/internal/service"
	"github.com/accounts-service/internal/validation"
	"github.com/accounts-service/pkg/response"
	"github.com/gin-gonic/gin"
)

// UserHandler handles user account API requests
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// decodeFields decodes a JSON body into the raw field map the validation
// schema consumes. UseNumber keeps wallet amounts at full precision.
func decodeFields(c *gin.Context) (map[string]interface{}, bool) {
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	input := make(map[string]interface{})
	if err := dec.Decode(&input); err != nil {
		response.BadRequest(c, "invalid request body")
		return nil, false
	}
	return input, true
}

// writeUserError translates service errors into API responses
func writeUserError(c *gin.Context, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		response.ValidationFailed(c, verrs)
	case errors.Is(err, service.ErrUsernameTaken):
		response.Conflict(c, service.ErrUsernameTaken.Error())
	case errors.Is(err, service.ErrNotAuthenticated):
		response.Unauthorized(c, "authentication required")
	case errors.Is(err, repository.ErrUserNotFound):
		response.NotFound(c, "user not found")
	default:
		response.InternalError(c, "internal server error")
	}
}

// CreateUser handles user registration
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	input, ok := decodeFields(c)
	if !ok {
		return
	}

	user, err := h.userService.Create(input)
	if err != nil {
		writeUserError(c, err)
		return
	}

	response.Created(c, "User created successfully", user.ID)
}

// DescribeCreate lists the fields the create endpoint accepts
// GET /api/v1/users
func (h *UserHandler) DescribeCreate(c *gin.Context) {
	response.Success(c, gin.H{
		"message":         "This endpoint is for creating users only. Use POST method.",
		"fields_required": service.UserSchema.Names(),
	})
}

// GetProfile returns the authenticated user's profile
// GET /api/v1/users/me
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)

	user, err := h.userService.Get(userID)
	if err != nil {
		writeUserError(c, err)
		return
	}

	response.Success(c, models.NewUserResponse(user))
}

// UpdateProfile merges the supplied fields into the authenticated user's record
// PUT /api/v1/users/me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)

	input, ok := decodeFields(c)
	if !ok {
		return
	}

	if _, err := h.userService.Update(userID, input); err != nil {
		writeUserError(c, err)
		return
	}

	response.Message(c, http.StatusOK, "User updated successfully")
}

// DeleteProfile permanently removes the authenticated user's account
// DELETE /api/v1/users/me
func (h *UserHandler) DeleteProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.userService.Delete(userID); err != nil {
		if errors.Is(err, service.ErrNotAuthenticated) {
			response.Unauthorized(c, "authentication required")
			return
		}
		response.InternalError(c, "failed to delete user")
		return
	}

	response.Message(c, http.StatusOK, "User deleted successfully")
}

// RegisterRoutes registers user routes
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	users := rg.Group("/users")
	{
		users.POST("", h.CreateUser)
		users.GET("", h.DescribeCreate)

		me := users.Group("/me")
		me.Use(authMiddleware)
		{
			me.GET("", h.GetProfile)
			me.PUT("", h.UpdateProfile)
			me.DELETE("", h.DeleteProfile)
		}
	}
}
