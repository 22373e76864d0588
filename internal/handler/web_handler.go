package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/accounts-service/internal/middleware"
	"github.com/accounts-service/internal/models"
	"github.com/accounts-service/internal/service"
	"github.com/accounts-service/internal/session"
	"github.com/accounts-service/internal/validation"
	"github.com/accounts-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

// WebHandler serves the browser-facing pages: login, registration, logout
// and the landing page. Pages are rendered from the templates loaded into
// the gin engine.
type WebHandler struct {
	userService *service.UserService
	authService *service.AuthService
	sessions    *session.Manager
	log         *logger.Logger
}

// NewWebHandler creates a new WebHandler
func NewWebHandler(userService *service.UserService, authService *service.AuthService, sessions *session.Manager, log *logger.Logger) *WebHandler {
	return &WebHandler{
		userService: userService,
		authService: authService,
		sessions:    sessions,
		log:         log,
	}
}

// formFields copies the posted form values named by the schema into the raw
// field map the validators consume
func formFields(c *gin.Context, schema validation.Schema) map[string]interface{} {
	input := make(map[string]interface{})
	for _, name := range schema.Names() {
		if v, ok := c.GetPostForm(name); ok {
			input[name] = v
		}
	}
	return input
}

// stickyValues echoes submitted values back into a re-rendered form. The
// password is never echoed.
func stickyValues(c *gin.Context, schema validation.Schema) map[string]string {
	vals := make(map[string]string)
	for _, name := range schema.Names() {
		if name == service.FieldPassword {
			continue
		}
		if v, ok := c.GetPostForm(name); ok {
			vals[name] = v
		}
	}
	return vals
}

// safeNext keeps post-login redirects on-site
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/home"
	}
	return next
}

// ShowLogin renders the login form
// GET /login
func (h *WebHandler) ShowLogin(c *gin.Context) {
	data := gin.H{"username": "", "next": ""}
	if next := c.Query("next"); next != "" {
		data["warning"] = "You must login first to access this link"
		data["next"] = next
	}
	c.HTML(http.StatusOK, "login.html", data)
}

// SubmitLogin authenticates the form credentials and opens a session.
// Every failure re-renders the form with the same message; the page never
// reveals whether the account exists.
// POST /login
func (h *WebHandler) SubmitLogin(c *gin.Context) {
	next := safeNext(c.DefaultPostForm("next", "/home"))

	user, err := h.authService.Authenticate(formFields(c, service.LoginSchema))
	if err != nil {
		c.HTML(http.StatusOK, "login.html", gin.H{
			"error":    "Invalid username or password",
			"username": c.PostForm(service.FieldIdentifier),
			"next":     next,
		})
		return
	}

	tok, err := h.sessions.Create(c.Request.Context(), user.ID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "message.html", gin.H{
			"title":   "Login failed",
			"message": "Something went wrong. Please try again later.",
		})
		return
	}

	session.WriteCookie(c.Writer, c.Request, tok)
	c.Redirect(http.StatusSeeOther, next)
}

// ShowRegister renders the account creation form
// GET /register
func (h *WebHandler) ShowRegister(c *gin.Context) {
	c.HTML(http.StatusOK, "create_user.html", gin.H{
		"errors": validation.Errors{},
		"values": map[string]string{},
	})
}

// SubmitRegister creates an account from the form post. Field errors
// re-render the form next to their inputs.
// POST /register
func (h *WebHandler) SubmitRegister(c *gin.Context) {
	_, err := h.userService.Create(formFields(c, service.UserSchema))
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			c.HTML(http.StatusOK, "create_user.html", gin.H{
				"errors": verrs,
				"values": stickyValues(c, service.UserSchema),
			})
			return
		}
		if errors.Is(err, service.ErrUsernameTaken) {
			c.HTML(http.StatusOK, "create_user.html", gin.H{
				"errors": validation.Errors{service.FieldUsername: {"username already taken"}},
				"values": stickyValues(c, service.UserSchema),
			})
			return
		}
		c.HTML(http.StatusInternalServerError, "message.html", gin.H{
			"title":   "Registration failed",
			"message": "Something went wrong. Please try again later.",
		})
		return
	}

	c.HTML(http.StatusOK, "message.html", gin.H{
		"title":   "Welcome",
		"message": "User created successfully",
	})
}

// Logout destroys the session, clears the cookie and confirms
// GET|POST /logout
func (h *WebHandler) Logout(c *gin.Context) {
	if tok, ok := session.ReadCookie(c.Request); ok {
		if err := h.sessions.Destroy(c.Request.Context(), tok); err != nil {
			h.log.Error("Error destroying session on logout: %v", err)
		}
		session.ClearCookie(c.Writer, c.Request)
	}
	c.HTML(http.StatusOK, "message.html", gin.H{
		"title":   "Logged out",
		"message": "User logout successfully...",
	})
}

// Home renders the landing page for a signed-in user
// GET /home
func (h *WebHandler) Home(c *gin.Context) {
	userID := middleware.GetUserID(c)

	user, err := h.userService.Get(userID)
	if err != nil {
		// The session points at an account that no longer exists
		session.ClearCookie(c.Writer, c.Request)
		c.Redirect(http.StatusFound, "/login")
		return
	}

	c.HTML(http.StatusOK, "home.html", gin.H{
		"user": models.NewUserResponse(user),
	})
}

// RegisterRoutes registers the web routes on the root engine
func (h *WebHandler) RegisterRoutes(r *gin.Engine, webAuth gin.HandlerFunc) {
	r.GET("/login", h.ShowLogin)
	r.POST("/login", h.SubmitLogin)
	r.GET("/register", h.ShowRegister)
	r.POST("/register", h.SubmitRegister)
	r.GET("/logout", h.Logout)
	r.POST("/logout", h.Logout)
	r.GET("/home", webAuth, h.Home)
}
