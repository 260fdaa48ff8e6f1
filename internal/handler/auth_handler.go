package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stocktr-api/internal/middleware"
	"github.com/stocktr-api/internal/repository"
	"github.com/stocktr-api/internal/service"
	"github.com/stocktr-api/pkg/response"
)

// AuthHandler handles authentication API requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Signup handles user registration
// POST /api/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req service.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.AuthError(c, http.StatusBadRequest, "Invalid signup data: "+err.Error())
		return
	}

	session, err := h.authService.Signup(c.Request.Context(), &req)
	if err != nil {
		var conflict *service.ConflictError
		switch {
		case errors.As(err, &conflict):
			response.Conflict(c, conflict.Error(), conflict.Field)
			return
		case errors.Is(err, service.ErrNameRequired):
			response.AuthError(c, http.StatusBadRequest, "Name is required")
			return
		case errors.Is(err, service.ErrPasswordTooLong):
			response.AuthError(c, http.StatusBadRequest, "Password must be at most 72 bytes")
			return
		}
		slog.Error("signup failed", "error", err)
		response.AuthError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	response.Success(c, response.AuthResult{
		Token: session.Token,
		AUTH:  true,
		User:  session.User.Summary(),
	})
}

// Login handles user login
// POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.AuthError(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	session, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "Invalid credentials")
			return
		}
		slog.Error("login failed", "error", err)
		response.AuthError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	response.Success(c, response.AuthResult{
		Token: session.Token,
		AUTH:  true,
		User:  session.User.Summary(),
	})
}

// IsAuth reports whether the bearer token identifies a user. It always answers 200.
// POST /api/isAUTH
func (h *AuthHandler) IsAuth(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		response.Success(c, response.AuthStatus{AUTH: false})
		return
	}
	response.Success(c, response.AuthStatus{AUTH: true, UserData: user.Summary()})
}

// UpdatePassword changes the signed-in user's password
// POST /api/updatePassword
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	var req service.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "New password is required")
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), middleware.GetUserID(c), req.NewPassword)
	switch {
	case err == nil:
		response.OK(c, "Password updated successfully")
	case errors.Is(err, service.ErrPasswordRequired):
		response.BadRequest(c, "New password is required")
	case errors.Is(err, service.ErrSamePassword):
		response.BadRequest(c, "New password is the same as the old password")
	case errors.Is(err, service.ErrPasswordTooLong):
		response.BadRequest(c, "Password must be at most 72 bytes")
	case errors.Is(err, repository.ErrUserNotFound):
		response.NotFound(c, "User not found")
	default:
		slog.Error("update password failed", "error", err)
		response.InternalError(c, "Internal server error")
	}
}

// RegisterRoutes registers auth routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware, optionalAuth gin.HandlerFunc) {
	rg.POST("/signup", h.Signup)
	rg.POST("/login", h.Login)
	rg.POST("/isAUTH", optionalAuth, h.IsAuth)
	rg.POST("/updatePassword", authMiddleware, h.UpdatePassword)
}
