package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stocktr-api/internal/models"
	"github.com/stocktr-api/internal/repository"
	"github.com/stocktr-api/internal/service"
	"github.com/stocktr-api/pkg/response"
)

const (
	// ContextKeyUserID is the key for user ID in gin context
	ContextKeyUserID = "user_id"
	// ContextKeyUser is the key for the resolved *models.User in gin context
	ContextKeyUser = "user"
)

// AuthMiddleware creates a JWT authentication middleware that rejects
// requests without a valid bearer token for an existing user
func AuthMiddleware(tokens *service.TokenService, auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, "Unauthenticated")
			c.Abort()
			return
		}

		if err := authenticate(c, tokens, auth, tokenString); err != nil {
			response.Unauthorized(c, "Unauthenticated")
			c.Abort()
			return
		}

		c.Next()
	}
}

// OptionalAuth resolves the user when a valid token is present and never rejects
func OptionalAuth(tokens *service.TokenService, auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c); ok {
			_ = authenticate(c, tokens, auth, tokenString)
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, tokens *service.TokenService, auth *service.AuthService, tokenString string) error {
	userID, err := tokens.Verify(tokenString)
	if err != nil {
		return err
	}

	user, err := auth.ResolveUser(c.Request.Context(), userID)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			slog.Error("resolve token user failed", "user_id", userID, "error", err)
		}
		return service.ErrInvalidToken
	}

	c.Set(ContextKeyUserID, user.ID)
	c.Set(ContextKeyUser, user)
	return nil
}

// bearerToken extracts the token from "Authorization: Bearer <token>"
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// GetUserID gets the user ID from the gin context
func GetUserID(c *gin.Context) uint {
	userID, exists := c.Get(ContextKeyUserID)
	if !exists {
		return 0
	}
	return userID.(uint)
}

// GetUser gets the authenticated user from the gin context
func GetUser(c *gin.Context) *models.User {
	user, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil
	}
	return user.(*models.User)
}
