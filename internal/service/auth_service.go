package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stocktr-api/internal/models"
	"github.com/stocktr-api/internal/repository"
	"github.com/stocktr-api/pkg/crypto"
)

var (
	ErrConflict           = errors.New("already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordRequired   = errors.New("new password is required")
	ErrSamePassword       = errors.New("new password is the same as the old password")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
	ErrNameRequired       = errors.New("name is required")
)

// ConflictError reports which unique field a signup collided on
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s", fieldLabel(e.Field), ErrConflict.Error())
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

func fieldLabel(field string) string {
	switch field {
	case "email":
		return "Email"
	case "username":
		return "Username"
	default:
		return "Account"
	}
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo   *repository.UserRepository
	tokens     *TokenService
	bcryptCost int
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo *repository.UserRepository, tokens *TokenService, bcryptCost int) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

// SignupRequest represents the signup request
type SignupRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=3,max=72"`
}

// LoginRequest represents the login request. Keys match case-insensitively,
// so both "Email" and "email" bind.
type LoginRequest struct {
	Email    string `json:"Email" binding:"required"`
	Password string `json:"Password" binding:"required"`
}

// ChangePasswordRequest represents the password update request
type ChangePasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// Session is a signed-in user and its token
type Session struct {
	User  *models.User
	Token string
}

// Signup registers a new user and signs them in
func (s *AuthService) Signup(ctx context.Context, req *SignupRequest) (*Session, error) {
	username := strings.TrimSpace(req.Username)
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)

	if name == "" {
		return nil, ErrNameRequired
	}
	if len(req.Password) > crypto.MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &ConflictError{Field: "email"}
	}

	exists, err = s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &ConflictError{Field: "username"}
	}

	passwordHash, err := crypto.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
	}

	// a concurrent signup can still win the unique index
	if err := s.userRepo.Create(ctx, user); err != nil {
		var dup *repository.DuplicateError
		if errors.As(err, &dup) {
			return nil, &ConflictError{Field: dup.Field}
		}
		return nil, err
	}

	return s.session(user)
}

// Login authenticates a user by email and password
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*Session, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			crypto.BurnCompare(req.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !crypto.CheckPassword(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.session(user)
}

// ChangePassword replaces the password of a signed-in user
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, newPassword string) error {
	if newPassword == "" {
		return ErrPasswordRequired
	}
	if len(newPassword) > crypto.MaxPasswordBytes {
		return ErrPasswordTooLong
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if crypto.CheckPassword(newPassword, user.PasswordHash) {
		return ErrSamePassword
	}

	passwordHash, err := crypto.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.userRepo.UpdatePassword(ctx, userID, passwordHash)
}

// ResolveUser loads the user a verified token refers to
func (s *AuthService) ResolveUser(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *AuthService) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{User: user, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
