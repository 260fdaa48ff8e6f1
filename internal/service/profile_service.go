package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/stocktr-api/internal/repository"
)

var (
	ErrInvalidIcon  = errors.New("invalid profile icon")
	ErrIconTooLarge = errors.New("profile icon too large")
	ErrIconNotFound = errors.New("profile icon not found")
)

// DefaultIconMaxBytes caps uploaded icons
const DefaultIconMaxBytes int64 = 5 << 20

// IconInfo describes a stored icon
type IconInfo struct {
	MimeType string `json:"mimetype"`
	Size     int64  `json:"size"`
}

// ProfileService stores profile icons as data URLs on the user row
type ProfileService struct {
	userRepo *repository.UserRepository
	maxBytes int64
}

// NewProfileService creates a new ProfileService
func NewProfileService(userRepo *repository.UserRepository, maxBytes int64) *ProfileService {
	if maxBytes <= 0 {
		maxBytes = DefaultIconMaxBytes
	}
	return &ProfileService{userRepo: userRepo, maxBytes: maxBytes}
}

// MaxBytes returns the upload limit
func (s *ProfileService) MaxBytes() int64 {
	return s.maxBytes
}

// UpdateIcon reads an image, sniffs its type and stores it for the user
func (s *ProfileService) UpdateIcon(ctx context.Context, userID uint, r io.Reader) (*IconInfo, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read icon: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrIconTooLarge
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidIcon)
	}

	mime := mimetype.Detect(data)
	mimeType := mime.String()
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("%w: %s is not an image", ErrInvalidIcon, mimeType)
	}

	icon := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
	if err := s.userRepo.UpdateIcon(ctx, userID, icon); err != nil {
		return nil, err
	}
	return &IconInfo{MimeType: mimeType, Size: int64(len(data))}, nil
}

// GetIcon returns the stored data URL of the user's icon
func (s *ProfileService) GetIcon(ctx context.Context, userID uint) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.Icon == "" {
		return "", ErrIconNotFound
	}
	return user.Icon, nil
}
