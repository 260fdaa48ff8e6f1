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

// multipartOverhead leaves room for boundaries and part headers around the file
const multipartOverhead = 64 << 10

// ProfileHandler handles profile icon requests
type ProfileHandler struct {
	profileService *service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

// UpdateIcon stores the uploaded "icon" file
// POST /api/updateProfileIcon
func (h *ProfileHandler) UpdateIcon(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.profileService.MaxBytes()+multipartOverhead)

	fileHeader, err := c.FormFile("icon")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.BadRequest(c, "File too large")
			return
		}
		response.BadRequest(c, "No file uploaded")
		return
	}
	if fileHeader.Size > h.profileService.MaxBytes() {
		response.BadRequest(c, "File too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		slog.Error("open uploaded icon failed", "error", err)
		response.InternalError(c, "Error updating profile icon")
		return
	}
	defer file.Close()

	info, err := h.profileService.UpdateIcon(c.Request.Context(), middleware.GetUserID(c), file)
	switch {
	case err == nil:
		response.Success(c, gin.H{
			"message":  "Profile icon updated successfully",
			"mimetype": info.MimeType,
			"size":     info.Size,
		})
	case errors.Is(err, service.ErrInvalidIcon):
		response.BadRequest(c, "Only image files are allowed")
	case errors.Is(err, service.ErrIconTooLarge):
		response.BadRequest(c, "File too large")
	case errors.Is(err, repository.ErrUserNotFound):
		response.NotFound(c, "User not found")
	default:
		slog.Error("update profile icon failed", "error", err)
		response.InternalError(c, "Error updating profile icon")
	}
}

// GetIcon returns the user's icon as a data URL
// GET /api/getProfileIcon
func (h *ProfileHandler) GetIcon(c *gin.Context) {
	icon, err := h.profileService.GetIcon(c.Request.Context(), middleware.GetUserID(c))
	switch {
	case err == nil:
		response.Success(c, gin.H{
			"message": "Profile icon retrieved successfully",
			"icon":    icon,
		})
	case errors.Is(err, service.ErrIconNotFound), errors.Is(err, repository.ErrUserNotFound):
		response.NotFound(c, "Profile icon not found")
	default:
		slog.Error("get profile icon failed", "error", err)
		response.InternalError(c, "Error retrieving profile icon")
	}
}

// Ping confirms the icon routes are mounted
// GET /api/UserProfileIcon
func (h *ProfileHandler) Ping(c *gin.Context) {
	response.OK(c, "User profile icon route is working")
}

// RegisterRoutes registers profile icon routes
func (h *ProfileHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	rg.GET("/UserProfileIcon", h.Ping)
	rg.POST("/updateProfileIcon", authMiddleware, h.UpdateIcon)
	rg.GET("/getProfileIcon", authMiddleware, h.GetIcon)
}
