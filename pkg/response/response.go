package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the standard API error structure
type ErrorBody struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	// Error repeats Message for watchlist clients that read the "error" key
	Error string `json:"error,omitempty"`
	AUTH  *bool  `json:"AUTH,omitempty"`
}

// AuthResult is returned by signup and login
type AuthResult struct {
	Token string      `json:"token"`
	AUTH  bool        `json:"AUTH"`
	User  interface{} `json:"user"`
}

// AuthStatus is returned by the isAUTH check
type AuthStatus struct {
	AUTH     bool        `json:"AUTH"`
	UserData interface{} `json:"UserData,omitempty"`
}

// Message is a bare acknowledgement
type Message struct {
	Message string `json:"message"`
}

// Success sends a successful response with data as the whole body
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 created response
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// OK sends a 200 acknowledgement message
func OK(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Message{Message: message})
}

// Error sends an error response
func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ErrorBody{Message: message})
}

// AuthError sends an error response carrying AUTH:false, as the auth endpoints do
func AuthError(c *gin.Context, statusCode int, message string) {
	authFalse := false
	c.JSON(statusCode, ErrorBody{Message: message, AUTH: &authFalse})
}

// Conflict sends a 409 naming the field that collided
func Conflict(c *gin.Context, message, field string) {
	authFalse := false
	c.JSON(http.StatusConflict, ErrorBody{Message: message, Field: field, AUTH: &authFalse})
}

// WatchlistError sends an error response with both "message" and "error" set
func WatchlistError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ErrorBody{Message: message, Error: message})
}

// BadRequest sends a 400 error response
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 error response
func Unauthorized(c *gin.Context, message string) {
	AuthError(c, http.StatusUnauthorized, message)
}

// NotFound sends a 404 error response
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InternalError sends a 500 error response
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// Upstream is the error body of the quote proxy
type Upstream struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// UpstreamError sends the quote proxy's error body
func UpstreamError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Upstream{Error: true, Message: message})
}
