package errors

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var exposeDetails atomic.Bool

// SetExposeDetails controls whether raw internal error text is attached to
// error bodies. Off unless EXPOSE_ERROR_DETAILS is set.
func SetExposeDetails(expose bool) {
	exposeDetails.Store(expose)
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"` // raw detail, only when exposed
}

// RespondWithError writes the error envelope and aborts the chain.
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Code:    errorCode,
		Message: message,
	})
}

// RespondWithDetail is RespondWithError plus the underlying error, which is
// dropped unless details are exposed.
func RespondWithDetail(c *gin.Context, statusCode int, errorCode string, message string, err error) {
	body := ErrorResponse{
		Code:    errorCode,
		Message: message,
	}
	if err != nil && exposeDetails.Load() {
		body.Error = err.Error()
	}
	c.AbortWithStatusJSON(statusCode, body)
}

// Success writes {success:true, ...payload}.
func Success(c *gin.Context, statusCode int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(statusCode, body)
}

func Unauthorized(c *gin.Context, errorCode string, message string) {
	if errorCode == "" {
		errorCode = AuthUnauthorized
	}
	if message == "" {
		message = "Not authorized to access this route"
	}
	RespondWithError(c, http.StatusUnauthorized, errorCode, message)
}

func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "You do not have permission to perform this action"
	}
	RespondWithError(c, http.StatusForbidden, AuthzForbidden, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

// InternalError responds 500. err is logged by the caller and only echoed
// when details are exposed.
func InternalError(c *gin.Context, message string, err error) {
	if message == "" {
		message = "Server error"
	}
	RespondWithDetail(c, http.StatusInternalServerError, InternalServerError, message, err)
}

// ValidationError carries per-field messages for a rejected request body.
type ValidationError struct {
	Success bool              `json:"success"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// RespondWithValidationError responds 400 with message, usually the first
// field message, and the full field map.
func RespondWithValidationError(c *gin.Context, message string, fields map[string]string) {
	if message == "" {
		message = "Invalid input"
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, ValidationError{
		Code:    ValidationInvalidInput,
		Message: message,
		Fields:  fields,
	})
}
