package errors

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrorInfo is the client-facing classification of an unexpected error.
type ErrorInfo struct {
	Status  int
	Code    string
	Message string
}

// ParseError classifies store and infrastructure errors that no service
// sentinel covers. fallback names the failed operation; it picks the
// not-found wording and is the message of unclassified failures. Driver text
// is never used as the message.
func ParseError(err error, fallback string) ErrorInfo {
	if fallback == "" {
		fallback = "Server error"
	}
	if err == nil {
		return ErrorInfo{
			Status:  http.StatusInternalServerError,
			Code:    InternalServerError,
			Message: fallback,
		}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Status:  http.StatusNotFound,
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(fallback),
		}
	}

	errLower := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(errLower, "duplicate key") || strings.Contains(errLower, "unique constraint") {
		return parseDuplicateKeyError(errLower)
	}

	if strings.Contains(errLower, "foreign key constraint") {
		return ErrorInfo{
			Status:  http.StatusConflict,
			Code:    ResourceConflict,
			Message: "Referenced record does not exist",
		}
	}

	if strings.Contains(errLower, "not-null constraint") || strings.Contains(errLower, "not null constraint") {
		return ErrorInfo{
			Status:  http.StatusBadRequest,
			Code:    ValidationRequired,
			Message: "A required field is missing",
		}
	}

	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return ErrorInfo{
			Status:  http.StatusServiceUnavailable,
			Code:    InternalExternalAPI,
			Message: "A dependent service is unavailable, please try again later",
		}
	}

	return ErrorInfo{
		Status:  http.StatusInternalServerError,
		Code:    InternalDatabaseError,
		Message: fallback,
	}
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	if strings.Contains(errLower, "email") || strings.Contains(errLower, "idx_users_email") {
		return ErrorInfo{
			Status:  http.StatusBadRequest,
			Code:    AuthEmailAlreadyExists,
			Message: "User already exists with this email",
		}
	}
	return ErrorInfo{
		Status:  http.StatusConflict,
		Code:    ResourceAlreadyExists,
		Message: "Record already exists",
	}
}

func getNotFoundMessage(operation string) string {
	lower := strings.ToLower(operation)

	switch {
	case strings.Contains(lower, "doctor"):
		return "Doctor not found"
	case strings.Contains(lower, "patient"):
		return "Patient not found"
	case strings.Contains(lower, "user"):
		return "User not found"
	}
	return "Requested resource not found"
}

// ParseAndRespond answers an error that no service sentinel covers with
// its classified status and code.
func ParseAndRespond(c *gin.Context, err error, fallback string) {
	info := ParseError(err, fallback)
	RespondWithDetail(c, info.Status, info.Code, info.Message, err)
}
