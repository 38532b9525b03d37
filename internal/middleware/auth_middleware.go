package middleware

import (
	stderrors "errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/meditrack/meditrack-backend/internal/app/model"
	"github.com/meditrack/meditrack-backend/internal/errors"
	"github.com/meditrack/meditrack-backend/pkg/util"
)

// Context keys for user information
const (
	UserIDKey   = "user_id"
	UserRoleKey = "user_role"
)

type AuthMiddleware struct {
	jwtSecret string
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
	}
}

// Authenticate validates the bearer token and puts the caller's identity in
// the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Missing authorization header", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, errors.AuthUnauthorized, "Not authorized to access this route")
			return
		}

		// "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			log.Warn("Invalid authorization header format", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, errors.AuthTokenInvalid, "Invalid authorization header")
			return
		}

		claims, err := util.ValidateToken(parts[1], m.jwtSecret)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})

			if stderrors.Is(err, util.ErrExpiredToken) {
				errors.Unauthorized(c, errors.AuthTokenExpired, "Token has expired, please log in again")
			} else {
				errors.Unauthorized(c, errors.AuthTokenInvalid, "Invalid token")
			}
			return
		}

		c.Set(UserIDKey, claims.UserID())
		c.Set(UserRoleKey, model.UserRole(claims.Role))

		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id": claims.UserID(),
			"role":    claims.Role,
		})

		c.Next()
	}
}

// RequireRole rejects authenticated callers whose role is not listed.
// It must run after Authenticate.
func (m *AuthMiddleware) RequireRole(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		role, exists := GetUserRole(c)
		if !exists {
			log.Warn("Role information not found in context", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Forbidden(c, "")
			return
		}

		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		userID, _ := GetUserID(c)
		log.Warn("Insufficient permissions", map[string]interface{}{
			"user_id":        userID,
			"user_role":      role,
			"required_roles": roles,
			"path":           c.Request.URL.Path,
		})
		errors.Forbidden(c, "User role "+string(role)+" is not authorized to access this route")
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// GetUserRole extracts user role from context
func GetUserRole(c *gin.Context) (model.UserRole, bool) {
	v, exists := c.Get(UserRoleKey)
	if !exists {
		return "", false
	}
	role, ok := v.(model.UserRole)
	return role, ok
}
