package api

import (
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"mjnutrafit/coaching-api/internal/domain"
	"mjnutrafit/coaching-api/internal/service"
)

// Constants for context keys
const (
	ContextUserKey      = "currentUser"
	ContextRequestIDKey = "requestID"
)

const requestIDHeader = "X-Request-ID"

// AuthMiddleware resolves the bearer token to a user and stores it in the context.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"; the last field is taken as the token
		fields := strings.Fields(authHeader)
		if len(fields) == 0 || (len(fields) == 1 && strings.EqualFold(fields[0], "bearer")) {
			abortWithError(c, http.StatusUnauthorized, "Token is missing")
			return
		}
		token := fields[len(fields)-1]

		user, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				abortWithError(c, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			respondError(c, err)
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// RoleMiddleware creates middleware to check if user has the required role(s).
// Must run AFTER AuthMiddleware.
func RoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			abortWithError(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !slices.Contains(allowedRoles, user.Role) {
			abortWithError(c, http.StatusForbidden, "Access denied for role "+string(user.Role))
			return
		}
		c.Next()
	}
}

// currentUser returns the user set by AuthMiddleware, or nil.
func currentUser(c *gin.Context) *domain.User {
	raw, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, _ := raw.(*domain.User)
	return user
}

// RequestLogger tags each request with an id and logs one line when it completes.
func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextRequestIDKey, requestID)
		c.Header(requestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		entry := log.WithFields(logrus.Fields{
			"requestId": requestID,
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    status,
			"latency":   time.Since(start).String(),
			"clientIp":  c.ClientIP(),
		})
		if user := currentUser(c); user != nil {
			entry = entry.WithField("userId", user.ID)
		}
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request completed")
		case status >= http.StatusBadRequest:
			entry.Warn("request completed")
		default:
			entry.Info("request completed")
		}
	}
}
