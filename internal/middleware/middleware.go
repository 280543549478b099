package middleware

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"planetarium/internal/cache"
	"planetarium/internal/logger"
	"planetarium/internal/metrics"
	"planetarium/internal/models"

	"github.com/gin-gonic/gin"
)

// UserStore is the subset of the user repository the auth middleware needs.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Ctx key and helpers for the authenticated user id.
// Unexported type avoids collisions with other packages.

type ctxKey string

const userIDKey ctxKey = "user_id"

func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(userIDKey)
	if v == nil {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// CORS handles cross-origin requests
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}

		c.Next()
	}
}

// RequestID attaches a request id to the request context so every log line
// produced while handling the request can be correlated.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = logger.NewRequestID()
		}
		c.Header("X-Request-ID", requestID)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}

// Logger logs completed requests with structured fields
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		userID, exists := c.Get("user_id")

		logFields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status_code", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
		}

		if exists {
			logFields = append(logFields, "user_id", userID)
		}

		log := logger.WithContext(c.Request.Context())
		if c.Writer.Status() >= 400 {
			if len(c.Errors) > 0 {
				logFields = append(logFields, "error", c.Errors.String())
			}
			log.Error("Request completed with error", logFields...)
		} else {
			log.Info("Request completed", logFields...)
		}
	}
}

// Metrics records request counts and latencies per route
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.RequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Recovery recovers from panics with detailed logging
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.WithContext(c.Request.Context()).Error("PANIC recovered",
			"panic", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"client_ip", c.ClientIP(),
		)

		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
	})
}

// BasicAuth authenticates the user via HTTP Basic Auth, checking the
// credential cache first and falling back to the user store.
func BasicAuth(users UserStore, valkeyClient *cache.ValkeyClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", "Basic realm=\"Restricted\"")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		// Email doubles as the username.
		ctx := c.Request.Context()

		hash := sha256.Sum256([]byte(password))
		passwordHash := fmt.Sprintf("%x", hash)

		// Fast path: credential cache.
		if valkeyClient != nil {
			userID, err := valkeyClient.GetUserIDByAuth(ctx, username, passwordHash)
			if err == nil {
				c.Set("user_id", userID)
				c.Request = c.Request.WithContext(ContextWithUserID(ctx, userID))
				c.Next()
				return
			}
		}

		user, err := users.GetByEmail(ctx, username)
		if err != nil || user == nil || !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		if user.PasswordHash == "" || passwordHash != user.PasswordHash {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		if valkeyClient != nil {
			if err := valkeyClient.SetUserAuth(ctx, username, passwordHash, user.UserID); err != nil {
				logger.WithContext(ctx).Warn("Failed to cache credentials", "error", err)
			}
		}

		c.Set("user_id", user.UserID)
		c.Set("is_staff", user.IsStaff)
		c.Request = c.Request.WithContext(ContextWithUserID(ctx, user.UserID))

		c.Next()
	}
}

// RequireStaff gates admin routes. The cache fast path only resolves the
// user id, so the staff flag is loaded from the store when missing.
func RequireStaff(users UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isStaff, exists := c.Get("is_staff"); exists {
			if staff, ok := isStaff.(bool); ok && staff {
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Staff access required"})
			return
		}

		userID, ok := UserIDFromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil || user == nil || !user.IsStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Staff access required"})
			return
		}

		c.Set("is_staff", true)
		c.Next()
	}
}

// IsStaff reports whether the current request was made by a staff user,
// resolving from the store if the flag is not already on the gin context.
func IsStaff(c *gin.Context, users UserStore) bool {
	if v, exists := c.Get("is_staff"); exists {
		staff, ok := v.(bool)
		return ok && staff
	}
	userID, ok := UserIDFromContext(c.Request.Context())
	if !ok {
		return false
	}
	user, err := users.GetByID(c.Request.Context(), userID)
	if err != nil || user == nil {
		return false
	}
	c.Set("is_staff", user.IsStaff)
	return user.IsStaff
}
