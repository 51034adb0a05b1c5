package httpgin

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kirinyoku/gigbook/internal/domain"
	"github.com/kirinyoku/gigbook/internal/repository"
	"github.com/kirinyoku/gigbook/internal/service/ports"
)

// HeaderUserID carries the id of the caller authenticated by the gateway.
const HeaderUserID = "X-User-ID"

const callerKey = "caller"

func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}

		c.Writer.Header().Set("X-Request-ID", reqID)
		c.Set("request_id", reqID)

		c.Next()
	}
}

func CORS() gin.HandlerFunc {
	cfg := cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			"GET", "POST", "PATCH", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Requested-With",
			"X-Request-ID",
			HeaderUserID,
			"Idempotency-Key",
			"If-None-Match",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
			"ETag",
			"Cache-Control",
			"Idempotency-Key",
			"Retry-After",
		},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	return cors.New(cfg)
}

func LoggingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery
		c.Next()

		latency := time.Since(start)
		if raw != "" {
			path = path + "?" + raw
		}

		status := c.Writer.Status()
		reqID, _ := c.Get("request_id")

		attrs := []any{
			slog.Int("status", status),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("ip", c.ClientIP()),
			slog.String("ua", c.Request.UserAgent()),
			slog.Any("request_id", reqID),
			slog.Duration("latency", latency),
			slog.Int("bytes_out", c.Writer.Size()),
		}

		if caller, ok := callerFrom(c); ok {
			attrs = append(attrs, slog.String("caller_id", caller.ID.String()))
		}

		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("err", c.Errors.String()))
			logger.Error("http", slog.Group("http", attrs...))
		} else {
			logger.Info("http", slog.Group("http", attrs...))
		}
	}
}

// IdentityMiddleware resolves the caller named by HeaderUserID and stores its
// id and role on the context.
func IdentityMiddleware(users ports.IdentityStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if raw == "" {
			abortWith(c, http.StatusUnauthorized, "You are not logged in! Please log in to get access.")
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			abortWith(c, http.StatusUnauthorized, "Authentication failed. Please log in again.")
			return
		}

		u, err := users.FindByID(c.Request.Context(), id)
		if err != nil {
			_ = c.Error(err)
			if errors.Is(err, repository.ErrUnavailable) {
				c.Header("Retry-After", "1")
				abortWith(c, http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable))
				return
			}
			abortWith(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		if u == nil {
			abortWith(c, http.StatusUnauthorized, "The user belonging to this identity no longer exists.")
			return
		}

		c.Set(callerKey, domain.Caller{ID: u.ID, Role: u.Role})
		c.Next()
	}
}

// RequireCapability rejects callers whose role lacks cp.
func RequireCapability(cp domain.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerFrom(c)
		if !ok {
			abortWith(c, http.StatusUnauthorized, "You are not logged in!")
			return
		}

		if !caller.Role.Can(cp) {
			abortWith(c, http.StatusForbidden, "You do not have permission to perform this action")
			return
		}

		c.Next()
	}
}

func callerFrom(c *gin.Context) (domain.Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return domain.Caller{}, false
	}
	caller, ok := v.(domain.Caller)
	return caller, ok
}

func abortWith(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Status: "error", Message: msg})
}
