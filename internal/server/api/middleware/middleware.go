package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"inkpress/internal/server/api/response"
	"inkpress/internal/server/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Middleware represents middleware manager
type Middleware struct {
	logger *zap.Logger
	config *config.Config
}

// New creates a new middleware manager
func New(cfg *config.Config, logger *zap.Logger) *Middleware {
	return &Middleware{
		logger: logger,
		config: cfg,
	}
}

// RequestID adds request ID to context
func (m *Middleware) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// Logger logs request details
func (m *Middleware) Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		requestID := c.GetString("request_id")

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		clientIP := c.ClientIP()
		method := c.Request.Method
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", clientIP),
			zap.Int("status", status),
			zap.Duration("latency", latency),
		}
		if errorMessage != "" {
			fields = append(fields, zap.String("error", errorMessage))
		}

		switch {
		case status >= http.StatusInternalServerError:
			m.logger.Error("Request failed", fields...)
		case status >= http.StatusBadRequest:
			m.logger.Warn("Request rejected", fields...)
		default:
			m.logger.Info("Request completed", fields...)
		}
	}
}

// Recovery recovers from panics
func (m *Middleware) Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				// Get stack trace
				buf := make([]byte, 2048)
				n := runtime.Stack(buf, false)
				stackTrace := string(buf[:n])

				var errMsg string
				switch e := err.(type) {
				case error:
					errMsg = e.Error()
				case string:
					errMsg = e
				default:
					errMsg = fmt.Sprintf("%v", e)
				}

				m.logger.Error("Panic recovered",
					zap.String("error", errMsg),
					zap.String("stack", stackTrace))

				response.New(c, m.logger).Error(http.StatusInternalServerError,
					errors.New("internal server error"))
				c.Abort()
			}
		}()
		c.Next()
	}
}

// Cors handles CORS. The request origin is echoed back when it is allowed.
func (m *Middleware) Cors() gin.HandlerFunc {
	cors := m.config.API.CORS
	methods := strings.Join(cors.AllowedMethods, ",")
	headers := strings.Join(cors.AllowedHeaders, ",")
	maxAge := strconv.Itoa(cors.MaxAge)

	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" && originAllowed(cors.AllowedOrigins, origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Methods", methods)
			c.Header("Access-Control-Allow-Headers", headers)
			c.Header("Access-Control-Max-Age", maxAge)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func originAllowed(allowed []string, origin string) bool {
	for _, o := range allowed {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// NoCache adds no-cache headers
func (m *Middleware) NoCache() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.Next()
	}
}

// Secure adds security headers
func (m *Middleware) Secure() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "same-origin")
		c.Next()
	}
}
