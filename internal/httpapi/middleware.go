package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// AdminKeyHeaderName carries the shared admin secret.
	AdminKeyHeaderName = "X-Admin-Key"

	errorValueAdminNotConfigured = "Admin functionality not configured"
	errorValueUnauthorized       = "Unauthorized - Invalid admin key"
)

// RequestLogger emits one structured log line per request.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(ginContext *gin.Context) {
		start := time.Now()
		ginContext.Next()
		logger.Info("http",
			zap.String("method", ginContext.Request.Method),
			zap.String("path", ginContext.Request.URL.Path),
			zap.Int("status", ginContext.Writer.Status()),
			zap.Duration("dur", time.Since(start)),
			zap.String("ip", ginContext.ClientIP()),
			zap.String("ua", ginContext.Request.UserAgent()),
		)
	}
}

// AdminKeyMiddleware gates admin operations behind a shared secret compared
// for exact equality. A missing configured secret is an operator fault and
// yields a server error; a missing or wrong header yields unauthorized. The
// gate never touches the store.
func AdminKeyMiddleware(configuredAdminKey string) gin.HandlerFunc {
	return func(ginContext *gin.Context) {
		if strings.TrimSpace(configuredAdminKey) == "" {
			ginContext.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				jsonKeySuccess: false,
				jsonKeyError:   errorValueAdminNotConfigured,
			})
			return
		}

		providedKey := ginContext.GetHeader(AdminKeyHeaderName)
		if providedKey == "" || providedKey != configuredAdminKey {
			ginContext.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				jsonKeySuccess: false,
				jsonKeyError:   errorValueUnauthorized,
			})
			return
		}

		ginContext.Next()
	}
}
