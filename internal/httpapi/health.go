package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// ServiceName identifies this backend in the health payload.
	ServiceName = "DSGVO Contact Form Backend"

	jsonKeyStatus      = "status"
	jsonKeyTimestamp   = "timestamp"
	jsonKeyService     = "service"
	healthStatusValue  = "healthy"
	errorValueNotFound = "Endpoint not found"
)

// HealthCheck answers the liveness probe without touching the store.
func HealthCheck(ginContext *gin.Context) {
	ginContext.JSON(http.StatusOK, gin.H{
		jsonKeyStatus:    healthStatusValue,
		jsonKeyTimestamp: time.Now().UTC().Format(time.RFC3339),
		jsonKeyService:   ServiceName,
	})
}

// NotFound answers requests for unknown routes.
func NotFound(ginContext *gin.Context) {
	ginContext.JSON(http.StatusNotFound, gin.H{
		jsonKeySuccess: false,
		jsonKeyError:   errorValueNotFound,
	})
}
