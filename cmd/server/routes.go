package main

import (
	"github.com/gin-gonic/gin"

	"github.com/MarkoPoloResearchLab/contact_svc/internal/httpapi"
)

const (
	healthRoute             = "/health"
	contactRoutePrefix      = "/api/v1/contact"
	contactRouteSubmit      = "/submit"
	contactRouteDeleteEmail = "/delete/:email"
	contactRouteCleanup     = "/cleanup"
)

func registerRoutes(router *gin.Engine, contactHandlers *httpapi.ContactHandlers, adminAPIKey string) {
	router.GET(healthRoute, httpapi.HealthCheck)
	router.NoRoute(httpapi.NotFound)

	contactGroup := router.Group(contactRoutePrefix)
	contactGroup.POST(contactRouteSubmit, contactHandlers.SubmitContact)

	adminGroup := contactGroup.Group("")
	adminGroup.Use(httpapi.AdminKeyMiddleware(adminAPIKey))
	adminGroup.DELETE(contactRouteDeleteEmail, contactHandlers.DeleteByEmail)
	adminGroup.POST(contactRouteCleanup, contactHandlers.CleanupOldRecords)
}
