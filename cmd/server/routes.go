package main

import (
	"github.com/complaintdesk/portal/internal/handlers"
	"github.com/complaintdesk/portal/internal/middleware"
	"github.com/complaintdesk/portal/internal/models"
	"github.com/complaintdesk/portal/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(middleware.RequestID(), logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS(svc.cfg.CORS.AllowedOrigins))

	// Liveness and metrics
	r.GET("/health", svc.healthHandler.Live)
	r.GET("/metrics", handlers.Metrics(models.GetDB(), svc.hub))

	api := r.Group("/api")
	{
		// Analyzer calls are the expensive path
		limited := api.Group("")
		if svc.limiter != nil {
			limited.Use(svc.limiter.Middleware())
		}

		api.GET("/health", svc.healthHandler.CheckHealth)

		// Complaints
		complaintHandler := handlers.NewComplaintHandler(svc.complaints, svc.submission, svc.domains)
		api.GET("/complaints", complaintHandler.List)
		limited.POST("/complaints", complaintHandler.Submit)
		api.GET("/complaints/:id", complaintHandler.Get)
		api.PATCH("/complaints/:id", complaintHandler.UpdateStatus)
		api.DELETE("/complaints/:id", complaintHandler.Delete)

		// Analysis
		analyzeHandler := handlers.NewAnalyzeHandler(svc.submission)
		limited.POST("/analyze", analyzeHandler.Analyze)

		// Dashboard
		dashboardHandler := handlers.NewDashboardHandler(svc.dashboard, svc.domains)
		api.GET("/dashboard/stats", dashboardHandler.GetStats)

		// Analytics
		analyticsHandler := handlers.NewAnalyticsHandler(svc.analytics)
		api.GET("/analytics", analyticsHandler.GetReport)
		api.GET("/analytics/complaints/:id", analyticsHandler.GetComplaintAnalysis)

		// Domains
		domainHandler := handlers.NewDomainHandler(svc.domains)
		api.GET("/domains", domainHandler.List)
		api.GET("/domains/current", domainHandler.Current)
		api.PUT("/domains/current", domainHandler.Select)
		api.PUT("/domains/default", domainHandler.SetDefault)

		// Activity log
		activityHandler := handlers.NewActivityHandler(svc.activity, svc.maintenance)
		api.GET("/activity", activityHandler.List)
		api.GET("/activity/modules", activityHandler.GetModules)
		api.GET("/activity/retention", activityHandler.GetRetention)
		api.PUT("/activity/retention", activityHandler.UpdateRetention)
		api.POST("/activity/cleanup", activityHandler.Cleanup)

		// SSE events
		sseHandler := handlers.NewSSEHandler(svc.hub)
		api.GET("/events/complaints", sseHandler.StreamComplaintEvents)
	}
}
