package main

import (
	"github.com/complaintdesk/portal/internal/config"
	"github.com/complaintdesk/portal/internal/handlers"
	"github.com/complaintdesk/portal/internal/middleware"
	"github.com/complaintdesk/portal/internal/models"
	"github.com/complaintdesk/portal/internal/services"
	"github.com/complaintdesk/portal/internal/upstream"
	"github.com/complaintdesk/portal/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg         *config.Config
	upstream    *upstream.Client
	listCache   services.ListCache
	hub         *services.EventHub
	complaints  *services.ComplaintService
	submission  *services.SubmissionService
	dashboard   *services.DashboardService
	analytics   *services.AnalyticsService
	domains     *services.DomainService
	activity    *services.ActivityLogService
	maintenance *services.MaintenanceService
	limiter     *middleware.RateLimiter

	healthHandler *handlers.HealthHandler
}

// bootstrap initializes all application dependencies: database, upstream client, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Seed default data
	if err := models.SeedDefaultData(models.GetDB(), cfg.Domain.Default, cfg.Activity.RetentionDays); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	services.InitActivityLog(models.GetDB())

	client := upstream.NewClient(cfg.Backend, cfg.Analyzer)
	listCache := services.NewListCache(cfg)
	hub := services.GetEventHub()

	complaints := services.NewComplaintService(client, listCache, hub)
	analysisCache := services.NewAnalysisCacheService(models.GetDB(), cfg.Cache.AnalysisTTL())
	submission := services.NewSubmissionService(client, client, analysisCache, complaints, cfg.Submission)
	configs := services.NewSystemConfigService(models.GetDB())
	activity := services.NewActivityLogService(models.GetDB())

	maintenance := services.NewMaintenanceService(activity, analysisCache, configs, cfg.Activity.CleanupSpec, cfg.Activity.RetentionDays)
	if err := maintenance.Start(); err != nil {
		logger.Warn().Err(err).Str("spec", cfg.Activity.CleanupSpec).Msg("Failed to start maintenance scheduler")
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	logger.Info().
		Str("backend", cfg.Backend.BaseURL).
		Str("analyzer", cfg.Analyzer.BaseURL+cfg.Analyzer.Path).
		Str("list_cache", listCache.Backend()).
		Msg("Services initialized")

	return &appServices{
		cfg:           cfg,
		upstream:      client,
		listCache:     listCache,
		hub:           hub,
		complaints:    complaints,
		submission:    submission,
		dashboard:     services.NewDashboardService(complaints),
		analytics:     services.NewAnalyticsService(complaints),
		domains:       services.NewDomainService(configs, cfg.Domain.Default),
		activity:      activity,
		maintenance:   maintenance,
		limiter:       limiter,
		healthHandler: handlers.NewHealthHandler(models.GetDB(), client, listCache.Backend()),
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.maintenance.Stop()
	logger.Info().Msg("Maintenance scheduler stopped")

	if s.limiter != nil {
		s.limiter.Stop()
	}
	if rc, ok := s.listCache.(*services.RedisListCache); ok {
		if err := rc.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close redis list cache")
		}
	}
}
