package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/complaintdesk/portal/internal/models"
	"github.com/complaintdesk/portal/pkg/logger"
	"github.com/robfig/cron/v3"
)

// MaintenanceService periodically trims the activity log and the analysis cache.
type MaintenanceService struct {
	activity         *ActivityLogService
	analysisCache    *AnalysisCacheService
	configs          *SystemConfigService
	spec             string
	defaultRetention int

	mu            sync.Mutex
	cronScheduler *cron.Cron
	entryID       cron.EntryID
}

type MaintenanceResult struct {
	RetentionDays   int   `json:"retention_days"`
	ActivityDeleted int64 `json:"activity_deleted"`
	CacheDeleted    int64 `json:"cache_deleted"`
}

func NewMaintenanceService(activity *ActivityLogService, analysisCache *AnalysisCacheService, configs *SystemConfigService, spec string, defaultRetention int) *MaintenanceService {
	if spec == "" {
		spec = "@daily"
	}
	return &MaintenanceService{
		activity:         activity,
		analysisCache:    analysisCache,
		configs:          configs,
		spec:             spec,
		defaultRetention: defaultRetention,
	}
}

func (s *MaintenanceService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cronScheduler != nil {
		return nil
	}

	c := cron.New()
	id, err := c.AddFunc(s.spec, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			logger.Error().Err(err).Msg("[Maintenance] cleanup failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", s.spec, err)
	}

	s.cronScheduler = c
	s.entryID = id
	c.Start()
	logger.Infof("[Maintenance] Scheduler started (%s)", s.spec)
	return nil
}

// Stop waits for a running job to finish.
func (s *MaintenanceService) Stop() {
	s.mu.Lock()
	c := s.cronScheduler
	s.cronScheduler = nil
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
		logger.Info().Msg("[Maintenance] Scheduler stopped")
	}
}

// RetentionDays is the stored retention, or the configured default.
func (s *MaintenanceService) RetentionDays() int {
	if s.configs == nil {
		return s.defaultRetention
	}
	return s.configs.GetInt(models.ConfigActivityRetentionDays, s.defaultRetention)
}

func (s *MaintenanceService) SetRetentionDays(days int) error {
	if days < 0 {
		return fmt.Errorf("retention days must not be negative")
	}
	if s.configs == nil {
		return fmt.Errorf("system config store not initialized")
	}
	return s.configs.Set(models.ConfigActivityRetentionDays, fmt.Sprintf("%d", days))
}

// RunOnce performs one cleanup pass.
func (s *MaintenanceService) RunOnce(ctx context.Context) (*MaintenanceResult, error) {
	result := &MaintenanceResult{RetentionDays: s.RetentionDays()}

	if s.activity != nil {
		n, err := s.activity.CleanupOldLogs(result.RetentionDays)
		if err != nil {
			return result, fmt.Errorf("cleanup activity logs: %w", err)
		}
		result.ActivityDeleted = n
	}

	n, err := s.analysisCache.PruneExpired()
	if err != nil {
		return result, fmt.Errorf("prune analysis cache: %w", err)
	}
	result.CacheDeleted = n

	if result.ActivityDeleted > 0 || result.CacheDeleted > 0 {
		logger.Info().
			Int64("activity_deleted", result.ActivityDeleted).
			Int64("cache_deleted", result.CacheDeleted).
			Msg("[Maintenance] cleanup complete")
		LogInfo(ctx, ModuleSystem, "cleanup", "Maintenance cleanup complete", Fields{
			"activity_deleted": result.ActivityDeleted,
			"cache_deleted":    result.CacheDeleted,
			"retention_days":   result.RetentionDays,
		})
	}
	return result, nil
}
