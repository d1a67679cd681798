package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/complaintdesk/portal/internal/models"
	"github.com/complaintdesk/portal/pkg/logger"
	"gorm.io/gorm"
)

// Activity modules
const (
	ModuleAnalysis  = "analysis"
	ModuleSubmit    = "submission"
	ModuleComplaint = "complaint"
	ModuleDomain    = "domain"
	ModuleSystem    = "system"
)

// Fields is extra context stored as JSON. A "complaint_id" string is also
// copied into its own column.
type Fields map[string]interface{}

// RequestMeta identifies who triggered an action.
type RequestMeta struct {
	RequestID string
	IP        string
	UserAgent string
}

type requestMetaKey struct{}

func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

func RequestMetaFrom(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta
}

var activityDB *gorm.DB

func InitActivityLog(db *gorm.DB) {
	activityDB = db
}

func LogInfo(ctx context.Context, module, action, message string, extra Fields) {
	writeActivity(ctx, "info", module, action, message, extra)
}

func LogWarning(ctx context.Context, module, action, message string, extra Fields) {
	writeActivity(ctx, "warning", module, action, message, extra)
}

func LogError(ctx context.Context, module, action, message string, extra Fields) {
	writeActivity(ctx, "error", module, action, message, extra)
}

func writeActivity(ctx context.Context, level, module, action, message string, extra Fields) {
	if activityDB == nil {
		return
	}

	var extraStr, complaintID string
	if len(extra) > 0 {
		if id, ok := extra["complaint_id"].(string); ok {
			complaintID = id
		}
		if b, err := json.Marshal(extra); err == nil {
			extraStr = string(b)
		}
	}

	meta := RequestMetaFrom(ctx)
	entry := &models.ActivityLog{
		Level:       level,
		Module:      module,
		Action:      action,
		Message:     message,
		ComplaintID: complaintID,
		RequestID:   meta.RequestID,
		IP:          meta.IP,
		UserAgent:   meta.UserAgent,
		Extra:       extraStr,
		CreatedAt:   time.Now(),
	}
	if err := activityDB.Create(entry).Error; err != nil {
		logger.Warn().Err(err).Str("action", action).Msg("[Activity] failed to write log")
	}
}

type ActivityLogService struct {
	db *gorm.DB
}

func NewActivityLogService(db *gorm.DB) *ActivityLogService {
	return &ActivityLogService{db: db}
}

type ActivityListRequest struct {
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Level       string `form:"level"`
	Module      string `form:"module"`
	Action      string `form:"action"`
	ComplaintID string `form:"complaint_id"`
	StartDate   string `form:"start_date"`
	EndDate     string `form:"end_date"`
	Search      string `form:"search"`
}

type ActivityListResponse struct {
	Total    int64                `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
	Items    []models.ActivityLog `json:"items"`
}

func (s *ActivityLogService) List(req *ActivityListRequest) (*ActivityListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	var logs []models.ActivityLog
	var total int64

	query := s.db.Model(&models.ActivityLog{})

	if req.Level != "" {
		query = query.Where("level = ?", req.Level)
	}
	if req.Module != "" {
		query = query.Where("module = ?", req.Module)
	}
	if req.Action != "" {
		query = query.Where("action LIKE ?", "%"+req.Action+"%")
	}
	if req.ComplaintID != "" {
		query = query.Where("complaint_id = ?", req.ComplaintID)
	}
	if start, ok := parseDate(req.StartDate); ok {
		query = query.Where("created_at >= ?", start)
	}
	if end, ok := parseDate(req.EndDate); ok {
		query = query.Where("created_at < ?", end.AddDate(0, 0, 1))
	}
	if req.Search != "" {
		query = query.Where("message LIKE ?", "%"+req.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC, id DESC").Find(&logs).Error; err != nil {
		return nil, err
	}

	return &ActivityListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    logs,
	}, nil
}

func (s *ActivityLogService) GetModules() ([]string, error) {
	var modules []string
	if err := s.db.Model(&models.ActivityLog{}).Distinct("module").Order("module").Pluck("module", &modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

// CleanupOldLogs deletes entries older than retentionDays and returns the count.
func (s *ActivityLogService) CleanupOldLogs(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.Where("created_at < ?", cutoff).Delete(&models.ActivityLog{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
