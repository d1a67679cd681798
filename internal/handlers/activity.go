package handlers

import (
	"github.com/complaintdesk/portal/internal/services"
	"github.com/complaintdesk/portal/pkg/response"
	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	activity    *services.ActivityLogService
	maintenance *services.MaintenanceService
}

func NewActivityHandler(activity *services.ActivityLogService, maintenance *services.MaintenanceService) *ActivityHandler {
	return &ActivityHandler{activity: activity, maintenance: maintenance}
}

// GET /api/activity
func (h *ActivityHandler) List(c *gin.Context) {
	var req services.ActivityListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.activity.List(&req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, resp)
}

// GET /api/activity/modules
func (h *ActivityHandler) GetModules(c *gin.Context) {
	modules, err := h.activity.GetModules()
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"modules": modules})
}

// GET /api/activity/retention
func (h *ActivityHandler) GetRetention(c *gin.Context) {
	response.Success(c, gin.H{"retention_days": h.maintenance.RetentionDays()})
}

type updateRetentionRequest struct {
	RetentionDays *int `json:"retention_days" binding:"required"`
}

// UpdateRetention sets how many days of activity are kept; 0 keeps everything
// PUT /api/activity/retention
func (h *ActivityHandler) UpdateRetention(c *gin.Context) {
	var req updateRetentionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "retention_days is required")
		return
	}
	if err := h.maintenance.SetRetentionDays(*req.RetentionDays); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.SuccessWithMessage(c, "Retention updated", gin.H{"retention_days": *req.RetentionDays})
}

// Cleanup runs the retention job immediately
// POST /api/activity/cleanup
func (h *ActivityHandler) Cleanup(c *gin.Context) {
	result, err := h.maintenance.RunOnce(c.Request.Context())
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, result)
}
