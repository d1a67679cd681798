package handlers

import (
	"strings"

	"github.com/complaintdesk/portal/internal/services"
	"github.com/complaintdesk/portal/pkg/response"
	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analytics *services.AnalyticsService
}

func NewAnalyticsHandler(analytics *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

type analyticsRequest struct {
	Days    int  `form:"days" binding:"omitempty,min=1,max=90"`
	Refresh bool `form:"refresh"`
}

// GetReport returns chart data built from the live complaint list
// GET /api/analytics
func (h *AnalyticsHandler) GetReport(c *gin.Context) {
	var req analyticsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "days must be between 1 and 90")
		return
	}

	report, err := h.analytics.Report(c.Request.Context(), req.Days, req.Refresh)
	if err != nil {
		respondError(c, err, "", "Failed to load analytics")
		return
	}
	response.Success(c, report)
}

// GET /api/analytics/complaints/:id
func (h *AnalyticsHandler) GetComplaintAnalysis(c *gin.Context) {
	insight, err := h.analytics.ComplaintAnalysis(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		respondError(c, err, "", "Failed to load complaint analysis")
		return
	}
	response.Success(c, insight)
}
