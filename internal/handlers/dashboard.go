package handlers

import (
	"github.com/complaintdesk/portal/internal/services"
	"github.com/complaintdesk/portal/pkg/response"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
	domains   *services.DomainService
}

func NewDashboardHandler(dashboard *services.DashboardService, domains *services.DomainService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, domains: domains}
}

type dashboardStatsRequest struct {
	Refresh bool `form:"refresh"`
}

// GetStats returns the dashboard counters, the newest complaints and the selected domain
// GET /api/dashboard/stats
func (h *DashboardHandler) GetStats(c *gin.Context) {
	var req dashboardStatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	stats, err := h.dashboard.Stats(c.Request.Context(), req.Refresh)
	if err != nil {
		respondError(c, err, "", "Failed to load complaints. Please try again.")
		return
	}

	response.Success(c, gin.H{
		"stats":  stats,
		"domain": currentDomain(c, h.domains),
	})
}
