package handlers

import (
	"context"
	"net/http"

	"github.com/complaintdesk/portal/internal/upstream"
	"github.com/complaintdesk/portal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UpstreamHealth reports on the persistence API and the analyzer.
type UpstreamHealth interface {
	Health(ctx context.Context) *upstream.HealthReport
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	db           *gorm.DB
	upstream     UpstreamHealth
	cacheBackend string
}

func NewHealthHandler(db *gorm.DB, upstream UpstreamHealth, cacheBackend string) *HealthHandler {
	return &HealthHandler{db: db, upstream: upstream, cacheBackend: cacheBackend}
}

// Live answers as long as the process serves requests
// GET /health
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "complaintdesk"})
}

// CheckHealth checks the local database and both upstream services. A failing
// upstream degrades the portal; a failing database makes it unhealthy.
// GET /api/health
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := upstream.StatusHealthy

	dbStatus := "ok"
	if h.db == nil {
		dbStatus = "error: not initialized"
		overall = upstream.StatusUnhealthy
	} else if sqlDB, err := h.db.DB(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = upstream.StatusUnhealthy
	} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		dbStatus = "error: " + err.Error()
		overall = upstream.StatusUnhealthy
	}

	report := h.upstream.Health(c.Request.Context())
	if overall == upstream.StatusHealthy && report.Status != upstream.StatusHealthy {
		overall = upstream.StatusDegraded
	}

	data := gin.H{
		"status":   overall,
		"service":  "complaintdesk",
		"database": dbStatus,
		"cache":    h.cacheBackend,
		"upstream": report,
	}

	if overall == upstream.StatusUnhealthy {
		c.JSON(http.StatusServiceUnavailable, response.Response{Code: 503, Message: "unhealthy", Data: data})
		return
	}
	response.Success(c, data)
}
