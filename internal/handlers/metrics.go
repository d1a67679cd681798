package handlers

import (
	"sync"

	"github.com/complaintdesk/portal/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

var registerGaugesOnce sync.Once

// Metrics serves the default Prometheus registry, which also carries the
// upstream latency and outcome series. Gauges for SSE clients and local DB
// connections are registered on first use.
func Metrics(db *gorm.DB, hub *services.EventHub) gin.HandlerFunc {
	registerGaugesOnce.Do(func() {
		prometheus.MustRegister(
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Name: "complaintdesk_sse_active_clients",
				Help: "Number of active SSE connections",
			}, func() float64 { return float64(hub.ClientCount()) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Name: "complaintdesk_db_open_connections",
				Help: "Number of open local DB connections",
			}, func() float64 { return dbStat(db, func(open, _ int) int { return open }) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Name: "complaintdesk_db_in_use_connections",
				Help: "Number of in-use local DB connections",
			}, func() float64 { return dbStat(db, func(_, inUse int) int { return inUse }) }),
		)
	})
	return gin.WrapH(promhttp.Handler())
}

func dbStat(db *gorm.DB, pick func(open, inUse int) int) float64 {
	if db == nil {
		return 0
	}
	sqlDB, err := db.DB()
	if err != nil {
		return 0
	}
	stats := sqlDB.Stats()
	return float64(pick(stats.OpenConnections, stats.InUse))
}
