package upstream

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

type ServiceHealth struct {
	Status    string `json:"status"`
	URL       string `json:"url"`
	LatencyMS int64  `json:"latency_ms"`
	Message   string `json:"message,omitempty"`
}

type HealthReport struct {
	Status   string                   `json:"status"`
	Services map[string]ServiceHealth `json:"services"`
}

// CheckBackend pings GET /api/health on the persistence API.
func (c *Client) CheckBackend(ctx context.Context) error {
	_, err := c.do(ctx, c.backendHTTP, call{
		service:  ServiceBackend,
		op:       "health",
		method:   http.MethodGet,
		url:      c.backend.BaseURL + "/api/health",
		fallback: "Backend unavailable",
	})
	return err
}

func (c *Client) CheckAnalyzer(ctx context.Context) error {
	_, err := c.do(ctx, c.analyzerHTTP, call{
		service:  ServiceAnalyzer,
		op:       "health",
		method:   http.MethodGet,
		url:      c.analyzer.BaseURL + c.analyzer.HealthPath,
		fallback: "Analyzer unavailable",
	})
	return err
}

// Health checks both services concurrently. A failing service never aborts
// the other check; it only lowers the overall status.
func (c *Client) Health(ctx context.Context) *HealthReport {
	checks := map[string]struct {
		url   string
		check func(context.Context) error
	}{
		ServiceBackend:  {c.backend.BaseURL + "/api/health", c.CheckBackend},
		ServiceAnalyzer: {c.analyzer.BaseURL + c.analyzer.HealthPath, c.CheckAnalyzer},
	}

	report := &HealthReport{Status: StatusHealthy, Services: make(map[string]ServiceHealth, len(checks))}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for name, chk := range checks {
		name, chk := name, chk
		g.Go(func() error {
			started := time.Now()
			err := chk.check(gctx)
			sh := ServiceHealth{Status: StatusHealthy, URL: chk.url, LatencyMS: time.Since(started).Milliseconds()}
			if err != nil {
				sh.Status = StatusUnhealthy
				sh.Message = UserMessage(err, err.Error())
			}
			mu.Lock()
			report.Services[name] = sh
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	down := 0
	for _, sh := range report.Services {
		if sh.Status != StatusHealthy {
			down++
		}
	}
	switch {
	case down == len(report.Services):
		report.Status = StatusUnhealthy
	case down > 0:
		report.Status = StatusDegraded
	}
	return report
}
