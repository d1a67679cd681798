// Package upstream talks to the two external services the portal fronts:
// the complaint persistence API and the classification service.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/complaintdesk/portal/internal/config"
	"github.com/complaintdesk/portal/pkg/logger"
	"github.com/tidwall/gjson"
)

const maxBodyBytes = 8 << 20

// Client is safe for concurrent use. It never retries: one call, one attempt.
type Client struct {
	backend      config.BackendConfig
	analyzer     config.AnalyzerConfig
	backendHTTP  *http.Client
	analyzerHTTP *http.Client
}

func NewClient(backend config.BackendConfig, analyzer config.AnalyzerConfig) *Client {
	if analyzer.BaseURL == "" {
		analyzer.BaseURL = backend.BaseURL
	}
	if analyzer.Path == "" {
		analyzer.Path = "/analyze"
	}
	if analyzer.TextField == "" {
		analyzer.TextField = "text"
	}
	if analyzer.HealthPath == "" {
		analyzer.HealthPath = "/health"
	}
	if backend.UpdateMethod == "" {
		backend.UpdateMethod = http.MethodPatch
	}
	return &Client{
		backend:      backend,
		analyzer:     analyzer,
		backendHTTP:  &http.Client{Timeout: timeoutOr(backend.Timeout(), 10*time.Second)},
		analyzerHTTP: &http.Client{Timeout: timeoutOr(analyzer.Timeout(), 30*time.Second)},
	}
}

// SetHTTPClient replaces the transport for both services.
func (c *Client) SetHTTPClient(h *http.Client) {
	c.backendHTTP = h
	c.analyzerHTTP = h
}

func (c *Client) BackendURL() string  { return c.backend.BaseURL }
func (c *Client) AnalyzerURL() string { return c.analyzer.BaseURL + c.analyzer.Path }

type call struct {
	service  string
	op       string
	method   string
	url      string
	body     interface{}
	fallback string
}

// do performs the request and returns the parsed body. Any non-2xx status,
// transport error, unparsable body or {"success": false} envelope is an *APIError.
func (c *Client) do(ctx context.Context, hc *http.Client, r call) (gjson.Result, error) {
	var reader io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return gjson.Result{}, fmt.Errorf("encode %s request: %w", r.op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, r.url, reader)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("build %s request: %w", r.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		observe(r.service, r.op, 0, started)
		logger.Warn().Err(err).Str("service", r.service).Str("op", r.op).Str("url", r.url).Msg("[Upstream] request failed")
		return gjson.Result{}, &APIError{Service: r.service, Op: r.op, Message: r.fallback, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	observe(r.service, r.op, resp.StatusCode, started)
	if err != nil {
		return gjson.Result{}, &APIError{Service: r.service, Op: r.op, StatusCode: resp.StatusCode, Message: r.fallback, Err: err}
	}

	logger.Debug().
		Str("service", r.service).
		Str("op", r.op).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(started)).
		Msg("[Upstream] call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Service:    r.service,
			Op:         r.op,
			StatusCode: resp.StatusCode,
			Message:    MessageOf(body, r.fallback),
		}
		if resp.StatusCode == http.StatusNotFound && r.service == ServiceBackend {
			apiErr.Err = ErrNotFound
		}
		logger.Warn().Str("service", r.service).Str("op", r.op).Int("status", resp.StatusCode).Str("message", apiErr.Message).Msg("[Upstream] non-2xx response")
		return gjson.Result{}, apiErr
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return gjson.Result{}, nil
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, &APIError{Service: r.service, Op: r.op, StatusCode: resp.StatusCode, Message: r.fallback, Err: fmt.Errorf("invalid JSON response")}
	}

	res := gjson.ParseBytes(body)
	if s := res.Get("success"); s.Exists() && !s.Bool() {
		return gjson.Result{}, &APIError{
			Service:    r.service,
			Op:         r.op,
			StatusCode: resp.StatusCode,
			Message:    MessageOf(body, r.fallback),
		}
	}
	return res, nil
}

// unwrap returns data for {success, data} envelopes and the value itself otherwise.
func unwrap(res gjson.Result) gjson.Result {
	if !res.IsObject() {
		return res
	}
	data := res.Get("data")
	if data.Exists() && (res.Get("success").Exists() || !looksLikeComplaint(res)) {
		return data
	}
	return res
}

func timeoutOr(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
