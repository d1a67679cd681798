package upstream

import (
	"context"
	"net/http"
	"strings"

	"github.com/complaintdesk/portal/internal/models"
)

// Analyze sends text to the classification service. Both the enveloped
// {success, data} shape and the bare object shape are accepted.
func (c *Client) Analyze(ctx context.Context, text string) (*models.Analysis, error) {
	res, err := c.do(ctx, c.analyzerHTTP, call{
		service:  ServiceAnalyzer,
		op:       "analyze",
		method:   http.MethodPost,
		url:      c.AnalyzerURL(),
		body:     map[string]string{c.analyzer.TextField: text},
		fallback: "Failed to analyze complaint",
	})
	if err != nil {
		return nil, err
	}

	payload := res
	if data := res.Get("data"); data.IsObject() {
		payload = data
	}
	if !payload.IsObject() {
		return nil, &APIError{Service: ServiceAnalyzer, Op: "analyze", StatusCode: http.StatusOK, Message: "Failed to analyze complaint"}
	}

	a := decodeAnalysis(payload)
	if strings.TrimSpace(a.Category) == "" && strings.TrimSpace(a.Priority) == "" &&
		strings.TrimSpace(a.Department) == "" && strings.TrimSpace(a.Type) == "" {
		return nil, &APIError{Service: ServiceAnalyzer, Op: "analyze", StatusCode: http.StatusOK, Message: "Analysis returned no classification"}
	}
	return a, nil
}
