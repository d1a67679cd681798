package upstream

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// Service names used in errors, logs and metric labels.
const (
	ServiceBackend  = "backend"
	ServiceAnalyzer = "analyzer"
)

// ErrNotFound is wrapped by APIError when the persistence API answers 404.
var ErrNotFound = errors.New("complaint not found")

// APIError describes a failed upstream call. Network failures and non-2xx
// responses both end up here.
type APIError struct {
	Service    string
	Op         string
	StatusCode int    // 0 when the request never got a response
	Message    string // server-provided message, or the operation fallback
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		if e.Err != nil {
			return fmt.Sprintf("%s %s: %s: %v", e.Service, e.Op, e.Message, e.Err)
		}
		return fmt.Sprintf("%s %s: %s", e.Service, e.Op, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Service, e.Op, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Unreachable reports whether the request failed before any response.
func (e *APIError) Unreachable() bool {
	return e.StatusCode == 0
}

// MessageOf extracts the best-effort message from an error body:
// "error" (string), then "error.message", then "message", then fallback.
func MessageOf(body []byte, fallback string) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return fallback
	}
	res := gjson.ParseBytes(body)
	if e := res.Get("error"); e.Type == gjson.String && e.String() != "" {
		return e.String()
	}
	if m := res.Get("error.message"); m.Type == gjson.String && m.String() != "" {
		return m.String()
	}
	if m := res.Get("message"); m.Type == gjson.String && m.String() != "" {
		return m.String()
	}
	return fallback
}

// UserMessage returns the message to surface to a user for err.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
