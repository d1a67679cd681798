package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upstreamStub struct {
	mu      sync.Mutex
	posted  []map[string]interface{}
	patched string
}

func (u *upstreamStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()

	switch {
	case r.URL.Path == "/analyze":
		io.WriteString(w, `{"category":"Hostel","priority":"high","department":"Facilities","type":"Maintenance","confidence":0.75}`)
	case r.URL.Path == "/health" || r.URL.Path == "/api/health":
		io.WriteString(w, `{"status":"ok"}`)
	case r.URL.Path == "/api/complaints" && r.Method == http.MethodGet:
		io.WriteString(w, `[
			{"_id":"a","title":"Fan broken","description":"Fan broken","priority":"High","status":"Pending","createdAt":"2024-03-01T10:00:00Z"},
			{"_id":"b","title":"Tap leaking","description":"Tap leaking","priority":"Low","status":"Resolved","createdAt":"2024-03-02T10:00:00Z"}
		]`)
	case r.URL.Path == "/api/complaints" && r.Method == http.MethodPost:
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		u.posted = append(u.posted, body)
		body["_id"] = "new-1"
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(body)
	case r.URL.Path == "/api/complaints/a":
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		u.patched = body["status"]
		io.WriteString(w, `{"_id":"a","title":"Fan broken","status":"`+body["status"]+`"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"message":"Complaint not found"}`)
	}
}

func execute(t *testing.T, stub http.Handler, args ...string) (string, error) {
	t.Helper()

	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)
	t.Setenv("BACKEND_URL", srv.URL)
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	configPath = os.Getenv("CONFIG_PATH")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSubmitFillsBlankFieldsFromAnalysis(t *testing.T) {
	stub := &upstreamStub{}
	out, err := execute(t, stub, "submit", "--category", "Library", "--title", "Noise", "Loud music at night")
	require.NoError(t, err)

	assert.Contains(t, out, "Complaint submitted successfully")
	assert.Contains(t, out, "new-1")
	require.Len(t, stub.posted, 1)
	assert.Equal(t, "Library", stub.posted[0]["category"])
	assert.Equal(t, "High", stub.posted[0]["priority"])
	assert.Equal(t, "Facilities", stub.posted[0]["department"])
	assert.Equal(t, "Pending", stub.posted[0]["status"])
}

func TestSubmitBlankDescription(t *testing.T) {
	stub := &upstreamStub{}
	submitForm.Description = ""
	_, err := execute(t, stub, "submit", "   ")
	require.Error(t, err)
	assert.Equal(t, "Please enter a complaint description", err.Error())
	assert.Empty(t, stub.posted)
}

func TestAnalyzeRendersTable(t *testing.T) {
	out, err := execute(t, &upstreamStub{}, "analyze", "Water leaking in hostel")
	require.NoError(t, err)
	assert.Contains(t, out, "Hostel")
	assert.Contains(t, out, "75%")
}

func TestListNewestFirst(t *testing.T) {
	out, err := execute(t, &upstreamStub{}, "list")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "Tap leaking"), strings.Index(out, "Fan broken"))
}

func TestStats(t *testing.T) {
	out, err := execute(t, &upstreamStub{}, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "50%")
}

func TestStatusUpdate(t *testing.T) {
	stub := &upstreamStub{}
	out, err := execute(t, stub, "status", "a", "in progress")
	require.NoError(t, err)
	assert.Equal(t, "In Progress", stub.patched)
	assert.Contains(t, out, "Status updated to In Progress")

	_, err = execute(t, stub, "status", "a", "Escalated")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status")
}

func TestHealth(t *testing.T) {
	out, err := execute(t, &upstreamStub{}, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "Overall: healthy")
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	out, err := execute(t, &upstreamStub{}, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend")

	_, err = execute(t, &upstreamStub{}, "config", "init", path)
	assert.Error(t, err)
}
