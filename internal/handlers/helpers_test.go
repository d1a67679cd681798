package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/complaintdesk/portal/internal/config"
	"github.com/complaintdesk/portal/internal/models"
	"github.com/complaintdesk/portal/internal/services"
	"github.com/complaintdesk/portal/internal/upstream"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeBackend imitates the persistence API and the analyzer on one server.
type fakeBackend struct {
	mu          sync.Mutex
	complaints  []map[string]interface{}
	nextID      int
	analyzeCode int
	analyzeBody string
	analyzeHits int
	down        bool
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.down {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"Database connection lost"}`)
		return
	}

	switch {
	case r.URL.Path == "/analyze":
		f.analyzeHits++
		if f.analyzeCode != 0 {
			w.WriteHeader(f.analyzeCode)
		}
		io.WriteString(w, f.analyzeBody)
	case r.URL.Path == "/health" || r.URL.Path == "/api/health":
		io.WriteString(w, `{"status":"ok"}`)
	case r.URL.Path == "/api/complaints" && r.Method == http.MethodGet:
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": f.complaints})
	case r.URL.Path == "/api/complaints" && r.Method == http.MethodPost:
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		f.nextID++
		body["_id"] = fmt.Sprintf("id-%d", f.nextID)
		f.complaints = append(f.complaints, body)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": body})
	case strings.HasPrefix(r.URL.Path, "/api/complaints/"):
		id := strings.TrimPrefix(r.URL.Path, "/api/complaints/")
		idx := -1
		for i, c := range f.complaints {
			if c["_id"] == id {
				idx = i
			}
		}
		if idx < 0 {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"success":false,"message":"Complaint not found"}`)
			return
		}
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(f.complaints[idx])
		case http.MethodPatch:
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			f.complaints[idx]["status"] = body["status"]
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": f.complaints[idx]})
		case http.MethodDelete:
			f.complaints = append(f.complaints[:idx], f.complaints[idx+1:]...)
			io.WriteString(w, `{"success":true}`)
		}
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeBackend) setAnalyze(code int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyzeCode, f.analyzeBody = code, body
}

func (f *fakeBackend) setDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

func (f *fakeBackend) stored() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.complaints)
}

func (f *fakeBackend) analyzeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.analyzeHits
}

func (f *fakeBackend) add(c map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.complaints = append(f.complaints, c)
}

type testEnv struct {
	backend    *fakeBackend
	router     *gin.Engine
	db         *gorm.DB
	client     *upstream.Client
	hub        *services.EventHub
	domains    *services.DomainService
	complaints *services.ComplaintService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	backend := &fakeBackend{
		analyzeBody: `{"success":true,"data":{"category":"IT","priority":"High","department":"IT Services","type":"Infrastructure","confidence":0.9}}`,
	}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	db, err := models.Open(&config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}, gormlogger.Silent)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	services.InitActivityLog(db)
	t.Cleanup(func() {
		services.InitActivityLog(nil)
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	client := upstream.NewClient(
		config.BackendConfig{BaseURL: srv.URL, TimeoutSeconds: 2},
		config.AnalyzerConfig{TimeoutSeconds: 2},
	)
	hub := services.NewEventHub()
	configs := services.NewSystemConfigService(db)
	domains := services.NewDomainService(configs, "college")
	complaints := services.NewComplaintService(client, nil, hub)
	submission := services.NewSubmissionService(client, client, services.NewAnalysisCacheService(db, 0), complaints, config.SubmissionConfig{AutoAnalyze: true})
	activity := services.NewActivityLogService(db)
	maintenance := services.NewMaintenanceService(activity, nil, configs, "", 30)

	r := gin.New()
	api := r.Group("/api")

	complaintHandler := NewComplaintHandler(complaints, submission, domains)
	api.GET("/complaints", complaintHandler.List)
	api.POST("/complaints", complaintHandler.Submit)
	api.GET("/complaints/:id", complaintHandler.Get)
	api.PATCH("/complaints/:id", complaintHandler.UpdateStatus)
	api.DELETE("/complaints/:id", complaintHandler.Delete)

	api.POST("/analyze", NewAnalyzeHandler(submission).Analyze)
	api.GET("/dashboard/stats", NewDashboardHandler(services.NewDashboardService(complaints), domains).GetStats)

	analyticsHandler := NewAnalyticsHandler(services.NewAnalyticsService(complaints))
	api.GET("/analytics", analyticsHandler.GetReport)
	api.GET("/analytics/complaints/:id", analyticsHandler.GetComplaintAnalysis)

	domainHandler := NewDomainHandler(domains)
	api.GET("/domains", domainHandler.List)
	api.GET("/domains/current", domainHandler.Current)
	api.PUT("/domains/current", domainHandler.Select)
	api.PUT("/domains/default", domainHandler.SetDefault)

	activityHandler := NewActivityHandler(activity, maintenance)
	api.GET("/activity", activityHandler.List)
	api.GET("/activity/modules", activityHandler.GetModules)
	api.GET("/activity/retention", activityHandler.GetRetention)
	api.PUT("/activity/retention", activityHandler.UpdateRetention)
	api.POST("/activity/cleanup", activityHandler.Cleanup)

	healthHandler := NewHealthHandler(db, client, complaints.CacheBackend())
	r.GET("/health", healthHandler.Live)
	api.GET("/health", healthHandler.CheckHealth)

	return &testEnv{
		backend:    backend,
		router:     r,
		db:         db,
		client:     client,
		hub:        hub,
		domains:    domains,
		complaints: complaints,
	}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, cookies ...*http.Cookie) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		if c != nil {
			req.AddCookie(c)
		}
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}
