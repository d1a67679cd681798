package services

import (
	"context"
	"testing"
	"time"

	"github.com/complaintdesk/portal/internal/models"
)

func withActivityDB(t *testing.T) *ActivityLogService {
	t.Helper()
	db := newTestDB(t)
	InitActivityLog(db)
	t.Cleanup(func() { InitActivityLog(nil) })
	return NewActivityLogService(db)
}

func TestWriteActivity_RecordsRequestMeta(t *testing.T) {
	svc := withActivityDB(t)
	ctx := WithRequestMeta(context.Background(), RequestMeta{RequestID: "req-1", IP: "10.0.0.5", UserAgent: "test"})

	LogInfo(ctx, ModuleSubmit, "submit", "Complaint submitted", Fields{"complaint_id": "c-42", "priority": "High"})

	resp, err := svc.List(&ActivityListRequest{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if resp.Total != 1 {
		t.Fatalf("expected 1 log, got %d", resp.Total)
	}
	entry := resp.Items[0]
	if entry.ComplaintID != "c-42" || entry.RequestID != "req-1" || entry.IP != "10.0.0.5" {
		t.Errorf("unexpected entry %+v", entry)
	}
	if entry.Extra == "" {
		t.Error("extra should be stored as JSON")
	}
}

func TestActivityLogService_ListFilters(t *testing.T) {
	svc := withActivityDB(t)
	ctx := context.Background()

	LogInfo(ctx, ModuleAnalysis, "analyze", "Analysis complete", nil)
	LogError(ctx, ModuleAnalysis, "analyze", "Analyzer timeout", nil)
	LogWarning(ctx, ModuleComplaint, "update_status", "Invalid status", Fields{"complaint_id": "c-1"})

	tests := []struct {
		name     string
		req      ActivityListRequest
		expected int64
	}{
		{"no filter", ActivityListRequest{}, 3},
		{"by level", ActivityListRequest{Level: "error"}, 1},
		{"by module", ActivityListRequest{Module: ModuleAnalysis}, 2},
		{"by action substring", ActivityListRequest{Action: "status"}, 1},
		{"by complaint", ActivityListRequest{ComplaintID: "c-1"}, 1},
		{"by search", ActivityListRequest{Search: "timeout"}, 1},
		{"from tomorrow", ActivityListRequest{StartDate: time.Now().AddDate(0, 0, 1).Format("2006-01-02")}, 0},
		{"until today", ActivityListRequest{EndDate: time.Now().Format("2006-01-02")}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			resp, err := svc.List(&req)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if resp.Total != tt.expected {
				t.Errorf("Total = %d, expected %d", resp.Total, tt.expected)
			}
		})
	}
}

func TestActivityLogService_Paging(t *testing.T) {
	svc := withActivityDB(t)
	for i := 0; i < 5; i++ {
		LogInfo(context.Background(), ModuleSystem, "tick", "tick", nil)
	}

	resp, err := svc.List(&ActivityListRequest{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Total != 5 || len(resp.Items) != 2 || resp.Page != 2 {
		t.Errorf("unexpected page %+v", resp)
	}
}

func TestActivityLogService_GetModules(t *testing.T) {
	svc := withActivityDB(t)
	LogInfo(context.Background(), ModuleSubmit, "submit", "a", nil)
	LogInfo(context.Background(), ModuleAnalysis, "analyze", "b", nil)
	LogInfo(context.Background(), ModuleSubmit, "submit", "c", nil)

	modules, err := svc.GetModules()
	if err != nil {
		t.Fatal(err)
	}
	if len(modules) != 2 || modules[0] != ModuleAnalysis {
		t.Errorf("unexpected modules %v", modules)
	}
}

func TestActivityLogService_CleanupOldLogs(t *testing.T) {
	svc := withActivityDB(t)
	old := &models.ActivityLog{Level: "info", Module: ModuleSystem, Action: "old", CreatedAt: time.Now().AddDate(0, 0, -40)}
	if err := svc.db.Create(old).Error; err != nil {
		t.Fatal(err)
	}
	LogInfo(context.Background(), ModuleSystem, "fresh", "fresh", nil)

	deleted, err := svc.CleanupOldLogs(30)
	if err != nil {
		t.Fatalf("CleanupOldLogs() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", deleted)
	}

	if n, _ := svc.CleanupOldLogs(0); n != 0 {
		t.Error("retention 0 should disable cleanup")
	}
}

func TestWriteActivity_NoDB(t *testing.T) {
	InitActivityLog(nil)
	LogInfo(context.Background(), ModuleSystem, "noop", "should not panic", nil)
}
