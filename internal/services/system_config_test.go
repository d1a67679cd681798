package services

import (
	"testing"

	"github.com/complaintdesk/portal/internal/models"
)

func TestSystemConfigService_SetAndGet(t *testing.T) {
	svc := NewSystemConfigService(newTestDB(t))

	if _, err := svc.Get("missing"); err == nil {
		t.Error("expected error for missing key")
	}
	if got := svc.GetWithDefault("missing", "college"); got != "college" {
		t.Errorf("GetWithDefault = %q, expected college", got)
	}

	if err := svc.Set(models.ConfigDefaultDomain, "business"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := svc.Set(models.ConfigDefaultDomain, "healthcare"); err != nil {
		t.Fatalf("Set() update error = %v", err)
	}

	got, err := svc.Get(models.ConfigDefaultDomain)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "healthcare" {
		t.Errorf("Get() = %q, expected healthcare", got)
	}
}

func TestSystemConfigService_GetInt(t *testing.T) {
	db := newTestDB(t)
	if err := models.SeedDefaultData(db, "college", 45); err != nil {
		t.Fatal(err)
	}
	svc := NewSystemConfigService(db)

	if got := svc.GetInt(models.ConfigActivityRetentionDays, 30); got != 45 {
		t.Errorf("GetInt() = %d, expected 45", got)
	}
	svc.Set("bad_int", "abc")
	if got := svc.GetInt("bad_int", 7); got != 7 {
		t.Errorf("GetInt() on non-number = %d, expected default 7", got)
	}
}

func TestSystemConfigService_GetByGroup(t *testing.T) {
	db := newTestDB(t)
	models.SeedDefaultData(db, "college", 30)
	svc := NewSystemConfigService(db)

	configs, err := svc.GetByGroup("portal")
	if err != nil {
		t.Fatalf("GetByGroup() error = %v", err)
	}
	if len(configs) != 1 || configs[0].Key != models.ConfigDefaultDomain {
		t.Errorf("unexpected portal group %+v", configs)
	}
}

func TestSystemConfigService_NilDB(t *testing.T) {
	svc := NewSystemConfigService(nil)
	if got := svc.GetWithDefault("k", "v"); got != "v" {
		t.Errorf("expected default with nil db, got %q", got)
	}
	if err := svc.Set("k", "v"); err == nil {
		t.Error("expected error setting without db")
	}
}
