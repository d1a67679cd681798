package handlers

import (
	"net/http"
	"testing"

	"github.com/complaintdesk/portal/internal/models"
	"github.com/complaintdesk/portal/internal/services"
)

func TestAnalyzeHandler_MergesForm(t *testing.T) {
	env := newTestEnv(t)

	form := models.ComplaintForm{Description: "Projector not working", Category: "Academics", UserType: "Faculty/Staff"}
	w, resp := env.do(t, http.MethodPost, "/api/analyze", map[string]interface{}{"form": form})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp.Message != "Complaint analyzed successfully!" {
		t.Errorf("unexpected message %q", resp.Message)
	}

	var result services.AnalyzeResult
	decodeData(t, resp, &result)
	if result.Form.Category != "IT" {
		t.Errorf("AI category should replace the form value, got %q", result.Form.Category)
	}
	if result.Form.UserType != "Faculty/Staff" {
		t.Errorf("userType must not change, got %q", result.Form.UserType)
	}
	if result.Analysis.Confidence != 90 {
		t.Errorf("expected confidence 90, got %v", result.Analysis.Confidence)
	}
}

func TestAnalyzeHandler_TextOnly(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.do(t, http.MethodPost, "/api/analyze", map[string]string{"text": "Water leaking"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var result services.AnalyzeResult
	decodeData(t, resp, &result)
	if result.Form.Description != "Water leaking" || result.Form.UserType != "Student" {
		t.Errorf("unexpected form %+v", result.Form)
	}
}

func TestAnalyzeHandler_Errors(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		body     string
		text     string
		status   int
		expected string
	}{
		{"blank text", 0, "", "  ", http.StatusBadRequest, "Please enter a complaint description"},
		{"server message", 500, `{"error":"Model not loaded"}`, "x", http.StatusBadGateway, "Analysis Error: Model not loaded"},
		{"success false", 200, `{"success":false,"message":"Text too short"}`, "x", http.StatusBadGateway, "Analysis Error: Text too short"},
		{"no message", 503, ``, "x", http.StatusBadGateway, "Analysis Error: Failed to analyze complaint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.backend.setAnalyze(tt.code, tt.body)

			w, resp := env.do(t, http.MethodPost, "/api/analyze", map[string]string{"text": tt.text})
			if w.Code != tt.status {
				t.Errorf("status = %d, expected %d", w.Code, tt.status)
			}
			if resp.Message != tt.expected {
				t.Errorf("message = %q, expected %q", resp.Message, tt.expected)
			}
		})
	}
}
