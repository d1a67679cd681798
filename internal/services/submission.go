package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/complaintdesk/portal/internal/config"
	"github.com/complaintdesk/portal/internal/models"
	"github.com/complaintdesk/portal/internal/upstream"
	"github.com/complaintdesk/portal/pkg/logger"
)

var (
	ErrDescriptionRequired = errors.New("please enter a complaint description")
	ErrAnalysisFailed      = errors.New("analysis failed")
	ErrBackendUnavailable  = errors.New("backend unavailable")
	ErrSubmitFailed        = errors.New("submission failed")
)

type SubmissionService struct {
	store      ComplaintStore
	analyzer   Analyzer
	cache      *AnalysisCacheService
	complaints *ComplaintService
	cfg        config.SubmissionConfig
	now        func() time.Time
}

func NewSubmissionService(store ComplaintStore, analyzer Analyzer, cache *AnalysisCacheService, complaints *ComplaintService, cfg config.SubmissionConfig) *SubmissionService {
	if complaints == nil {
		complaints = NewComplaintService(store, nil, nil)
	}
	return &SubmissionService{
		store:      store,
		analyzer:   analyzer,
		cache:      cache,
		complaints: complaints,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Validate rejects forms with a blank description.
func (s *SubmissionService) Validate(form models.ComplaintForm) error {
	if strings.TrimSpace(form.Description) == "" {
		return ErrDescriptionRequired
	}
	return nil
}

// AnalyzeText classifies text, consulting the analysis cache first.
func (s *SubmissionService) AnalyzeText(ctx context.Context, text string) (*models.Analysis, bool, error) {
	if strings.TrimSpace(text) == "" {
		return nil, false, ErrDescriptionRequired
	}

	if cached := s.cache.Find(text); cached != nil {
		return cached, true, nil
	}

	started := time.Now()
	analysis, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		LogError(ctx, ModuleAnalysis, "analyze", upstream.UserMessage(err, "Failed to analyze complaint"), Fields{"error": err.Error()})
		return nil, false, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	s.cache.Store(text, analysis)
	logger.Info().
		Str("category", analysis.Category).
		Str("priority", analysis.Priority).
		Float64("confidence", analysis.Confidence).
		Dur("took", time.Since(started)).
		Msg("[Submission] analysis complete")
	LogInfo(ctx, ModuleAnalysis, "analyze", "Analysis complete", Fields{
		"category":   analysis.Category,
		"priority":   analysis.Priority,
		"confidence": analysis.Confidence,
	})
	return analysis, false, nil
}

type AnalyzeResult struct {
	Analysis *models.Analysis    `json:"analysis"`
	Form     models.ComplaintForm `json:"form"`
	Cached   bool                `json:"cached"`
}

// Analyze classifies the form's description and overwrites the AI-derived
// fields with the result. On error the caller keeps the original form.
func (s *SubmissionService) Analyze(ctx context.Context, form models.ComplaintForm) (*AnalyzeResult, error) {
	if err := s.Validate(form); err != nil {
		return nil, err
	}

	analysis, cached, err := s.AnalyzeText(ctx, form.Description)
	if err != nil {
		return nil, err
	}

	return &AnalyzeResult{
		Analysis: analysis,
		Form:     form.WithAnalysis(analysis),
		Cached:   cached,
	}, nil
}

type SubmitResult struct {
	Complaint *models.Complaint   `json:"complaint"`
	Form      models.ComplaintForm `json:"form"`
	Analyzed  bool                `json:"analyzed"`
}

// Submit fills any blank AI-derived fields from analysis (user values win)
// and posts the complaint. A failed analysis aborts the submission.
func (s *SubmissionService) Submit(ctx context.Context, form models.ComplaintForm, domain string) (*SubmitResult, error) {
	if err := s.Validate(form); err != nil {
		return nil, err
	}

	var analysis *models.Analysis
	if form.MissingAIFields() && s.cfg.AutoAnalyze {
		a, _, err := s.AnalyzeText(ctx, form.Description)
		if err != nil {
			LogWarning(ctx, ModuleSubmit, "submit", "Submission aborted: analysis failed", nil)
			return nil, err
		}
		form = form.FillMissing(a)
		analysis = a
	} else if !form.MissingAIFields() {
		form.AIAnalyzed = true
	}

	if s.cfg.HealthCheck {
		if err := s.store.CheckBackend(ctx); err != nil {
			LogError(ctx, ModuleSubmit, "health_check", "Backend unavailable before submission", Fields{"error": err.Error()})
			return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}
	}

	complaint := form.ToComplaint(domain, s.now())
	complaint.Analysis = analysis
	created, err := s.complaints.Create(ctx, complaint)
	if err != nil {
		LogError(ctx, ModuleSubmit, "submit", upstream.UserMessage(err, "Failed to submit complaint"), Fields{"error": err.Error()})
		return nil, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	logger.Info().Str("id", created.ID).Str("category", created.Category).Str("domain", domain).Msg("[Submission] complaint submitted")
	LogInfo(ctx, ModuleSubmit, "submit", "Complaint submitted successfully", Fields{
		"complaint_id": created.ID,
		"category":     created.Category,
		"priority":     created.Priority,
		"domain":       domain,
		"ai_analyzed":  created.AIAnalyzed,
	})

	return &SubmitResult{
		Complaint: created,
		Form:      models.NewComplaintForm(),
		Analyzed:  analysis != nil,
	}, nil
}
