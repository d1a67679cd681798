package services

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/complaintdesk/portal/internal/models"
	"github.com/complaintdesk/portal/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnalysisCacheService dedups classification calls by text hash.
type AnalysisCacheService struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewAnalysisCacheService returns a cache; a nil db or non-positive ttl disables it.
func NewAnalysisCacheService(db *gorm.DB, ttl time.Duration) *AnalysisCacheService {
	return &AnalysisCacheService{db: db, ttl: ttl, now: time.Now}
}

func (s *AnalysisCacheService) enabled() bool {
	return s != nil && s.db != nil && s.ttl > 0
}

// ComputeTextHash returns the SHA-256 hex digest of the case- and
// whitespace-normalized text.
func ComputeTextHash(text string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	h := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", h)
}

// Find returns a live cached analysis for text, or nil.
func (s *AnalysisCacheService) Find(text string) *models.Analysis {
	if !s.enabled() {
		return nil
	}
	hash := ComputeTextHash(text)

	var entry models.AnalysisCache
	err := s.db.Where("text_hash = ? AND expires_at > ?", hash, s.now()).First(&entry).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn().Err(err).Msg("[AnalysisCache] lookup failed")
		}
		return nil
	}

	s.db.Model(&entry).UpdateColumn("hit_count", gorm.Expr("hit_count + 1"))
	logger.Debug().Str("hash", hash[:8]).Int("hits", entry.HitCount+1).Msg("[AnalysisCache] hit")

	a := &models.Analysis{
		Category:       entry.Category,
		Priority:       entry.Priority,
		Department:     entry.Department,
		Type:           entry.Type,
		Confidence:     entry.Confidence,
		Sentiment:      entry.Sentiment,
		SentimentScore: entry.SentimentScore,
	}
	if entry.Keywords != "" {
		_ = json.Unmarshal([]byte(entry.Keywords), &a.Keywords)
	}
	if entry.CategoryScores != "" {
		_ = json.Unmarshal([]byte(entry.CategoryScores), &a.CategoryScores)
	}
	return a
}

// Store upserts the analysis for text.
func (s *AnalysisCacheService) Store(text string, a *models.Analysis) {
	if !s.enabled() || a == nil {
		return
	}

	entry := models.AnalysisCache{
		TextHash:       ComputeTextHash(text),
		Category:       a.Category,
		Priority:       a.Priority,
		Department:     a.Department,
		Type:           a.Type,
		Confidence:     a.Confidence,
		Sentiment:      a.Sentiment,
		SentimentScore: a.SentimentScore,
		ExpiresAt:      s.now().Add(s.ttl),
	}
	if len(a.Keywords) > 0 {
		if b, err := json.Marshal(a.Keywords); err == nil {
			entry.Keywords = string(b)
		}
	}
	if len(a.CategoryScores) > 0 {
		if b, err := json.Marshal(a.CategoryScores); err == nil {
			entry.CategoryScores = string(b)
		}
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "text_hash"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"category", "priority", "department", "type", "confidence",
			"sentiment", "sentiment_score", "keywords", "category_scores",
			"expires_at", "updated_at",
		}),
	}).Create(&entry).Error
	if err != nil {
		logger.Warn().Err(err).Msg("[AnalysisCache] store failed")
	}
}

// PruneExpired deletes expired entries and returns the count.
func (s *AnalysisCacheService) PruneExpired() (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	result := s.db.Where("expires_at <= ?", s.now()).Delete(&models.AnalysisCache{})
	return result.RowsAffected, result.Error
}
