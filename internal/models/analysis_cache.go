package models

import "time"

// AnalysisCache stores a classification result keyed by the SHA-256 of the
// normalized complaint text.
type AnalysisCache struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	TextHash       string    `gorm:"size:64;uniqueIndex;not null" json:"text_hash"`
	Category       string    `gorm:"size:100" json:"category"`
	Priority       string    `gorm:"size:20" json:"priority"`
	Department     string    `gorm:"size:200" json:"department"`
	Type           string    `gorm:"size:100" json:"type"`
	Confidence     float64   `json:"confidence"`
	Sentiment      string    `gorm:"size:20" json:"sentiment"`
	SentimentScore float64   `json:"sentiment_score"`
	Keywords       string    `gorm:"type:text" json:"keywords"`        // JSON array
	CategoryScores string    `gorm:"type:text" json:"category_scores"` // JSON object
	HitCount       int       `gorm:"default:0" json:"hit_count"`
	ExpiresAt      time.Time `gorm:"index" json:"expires_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (AnalysisCache) TableName() string { return "analysis_caches" }
