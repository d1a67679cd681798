package models

import (
	"strings"
	"time"
)

// Complaint statuses understood by the portal. The persistence API may report
// others (e.g. "Under Review"); those are displayed but cannot be set.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
	StatusRejected   = "Rejected"
)

const (
	PriorityLow      = "Low"
	PriorityMedium   = "Medium"
	PriorityHigh     = "High"
	PriorityCritical = "Critical"
)

const DefaultUserType = "Student"

var statuses = []string{StatusPending, StatusInProgress, StatusResolved, StatusRejected}

var priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Complaint is a record owned by the persistence API.
type Complaint struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Priority    string     `json:"priority"`
	Department  string     `json:"department"`
	Type        string     `json:"type"`
	ContactInfo string     `json:"contactInfo"`
	UserType    string     `json:"userType"`
	Domain      string     `json:"domain,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	AIAnalyzed  bool       `json:"aiAnalyzed"`
	Analysis    *Analysis  `json:"analysis,omitempty"`
}

// Analysis is what the classification service returns for a piece of text.
type Analysis struct {
	Category       string             `json:"category,omitempty"`
	Priority       string             `json:"priority,omitempty"`
	Department     string             `json:"department,omitempty"`
	Type           string             `json:"type,omitempty"`
	Confidence     float64            `json:"confidence"` // 0-100
	Sentiment      string             `json:"sentiment,omitempty"`
	SentimentScore float64            `json:"sentimentScore"`
	Keywords       []string           `json:"keywords,omitempty"`
	CategoryScores map[string]float64 `json:"categoryScores,omitempty"`
}

// IsOpen reports whether the complaint still needs attention.
func (c *Complaint) IsOpen() bool {
	return c.Status != StatusResolved && c.Status != StatusRejected
}

// IsCritical counts both High and Critical priority.
func (c *Complaint) IsCritical() bool {
	p := NormalizePriority(c.Priority)
	return p == PriorityHigh || p == PriorityCritical
}

// ComplaintForm is the submission form state.
type ComplaintForm struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	Department  string `json:"department"`
	Type        string `json:"type"`
	ContactInfo string `json:"contactInfo"`
	UserType    string `json:"userType"`
	AIAnalyzed  bool   `json:"aiAnalyzed"`
}

// NewComplaintForm returns a cleared form.
func NewComplaintForm() ComplaintForm {
	return ComplaintForm{UserType: DefaultUserType}
}

// WithAnalysis overwrites the AI-derived fields with non-empty values from a.
// UserType and the free-text fields are never touched.
func (f ComplaintForm) WithAnalysis(a *Analysis) ComplaintForm {
	if a == nil {
		return f
	}
	f.Category = pick(a.Category, f.Category)
	f.Priority = pick(NormalizePriority(a.Priority), f.Priority)
	f.Department = pick(a.Department, f.Department)
	f.Type = pick(a.Type, f.Type)
	f.AIAnalyzed = true
	return f
}

// FillMissing only fills AI-derived fields the user left empty.
func (f ComplaintForm) FillMissing(a *Analysis) ComplaintForm {
	if a == nil {
		return f
	}
	f.Category = pick(f.Category, a.Category)
	f.Priority = pick(f.Priority, NormalizePriority(a.Priority))
	f.Department = pick(f.Department, a.Department)
	f.Type = pick(f.Type, a.Type)
	f.AIAnalyzed = true
	return f
}

// MissingAIFields reports whether any AI-derived field is still blank.
func (f ComplaintForm) MissingAIFields() bool {
	return isBlank(f.Category) || isBlank(f.Priority) || isBlank(f.Department) || isBlank(f.Type)
}

// ToComplaint builds the record posted to the persistence API.
func (f ComplaintForm) ToComplaint(domain string, now time.Time) *Complaint {
	userType := strings.TrimSpace(f.UserType)
	if userType == "" {
		userType = DefaultUserType
	}
	created := now.UTC()
	return &Complaint{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Category:    f.Category,
		Priority:    NormalizePriority(f.Priority),
		Department:  f.Department,
		Type:        f.Type,
		ContactInfo: strings.TrimSpace(f.ContactInfo),
		UserType:    userType,
		Domain:      domain,
		Status:      StatusPending,
		CreatedAt:   &created,
		AIAnalyzed:  f.AIAnalyzed,
	}
}

// NormalizePriority maps case variants onto the canonical labels. Unknown
// values are returned trimmed.
func NormalizePriority(p string) string {
	p = strings.TrimSpace(p)
	for _, known := range priorities {
		if strings.EqualFold(p, known) {
			return known
		}
	}
	return p
}

// PriorityRank orders priorities for sorting, unknown ones last.
func PriorityRank(p string) int {
	switch NormalizePriority(p) {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// NormalizeStatus returns the canonical status and whether it is settable.
func NormalizeStatus(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, known := range statuses {
		if strings.EqualFold(s, known) {
			return known, true
		}
	}
	return s, false
}

func Statuses() []string {
	out := make([]string, len(statuses))
	copy(out, statuses)
	return out
}

func pick(primary, fallback string) string {
	if !isBlank(primary) {
		return primary
	}
	return fallback
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
