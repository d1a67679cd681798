package upstream

import (
	"strings"
	"time"

	"github.com/complaintdesk/portal/internal/models"
	"github.com/tidwall/gjson"
)

// Field aliases seen across persistence API variants.
var (
	idKeys         = []string{"id", "_id.$oid", "_id"}
	departmentKeys = []string{"department", "assignedDepartment", "assigned_department"}
	contactKeys    = []string{"contactInfo", "contact_info", "contact"}
	userTypeKeys   = []string{"userType", "user_type", "role"}
	createdKeys    = []string{"createdAt.$date", "createdAt", "created_at", "timestamp"}
	confidenceKeys = []string{"confidence", "aiConfidence", "ai_confidence"}
	typeKeys       = []string{"type", "complaintType", "complaint_type"}
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC1123,
	time.RFC1123Z,
	"2006-01-02",
}

func looksLikeComplaint(res gjson.Result) bool {
	return first(res, idKeys...).Exists() || res.Get("description").Exists()
}

func first(res gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := res.Get(gjsonEscape(k)); v.Exists() && v.Type != gjson.Null {
			if v.Type == gjson.String && v.String() == "" {
				continue
			}
			return v
		}
	}
	return gjson.Result{}
}

// gjsonEscape keeps "$" literal; "." is still a path separator.
func gjsonEscape(path string) string {
	return strings.ReplaceAll(path, "$", `\$`)
}

func str(res gjson.Result, keys ...string) string {
	v := first(res, keys...)
	if !v.Exists() || v.IsObject() || v.IsArray() {
		return ""
	}
	return strings.TrimSpace(v.String())
}

func decodeComplaints(res gjson.Result) []models.Complaint {
	res = unwrap(res)
	if !res.IsArray() {
		// some variants nest the list under "complaints"
		if nested := res.Get("complaints"); nested.IsArray() {
			res = nested
		} else {
			return []models.Complaint{}
		}
	}
	items := res.Array()
	out := make([]models.Complaint, 0, len(items))
	for _, item := range items {
		if !item.IsObject() {
			continue
		}
		out = append(out, decodeComplaint(item))
	}
	return out
}

func decodeComplaint(res gjson.Result) models.Complaint {
	c := models.Complaint{
		ID:          str(res, idKeys...),
		Title:       str(res, "title"),
		Description: str(res, "description"),
		Category:    str(res, "category"),
		Priority:    models.NormalizePriority(str(res, "priority")),
		Department:  str(res, departmentKeys...),
		Type:        str(res, typeKeys...),
		ContactInfo: str(res, contactKeys...),
		UserType:    str(res, userTypeKeys...),
		Domain:      str(res, "domain"),
		Status:      str(res, "status"),
		AIAnalyzed:  first(res, "aiAnalyzed", "ai_analyzed").Bool(),
	}
	if c.Status == "" {
		c.Status = models.StatusPending
	} else if canonical, ok := models.NormalizeStatus(c.Status); ok {
		c.Status = canonical
	}
	if ts, ok := parseTime(first(res, createdKeys...)); ok {
		c.CreatedAt = &ts
	}

	if nested := first(res, "analysis", "aiAnalysis", "ai_analysis"); nested.IsObject() {
		c.Analysis = decodeAnalysis(nested)
	} else if first(res, "confidence", "aiConfidence", "ai_confidence", "sentiment", "keywords").Exists() {
		a := decodeAnalysis(res)
		// classification fields already live on the record
		a.Category, a.Priority, a.Department, a.Type = "", "", "", ""
		c.Analysis = a
	}
	if c.Analysis != nil {
		c.AIAnalyzed = true
	}
	return c
}

func decodeAnalysis(res gjson.Result) *models.Analysis {
	a := &models.Analysis{
		Category:       str(res, "category", "predicted_category"),
		Priority:       models.NormalizePriority(str(res, "priority", "predicted_priority")),
		Department:     str(res, departmentKeys...),
		Type:           str(res, typeKeys...),
		Confidence:     percent(first(res, confidenceKeys...).Float()),
		SentimentScore: first(res, "sentimentScore", "sentiment_score").Float(),
	}

	switch s := res.Get("sentiment"); {
	case s.IsObject():
		a.Sentiment = strings.ToLower(s.Get("label").String())
		if score := s.Get("score"); score.Exists() {
			a.SentimentScore = score.Float()
		}
	case s.Type == gjson.String:
		a.Sentiment = strings.ToLower(s.String())
	}

	for _, kw := range first(res, "keywords", "key_phrases").Array() {
		if k := strings.TrimSpace(kw.String()); k != "" {
			a.Keywords = append(a.Keywords, k)
		}
	}

	scores := first(res, "categoryScores", "category_scores", "probabilities")
	if scores.IsObject() {
		a.CategoryScores = make(map[string]float64)
		scores.ForEach(func(key, value gjson.Result) bool {
			a.CategoryScores[key.String()] = value.Float()
			return true
		})
	}
	return a
}

// percent accepts both 0-1 probabilities and 0-100 scores.
func percent(v float64) float64 {
	if v > 0 && v <= 1 {
		return v * 100
	}
	return v
}

func parseTime(v gjson.Result) (time.Time, bool) {
	switch v.Type {
	case gjson.Number:
		n := v.Int()
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), true
		}
		if n > 0 {
			return time.Unix(n, 0).UTC(), true
		}
	case gjson.String:
		raw := strings.TrimSpace(v.String())
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.UTC(), true
			}
		}
	}
	return time.Time{}, false
}
