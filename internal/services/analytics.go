package services

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/complaintdesk/portal/internal/models"
)

const (
	DefaultTrendDays = 14
	MaxTrendDays     = 90
	topLimit         = 5
	keywordLimit     = 10
	unspecified      = "Unspecified"
)

// Bucket is one slice of a distribution chart.
type Bucket struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type SentimentCounts struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

type AIInsights struct {
	Sentiment         SentimentCounts `json:"sentiment"`
	Keywords          []Bucket        `json:"keywords"`
	AverageConfidence float64         `json:"averageConfidence"`
	AnalyzedCount     int             `json:"analyzedCount"`
	AnalyzedRatio     int             `json:"analyzedRatio"`
}

type AnalyticsReport struct {
	Total         int                `json:"total"`
	Categories    []Bucket           `json:"categories"`
	Statuses      []Bucket           `json:"statuses"`
	Priorities    []Bucket           `json:"priorities"`
	Departments   []Bucket           `json:"departments"`
	Trend         []TrendPoint       `json:"trend"`
	TopComplaints []models.Complaint `json:"topComplaints"`
	Insights      AIInsights         `json:"insights"`
}

type ComplaintInsight struct {
	Complaint    *models.Complaint `json:"complaint"`
	Analysis     *models.Analysis  `json:"analysis,omitempty"`
	SimilarCount int               `json:"similarCount"`
	DaysOpen     int               `json:"daysOpen"`
	Keywords     []string          `json:"keywords"`
}

type AnalyticsService struct {
	complaints *ComplaintService
	now        func() time.Time
}

func NewAnalyticsService(complaints *ComplaintService) *AnalyticsService {
	return &AnalyticsService{complaints: complaints, now: time.Now}
}

// Report builds every chart from the live complaint list.
func (s *AnalyticsService) Report(ctx context.Context, days int, refresh bool) (*AnalyticsReport, error) {
	list, err := s.complaints.List(ctx, refresh)
	if err != nil {
		return nil, err
	}
	return BuildReport(list, days, s.now()), nil
}

// BuildReport is Report without the fetch. days is clamped to [1, 90];
// zero means the default fortnight.
func BuildReport(list []models.Complaint, days int, now time.Time) *AnalyticsReport {
	return &AnalyticsReport{
		Total:         len(list),
		Categories:    distribution(list, func(c *models.Complaint) string { return c.Category }),
		Statuses:      distribution(list, func(c *models.Complaint) string { return c.Status }),
		Priorities:    priorityDistribution(list),
		Departments:   distribution(list, func(c *models.Complaint) string { return c.Department }),
		Trend:         Trend(list, days, now),
		TopComplaints: TopComplaints(list, topLimit),
		Insights:      Insights(list),
	}
}

func distribution(list []models.Complaint, key func(*models.Complaint) string) []Bucket {
	counts := make(map[string]int)
	for i := range list {
		name := strings.TrimSpace(key(&list[i]))
		if name == "" {
			name = unspecified
		}
		counts[name]++
	}
	return sortedBuckets(counts, 0)
}

// priorityDistribution keeps Critical..Low order so the chart reads top-down.
func priorityDistribution(list []models.Complaint) []Bucket {
	counts := make(map[string]int)
	for i := range list {
		p := models.NormalizePriority(list[i].Priority)
		if p == "" {
			p = unspecified
		}
		counts[p]++
	}
	out := make([]Bucket, 0, len(counts))
	for name, n := range counts {
		out = append(out, Bucket{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := models.PriorityRank(out[i].Name), models.PriorityRank(out[j].Name)
		if ri != rj {
			return ri > rj
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func sortedBuckets(counts map[string]int, limit int) []Bucket {
	out := make([]Bucket, 0, len(counts))
	for name, n := range counts {
		out = append(out, Bucket{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Trend counts complaints per UTC day for the last days days, oldest first.
// Days without complaints are present with a zero count.
func Trend(list []models.Complaint, days int, now time.Time) []TrendPoint {
	if days <= 0 {
		days = DefaultTrendDays
	}
	if days > MaxTrendDays {
		days = MaxTrendDays
	}

	today := now.UTC().Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -(days - 1))

	points := make([]TrendPoint, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i).Format("2006-01-02")
		points[i] = TrendPoint{Date: d}
		index[d] = i
	}

	for i := range list {
		if list[i].CreatedAt == nil {
			continue
		}
		if idx, ok := index[list[i].CreatedAt.UTC().Format("2006-01-02")]; ok {
			points[idx].Count++
		}
	}
	return points
}

// TopComplaints returns open complaints, highest priority first, then newest.
func TopComplaints(list []models.Complaint, n int) []models.Complaint {
	open := make([]models.Complaint, 0, len(list))
	for i := range list {
		if list[i].IsOpen() {
			open = append(open, list[i])
		}
	}
	open = Newest(open, -1)
	sort.SliceStable(open, func(i, j int) bool {
		return models.PriorityRank(open[i].Priority) > models.PriorityRank(open[j].Priority)
	})
	if len(open) > n {
		open = open[:n]
	}
	return open
}

// Insights summarizes the analyzer output attached to the records. When no
// record carries keywords they are mined from the descriptions instead.
func Insights(list []models.Complaint) AIInsights {
	var ins AIInsights
	var confSum float64
	var confN int
	keywords := make(map[string]int)

	for i := range list {
		c := &list[i]
		if c.AIAnalyzed || c.Analysis != nil {
			ins.AnalyzedCount++
		}
		a := c.Analysis
		if a == nil {
			continue
		}
		switch sentimentOf(a) {
		case "positive":
			ins.Sentiment.Positive++
		case "negative":
			ins.Sentiment.Negative++
		case "neutral":
			ins.Sentiment.Neutral++
		}
		if a.Confidence > 0 {
			confSum += a.Confidence
			confN++
		}
		for _, k := range a.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				keywords[k]++
			}
		}
	}

	if len(keywords) == 0 {
		for i := range list {
			seen := make(map[string]bool)
			for _, tok := range Tokenize(list[i].Description) {
				if !seen[tok] {
					seen[tok] = true
					keywords[tok]++
				}
			}
		}
	}

	ins.Keywords = sortedBuckets(keywords, keywordLimit)
	if confN > 0 {
		ins.AverageConfidence = math.Round(confSum/float64(confN)*10) / 10
	}
	if len(list) > 0 {
		ins.AnalyzedRatio = int(math.Round(float64(ins.AnalyzedCount) / float64(len(list)) * 100))
	}
	return ins
}

// sentimentOf returns positive, negative, neutral, or "" when unknown.
func sentimentOf(a *models.Analysis) string {
	label := strings.ToLower(strings.TrimSpace(a.Sentiment))
	switch {
	case strings.HasPrefix(label, "pos"):
		return "positive"
	case strings.HasPrefix(label, "neg"):
		return "negative"
	case strings.HasPrefix(label, "neu"):
		return "neutral"
	case label != "":
		return ""
	}
	switch {
	case a.SentimentScore > 0.05:
		return "positive"
	case a.SentimentScore < -0.05:
		return "negative"
	case a.SentimentScore != 0:
		return "neutral"
	}
	return ""
}

var stopwords = map[string]bool{
	"about": true, "after": true, "again": true, "also": true, "been": true,
	"before": true, "being": true, "cannot": true, "could": true, "does": true,
	"down": true, "from": true, "have": true, "having": true, "here": true,
	"into": true, "just": true, "more": true, "most": true, "much": true,
	"need": true, "only": true, "other": true, "over": true, "please": true,
	"same": true, "since": true, "some": true, "still": true, "such": true,
	"than": true, "that": true, "their": true, "them": true, "then": true,
	"there": true, "these": true, "they": true, "this": true, "those": true,
	"very": true, "were": true, "what": true, "when": true, "where": true,
	"which": true, "while": true, "will": true, "with": true, "would": true,
	"your": true, "days": true, "week": true, "weeks": true, "working": true,
}

// Tokenize lowercases text and returns words of four or more letters that are
// not stopwords, in order of appearance.
func Tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	out := words[:0]
	for _, w := range words {
		if len([]rune(w)) >= 4 && !stopwords[w] {
			out = append(out, w)
		}
	}
	return out
}

// ComplaintAnalysis is the per-complaint AI view.
func (s *AnalyticsService) ComplaintAnalysis(ctx context.Context, id string) (*ComplaintInsight, error) {
	c, err := s.complaints.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	insight := &ComplaintInsight{Complaint: c, Analysis: c.Analysis}

	if list, err := s.complaints.List(ctx, false); err == nil {
		for i := range list {
			if list[i].ID != c.ID && c.Category != "" && strings.EqualFold(list[i].Category, c.Category) {
				insight.SimilarCount++
			}
		}
	}

	if c.CreatedAt != nil {
		if d := int(s.now().Sub(*c.CreatedAt).Hours() / 24); d > 0 {
			insight.DaysOpen = d
		}
	}

	if c.Analysis != nil && len(c.Analysis.Keywords) > 0 {
		insight.Keywords = c.Analysis.Keywords
	} else {
		insight.Keywords = uniqueFirst(Tokenize(c.Description), topLimit)
	}
	return insight, nil
}

func uniqueFirst(words []string, n int) []string {
	seen := make(map[string]bool, len(words))
	out := make([]string, 0, n)
	for _, w := range words {
		if seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
		if len(out) == n {
			break
		}
	}
	return out
}
