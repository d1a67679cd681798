package services

import (
	"context"
	"math"
	"sort"

	"github.com/complaintdesk/portal/internal/models"
)

const recentLimit = 5

type DashboardService struct {
	complaints *ComplaintService
}

func NewDashboardService(complaints *ComplaintService) *DashboardService {
	return &DashboardService{complaints: complaints}
}

type DashboardStats struct {
	Total          int                `json:"total"`
	Pending        int                `json:"pending"`
	InProgress     int                `json:"in_progress"`
	Resolved       int                `json:"resolved"`
	Rejected       int                `json:"rejected"`
	Critical       int                `json:"critical"`
	ResolutionRate int                `json:"resolution_rate"`
	Recent         []models.Complaint `json:"recent"`
}

// Stats loads the list (refresh skips the cache) and aggregates it.
func (s *DashboardService) Stats(ctx context.Context, refresh bool) (*DashboardStats, error) {
	list, err := s.complaints.List(ctx, refresh)
	if err != nil {
		return nil, err
	}
	stats := ComputeStats(list)
	return &stats, nil
}

// ComputeStats counts statuses and High/Critical priorities. The resolution
// rate is a whole percentage and 0 for an empty list.
func ComputeStats(list []models.Complaint) DashboardStats {
	stats := DashboardStats{Total: len(list)}
	for i := range list {
		switch list[i].Status {
		case models.StatusPending:
			stats.Pending++
		case models.StatusInProgress:
			stats.InProgress++
		case models.StatusResolved:
			stats.Resolved++
		case models.StatusRejected:
			stats.Rejected++
		}
		if list[i].IsCritical() {
			stats.Critical++
		}
	}
	if stats.Total > 0 {
		stats.ResolutionRate = int(math.Round(float64(stats.Resolved) / float64(stats.Total) * 100))
	}
	stats.Recent = Newest(list, recentLimit)
	return stats
}

// Newest returns up to n complaints, newest first. Undated records sort last.
func Newest(list []models.Complaint, n int) []models.Complaint {
	sorted := make([]models.Complaint, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].CreatedAt, sorted[j].CreatedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.After(*b)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
