package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/complaintdesk/portal/internal/models"
	"github.com/complaintdesk/portal/pkg/logger"
)

var ErrInvalidStatus = errors.New("invalid status")

// ComplaintStore is the persistence API as the portal sees it.
type ComplaintStore interface {
	ListComplaints(ctx context.Context) ([]models.Complaint, error)
	GetComplaint(ctx context.Context, id string) (*models.Complaint, error)
	CreateComplaint(ctx context.Context, c *models.Complaint) (*models.Complaint, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Complaint, error)
	DeleteComplaint(ctx context.Context, id string) error
	CheckBackend(ctx context.Context) error
}

// Analyzer is the external classification service.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*models.Analysis, error)
}

type ComplaintService struct {
	store ComplaintStore
	cache ListCache
	hub   *EventHub
}

func NewComplaintService(store ComplaintStore, cache ListCache, hub *EventHub) *ComplaintService {
	if cache == nil {
		cache = NewMemoryListCache(0)
	}
	if hub == nil {
		hub = GetEventHub()
	}
	return &ComplaintService{store: store, cache: cache, hub: hub}
}

// List returns all complaints. refresh skips the cache.
func (s *ComplaintService) List(ctx context.Context, refresh bool) ([]models.Complaint, error) {
	if !refresh {
		if cached, ok := s.cache.Get(ctx); ok {
			return cached, nil
		}
	}

	list, err := s.store.ListComplaints(ctx)
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	s.cache.Set(ctx, list)
	return list, nil
}

type ListFilter struct {
	Status   string `form:"status"`
	Priority string `form:"priority"`
	Category string `form:"category"`
	Search   string `form:"search"`
}

// Filter keeps complaints matching every non-empty field, case-insensitively.
func Filter(list []models.Complaint, f ListFilter) []models.Complaint {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.Complaint, 0, len(list))
	for _, c := range list {
		if f.Status != "" && !strings.EqualFold(c.Status, strings.TrimSpace(f.Status)) {
			continue
		}
		if f.Priority != "" && !strings.EqualFold(c.Priority, strings.TrimSpace(f.Priority)) {
			continue
		}
		if f.Category != "" && !strings.EqualFold(c.Category, strings.TrimSpace(f.Category)) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(c.Title), search) &&
			!strings.Contains(strings.ToLower(c.Description), search) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (s *ComplaintService) Get(ctx context.Context, id string) (*models.Complaint, error) {
	c, err := s.store.GetComplaint(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get complaint %s: %w", id, err)
	}
	return c, nil
}

// Create stores a complaint and announces it.
func (s *ComplaintService) Create(ctx context.Context, c *models.Complaint) (*models.Complaint, error) {
	created, err := s.store.CreateComplaint(ctx, c)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	s.hub.Publish(NewComplaintEvent(EventComplaintCreated, created))
	return created, nil
}

// UpdateStatus accepts only the four portal statuses.
func (s *ComplaintService) UpdateStatus(ctx context.Context, id, status string) (*models.Complaint, error) {
	canonical, ok := models.NormalizeStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: %q (allowed: %s)", ErrInvalidStatus, status, strings.Join(models.Statuses(), ", "))
	}

	updated, err := s.store.UpdateStatus(ctx, id, canonical)
	if err != nil {
		return nil, fmt.Errorf("update complaint %s: %w", id, err)
	}
	s.cache.Invalidate(ctx)

	if updated == nil {
		if fetched, err := s.store.GetComplaint(ctx, id); err == nil {
			updated = fetched
		} else {
			logger.Warn().Err(err).Str("id", id).Msg("[Complaint] could not reload after status update")
			updated = &models.Complaint{ID: id, Status: canonical}
		}
	}

	s.hub.Publish(NewComplaintEvent(EventComplaintUpdated, updated))
	return updated, nil
}

func (s *ComplaintService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteComplaint(ctx, id); err != nil {
		return fmt.Errorf("delete complaint %s: %w", id, err)
	}
	s.cache.Invalidate(ctx)
	s.hub.Publish(ComplaintEvent{Type: EventComplaintDeleted, ID: id})
	return nil
}

func (s *ComplaintService) CacheBackend() string {
	return s.cache.Backend()
}
