package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/complaintdesk/portal/internal/models"
	"github.com/complaintdesk/portal/internal/upstream"
)

type fakeStore struct {
	mu         sync.Mutex
	complaints []models.Complaint
	created    []*models.Complaint
	listCalls  int
	nextID     int

	listErr    error
	createErr  error
	updateErr  error
	healthErr  error
	echoUpdate bool
}

func (f *fakeStore) ListComplaints(_ context.Context) ([]models.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Complaint, len(f.complaints))
	copy(out, f.complaints)
	return out, nil
}

func (f *fakeStore) GetComplaint(_ context.Context, id string) (*models.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.complaints {
		if f.complaints[i].ID == id {
			c := f.complaints[i]
			return &c, nil
		}
	}
	return nil, &upstream.APIError{Service: upstream.ServiceBackend, Op: "get", StatusCode: 404, Message: "Complaint not found", Err: upstream.ErrNotFound}
}

func (f *fakeStore) CreateComplaint(_ context.Context, c *models.Complaint) (*models.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	created := *c
	created.ID = fmt.Sprintf("c-%d", f.nextID)
	f.created = append(f.created, c)
	f.complaints = append(f.complaints, created)
	return &created, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id, status string) (*models.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for i := range f.complaints {
		if f.complaints[i].ID == id {
			f.complaints[i].Status = status
			if f.echoUpdate {
				c := f.complaints[i]
				return &c, nil
			}
			return nil, nil
		}
	}
	return nil, &upstream.APIError{Service: upstream.ServiceBackend, Op: "update", StatusCode: 404, Message: "Complaint not found", Err: upstream.ErrNotFound}
}

func (f *fakeStore) DeleteComplaint(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.complaints {
		if f.complaints[i].ID == id {
			f.complaints = append(f.complaints[:i], f.complaints[i+1:]...)
			return nil
		}
	}
	return &upstream.APIError{Service: upstream.ServiceBackend, Op: "delete", StatusCode: 404, Message: "Complaint not found", Err: upstream.ErrNotFound}
}

func (f *fakeStore) CheckBackend(_ context.Context) error {
	return f.healthErr
}

type fakeAnalyzer struct {
	mu       sync.Mutex
	result   *models.Analysis
	err      error
	calls    int
	lastText string
}

func (f *fakeAnalyzer) Analyze(_ context.Context, text string) (*models.Analysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastText = text
	if f.err != nil {
		return nil, f.err
	}
	a := *f.result
	return &a, nil
}
