package upstream

import (
	"context"
	"net/http"
	"net/url"

	"github.com/complaintdesk/portal/internal/models"
)

func (c *Client) complaintsURL(id string) string {
	u := c.backend.BaseURL + "/api/complaints"
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	return u
}

// ListComplaints accepts a raw array or a {success, data: [...]} envelope.
func (c *Client) ListComplaints(ctx context.Context) ([]models.Complaint, error) {
	res, err := c.do(ctx, c.backendHTTP, call{
		service:  ServiceBackend,
		op:       "list",
		method:   http.MethodGet,
		url:      c.complaintsURL(""),
		fallback: "Failed to fetch complaints",
	})
	if err != nil {
		return nil, err
	}
	return decodeComplaints(res), nil
}

func (c *Client) GetComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	res, err := c.do(ctx, c.backendHTTP, call{
		service:  ServiceBackend,
		op:       "get",
		method:   http.MethodGet,
		url:      c.complaintsURL(id),
		fallback: "Failed to fetch complaint",
	})
	if err != nil {
		return nil, err
	}
	payload := unwrap(res)
	if !payload.IsObject() {
		return nil, &APIError{Service: ServiceBackend, Op: "get", StatusCode: http.StatusNotFound, Message: "Complaint not found", Err: ErrNotFound}
	}
	complaint := decodeComplaint(payload)
	if complaint.ID == "" {
		complaint.ID = id
	}
	return &complaint, nil
}

// CreateComplaint posts the record and returns what the API stored. When the
// API answers without a record body the submitted record is returned.
func (c *Client) CreateComplaint(ctx context.Context, complaint *models.Complaint) (*models.Complaint, error) {
	res, err := c.do(ctx, c.backendHTTP, call{
		service:  ServiceBackend,
		op:       "create",
		method:   http.MethodPost,
		url:      c.complaintsURL(""),
		body:     complaint,
		fallback: "Failed to create complaint",
	})
	if err != nil {
		return nil, err
	}

	payload := unwrap(res)
	if !payload.IsObject() || !looksLikeComplaint(payload) {
		created := *complaint
		return &created, nil
	}
	created := decodeComplaint(payload)
	if created.CreatedAt == nil {
		created.CreatedAt = complaint.CreatedAt
	}
	if created.Analysis == nil {
		created.Analysis = complaint.Analysis
	}
	return &created, nil
}

// UpdateStatus returns the updated record when the API echoes one, nil otherwise.
func (c *Client) UpdateStatus(ctx context.Context, id, status string) (*models.Complaint, error) {
	res, err := c.do(ctx, c.backendHTTP, call{
		service:  ServiceBackend,
		op:       "update",
		method:   c.backend.UpdateMethod,
		url:      c.complaintsURL(id),
		body:     map[string]string{"status": status},
		fallback: "Failed to update complaint",
	})
	if err != nil {
		return nil, err
	}
	payload := unwrap(res)
	if !payload.IsObject() || !looksLikeComplaint(payload) {
		return nil, nil
	}
	updated := decodeComplaint(payload)
	if updated.ID == "" {
		updated.ID = id
	}
	return &updated, nil
}

func (c *Client) DeleteComplaint(ctx context.Context, id string) error {
	_, err := c.do(ctx, c.backendHTTP, call{
		service:  ServiceBackend,
		op:       "delete",
		method:   http.MethodDelete,
		url:      c.complaintsURL(id),
		fallback: "Failed to delete complaint",
	})
	return err
}
