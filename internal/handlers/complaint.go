package handlers

import (
	"strings"

	"github.com/complaintdesk/portal/internal/models"
	"github.com/complaintdesk/portal/internal/services"
	"github.com/complaintdesk/portal/pkg/response"
	"github.com/gin-gonic/gin"
)

type ComplaintHandler struct {
	complaints *services.ComplaintService
	submission *services.SubmissionService
	domains    *services.DomainService
}

func NewComplaintHandler(complaints *services.ComplaintService, submission *services.SubmissionService, domains *services.DomainService) *ComplaintHandler {
	return &ComplaintHandler{
		complaints: complaints,
		submission: submission,
		domains:    domains,
	}
}

type listComplaintsRequest struct {
	services.ListFilter
	Refresh bool `form:"refresh"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// List returns complaints, optionally filtered
// GET /api/complaints
func (h *ComplaintHandler) List(c *gin.Context) {
	var req listComplaintsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	list, err := h.complaints.List(c.Request.Context(), req.Refresh)
	if err != nil {
		respondError(c, err, "", "Failed to load complaints. Please try again.")
		return
	}

	items := services.Filter(list, req.ListFilter)
	response.Success(c, gin.H{
		"items": items,
		"total": len(items),
	})
}

// Submit posts a new complaint, running analysis for blank fields first
// POST /api/complaints
func (h *ComplaintHandler) Submit(c *gin.Context) {
	var form models.ComplaintForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.BadRequest(c, "invalid complaint form")
		return
	}

	domain := currentDomain(c, h.domains)
	result, err := h.submission.Submit(c.Request.Context(), form, domain.ID)
	if err != nil {
		respondErrorWithData(c, err, "Failed to submit complaint: ", "Failed to submit complaint", gin.H{"form": form})
		return
	}

	response.CreatedWithMessage(c, "Complaint submitted successfully", result)
}

// GET /api/complaints/:id
func (h *ComplaintHandler) Get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	complaint, err := h.complaints.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "", "Failed to load complaint")
		return
	}
	response.Success(c, complaint)
}

// UpdateStatus sets one of Pending, In Progress, Resolved, Rejected
// PATCH /api/complaints/:id
func (h *ComplaintHandler) UpdateStatus(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "status is required")
		return
	}

	ctx := c.Request.Context()
	updated, err := h.complaints.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		services.LogWarning(ctx, services.ModuleComplaint, "update_status", err.Error(), services.Fields{"complaint_id": id, "status": req.Status})
		respondError(c, err, "", "Failed to update complaint")
		return
	}

	services.LogInfo(ctx, services.ModuleComplaint, "update_status", "Status updated", services.Fields{"complaint_id": id, "status": updated.Status})
	response.SuccessWithMessage(c, "Status updated to "+updated.Status, updated)
}

// DELETE /api/complaints/:id
func (h *ComplaintHandler) Delete(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	ctx := c.Request.Context()

	if err := h.complaints.Delete(ctx, id); err != nil {
		services.LogWarning(ctx, services.ModuleComplaint, "delete", err.Error(), services.Fields{"complaint_id": id})
		respondError(c, err, "", "Failed to delete complaint")
		return
	}

	services.LogInfo(ctx, services.ModuleComplaint, "delete", "Complaint deleted", services.Fields{"complaint_id": id})
	response.SuccessWithMessage(c, "Complaint deleted", gin.H{"id": id})
}
