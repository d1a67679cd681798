package handlers

import (
	"github.com/complaintdesk/portal/internal/models"
	"github.com/complaintdesk/portal/internal/services"
	"github.com/complaintdesk/portal/pkg/response"
	"github.com/gin-gonic/gin"
)

type AnalyzeHandler struct {
	submission *services.SubmissionService
}

func NewAnalyzeHandler(submission *services.SubmissionService) *AnalyzeHandler {
	return &AnalyzeHandler{submission: submission}
}

// analyzeRequest takes either bare text or the whole form. With a form the
// response carries the form with AI fields merged in.
type analyzeRequest struct {
	Text string                `json:"text"`
	Form *models.ComplaintForm `json:"form"`
}

// Analyze classifies a complaint description
// POST /api/analyze
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	form := models.NewComplaintForm()
	if req.Form != nil {
		form = *req.Form
	}
	if form.Description == "" {
		form.Description = req.Text
	}

	result, err := h.submission.Analyze(c.Request.Context(), form)
	if err != nil {
		respondErrorWithData(c, err, "Analysis Error: ", "Failed to analyze complaint", gin.H{"form": form})
		return
	}

	response.SuccessWithMessage(c, "Complaint analyzed successfully!", result)
}
