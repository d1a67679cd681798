package handlers

import (
	"errors"

	"github.com/complaintdesk/portal/internal/services"
	"github.com/complaintdesk/portal/internal/upstream"
	"github.com/complaintdesk/portal/pkg/response"
	"github.com/gin-gonic/gin"
)

// respondError maps service and upstream failures onto the envelope. prefix is
// prepended to the upstream message so the toast reads like
// "Analysis Error: Model not loaded".
func respondError(c *gin.Context, err error, prefix, fallback string) {
	respondErrorWithData(c, err, prefix, fallback, nil)
}

// respondErrorWithData also returns data, e.g. the unchanged form.
func respondErrorWithData(c *gin.Context, err error, prefix, fallback string, data interface{}) {
	var appErr *response.AppError
	if errors.As(err, &appErr) {
		response.Error(c, err)
		return
	}

	switch {
	case errors.Is(err, services.ErrDescriptionRequired):
		appErr = response.NewBadRequest("Please enter a complaint description")
	case errors.Is(err, services.ErrInvalidStatus), errors.Is(err, services.ErrUnknownDomain):
		appErr = response.NewBadRequest(err.Error())
	case errors.Is(err, upstream.ErrNotFound):
		appErr = response.NewNotFound("Complaint not found")
	case errors.Is(err, services.ErrBackendUnavailable):
		appErr = response.NewServiceUnavailable(prefix + upstream.UserMessage(err, "Backend unavailable"))
	default:
		var apiErr *upstream.APIError
		if errors.As(err, &apiErr) {
			appErr = response.NewBadGateway(prefix + upstream.UserMessage(err, fallback))
		} else {
			appErr = response.NewServerError(prefix + fallback)
		}
	}
	if data != nil {
		appErr.WithData(data)
	}
	response.Error(c, appErr.Wrap(err))
}
