package middleware

import (
	"github.com/complaintdesk/portal/internal/services"
	"github.com/complaintdesk/portal/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags each request with an id (the caller's X-Request-ID when
// present) and attaches it, with the client address, to the request context
// so activity log entries can be traced back.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}

		c.Set(logger.RequestIDKey, id)
		c.Header(RequestIDHeader, id)

		ctx := services.WithRequestMeta(c.Request.Context(), services.RequestMeta{
			RequestID: id,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
