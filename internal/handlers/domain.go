package handlers

import (
	"net/http"

	"github.com/complaintdesk/portal/internal/services"
	"github.com/complaintdesk/portal/pkg/response"
	"github.com/gin-gonic/gin"
)

// DomainCookie remembers the visitor's domain selection.
const DomainCookie = "selected_domain"

const domainCookieMaxAge = 365 * 24 * 60 * 60

type DomainHandler struct {
	domains *services.DomainService
}

func NewDomainHandler(domains *services.DomainService) *DomainHandler {
	return &DomainHandler{domains: domains}
}

type selectDomainRequest struct {
	ID string `json:"id" binding:"required"`
}

// currentDomain resolves the cookie selection against the stored default.
func currentDomain(c *gin.Context, domains *services.DomainService) services.DomainProfile {
	selected, _ := c.Cookie(DomainCookie)
	return domains.Resolve(selected)
}

// List returns the built-in domains and the current selection
// GET /api/domains
func (h *DomainHandler) List(c *gin.Context) {
	response.Success(c, gin.H{
		"domains": h.domains.List(),
		"current": currentDomain(c, h.domains).ID,
		"default": h.domains.Default(),
	})
}

// GET /api/domains/current
func (h *DomainHandler) Current(c *gin.Context) {
	response.Success(c, currentDomain(c, h.domains))
}

// Select stores the choice in the selected_domain cookie
// PUT /api/domains/current
func (h *DomainHandler) Select(c *gin.Context) {
	var req selectDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "domain id is required")
		return
	}

	domain, err := h.domains.Get(req.ID)
	if err != nil {
		respondError(c, err, "", "Unknown domain")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(DomainCookie, domain.ID, domainCookieMaxAge, "/", "", false, false)
	services.LogInfo(c.Request.Context(), services.ModuleDomain, "select", "Domain selected", services.Fields{"domain": domain.ID})

	response.SuccessWithMessage(c, "Switched to "+domain.Name, domain)
}

// SetDefault changes the domain used when no cookie is present
// PUT /api/domains/default
func (h *DomainHandler) SetDefault(c *gin.Context) {
	var req selectDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "domain id is required")
		return
	}

	domain, err := h.domains.SetDefault(req.ID)
	if err != nil {
		respondError(c, err, "", "Failed to save default domain")
		return
	}

	services.LogInfo(c.Request.Context(), services.ModuleDomain, "set_default", "Default domain changed", services.Fields{"domain": domain.ID})
	response.SuccessWithMessage(c, "Default domain updated", domain)
}
