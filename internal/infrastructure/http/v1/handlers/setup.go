package handlers

import (
	"github.com/gin-gonic/gin"

	"assetdesk/internal/domain/setup"
)

// SetupHandler serves the onboarding wizard.
type SetupHandler struct {
	*BaseHandler
	service *setup.Service
}

// NewSetupHandler creates a new setup handler.
func NewSetupHandler(base *BaseHandler, service *setup.Service) *SetupHandler {
	return &SetupHandler{BaseHandler: base, service: service}
}

// Steps handles GET /setup/steps
func (h *SetupHandler) Steps(c *gin.Context) {
	h.OK(c, gin.H{"steps": h.service.Steps()})
}

// ValidateStep handles POST /setup/steps/:step/validate. The body is the
// configuration collected so far; later steps may reference earlier ones.
func (h *SetupHandler) ValidateStep(c *gin.Context) {
	var cfg setup.Configuration
	if !h.BindJSON(c, &cfg) {
		return
	}

	step := c.Param("step")
	if err := h.service.ValidateStep(step, cfg); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"step": step, "valid": true})
}

// Submit handles POST /setup/submit
func (h *SetupHandler) Submit(c *gin.Context) {
	var cfg setup.Configuration
	if !h.BindJSON(c, &cfg) {
		return
	}

	result, err := h.service.Submit(c.Request.Context(), cfg)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, result)
}
