package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"assetdesk/internal/domain/audit"
	"assetdesk/internal/infrastructure/http/v1/dto"
)

// AuditLister serves the audit log.
type AuditLister interface {
	List(ctx context.Context, f audit.ListFilter) (*audit.ListResult, error)
}

// AuditHandler serves GET /reports/audit.
type AuditHandler struct {
	*BaseHandler
	lister AuditLister
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(base *BaseHandler, lister AuditLister) *AuditHandler {
	return &AuditHandler{BaseHandler: base, lister: lister}
}

// List handles GET /reports/audit
func (h *AuditHandler) List(c *gin.Context) {
	var req dto.AuditListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	f, err := req.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.lister.List(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(result.Items, result.TotalCount, result.Limit, result.Offset))
}
