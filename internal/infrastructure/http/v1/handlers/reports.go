package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"assetdesk/internal/domain/reports"
	"assetdesk/internal/infrastructure/http/v1/dto"
)

// ReportsHandler serves the report catalog, previews and exports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /reports
func (h *ReportsHandler) List(c *gin.Context) {
	h.OK(c, dto.FromCatalog(h.service.ListDefinitions(), h.service.Formats()))
}

// Get handles GET /reports/:id
func (h *ReportsHandler) Get(c *gin.Context) {
	def, err := h.service.GetDefinition(c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromDefinition(def, h.service.Formats()))
}

// Domains handles GET /reports/:id/domains
func (h *ReportsHandler) Domains(c *gin.Context) {
	reportID := c.Param("id")
	domains, err := h.service.Domains(c.Request.Context(), reportID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.DomainsResponse{ReportID: reportID, Domains: domains})
}

// Preview handles POST /reports/:id/preview
func (h *ReportsHandler) Preview(c *gin.Context) {
	var req dto.ReportQueryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	preview, err := h.service.Preview(c.Request.Context(), c.Param("id"), req.ToQuery())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, preview)
}

// Export handles POST /reports/:id/export?format=
func (h *ReportsHandler) Export(c *gin.Context) {
	var params dto.ExportRequest
	if !h.BindQuery(c, &params) {
		return
	}
	var req dto.ReportQueryRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Export(c.Request.Context(), c.Param("id"), reports.Format(params.Format), req.ToQuery())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.Header("X-Row-Count", strconv.Itoa(result.RowCount))
	h.Attachment(c, result.Filename, result.ContentType, result.Data)
}

// RegisterRoutes registers report routes. The audit route must be registered
// before /:id so gin resolves it statically.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.GET("/:id/domains", h.Domains)
	rg.POST("/:id/preview", h.Preview)
	rg.POST("/:id/export", h.Export)
}
