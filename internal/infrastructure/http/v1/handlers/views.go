package handlers

import (
	"github.com/gin-gonic/gin"

	"assetdesk/internal/domain/views"
	"assetdesk/internal/infrastructure/http/v1/dto"
)

// ViewsHandler serves saved views of the current user.
type ViewsHandler struct {
	*BaseHandler
	service *views.Service
}

// NewViewsHandler creates a new views handler.
func NewViewsHandler(base *BaseHandler, service *views.Service) *ViewsHandler {
	return &ViewsHandler{BaseHandler: base, service: service}
}

// List handles GET /views?reportId=
func (h *ViewsHandler) List(c *gin.Context) {
	var req dto.ViewListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	items, err := h.service.List(c.Request.Context(), req.ReportID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(dto.FromViews(items), len(items), 0, 0))
}

// Get handles GET /views/:id
func (h *ViewsHandler) Get(c *gin.Context) {
	viewID, ok := h.ParseID(c)
	if !ok {
		return
	}

	v, err := h.service.Get(c.Request.Context(), viewID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromView(v))
}

// Create handles POST /views
func (h *ViewsHandler) Create(c *gin.Context) {
	var req dto.ViewRequest
	if !h.BindJSON(c, &req) {
		return
	}

	v, err := h.service.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromView(v))
}

// Update handles PUT /views/:id
func (h *ViewsHandler) Update(c *gin.Context) {
	viewID, ok := h.ParseID(c)
	if !ok {
		return
	}
	var req dto.ViewRequest
	if !h.BindJSON(c, &req) {
		return
	}

	v, err := h.service.Update(c.Request.Context(), viewID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromView(v))
}

// Delete handles DELETE /views/:id
func (h *ViewsHandler) Delete(c *gin.Context) {
	viewID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), viewID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers view routes.
func (h *ViewsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}
