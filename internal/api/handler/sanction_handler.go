package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davidblanco1407/pma-frequency-backend/internal/dto"
	"github.com/davidblanco1407/pma-frequency-backend/internal/service"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/response"
)

// SanctionHandler sanction endpoints. Mounted behind RequireStaff.
type SanctionHandler struct {
	sanctionSvc service.SanctionService
	logger      *zap.Logger
}

// NewSanctionHandler creates a SanctionHandler.
func NewSanctionHandler(sanctionSvc service.SanctionService, logger *zap.Logger) *SanctionHandler {
	return &SanctionHandler{sanctionSvc: sanctionSvc, logger: logger}
}

// List GET /api/v1/sanctions
func (h *SanctionHandler) List(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.SanctionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.sanctionSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// ListByMember GET /api/v1/members/:id/sanctions
func (h *SanctionHandler) ListByMember(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := MustGetID(c, "id")
	if !ok {
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.sanctionSvc.ListByMember(c.Request.Context(), actor, id, &page)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	response.OKPage(c, list, total, page.GetPage(), page.GetPageSize())
}

// Get GET /api/v1/sanctions/:id
func (h *SanctionHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := MustGetID(c, "id")
	if !ok {
		return
	}

	sanction, err := h.sanctionSvc.Get(c.Request.Context(), actor, id)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	response.OK(c, sanction)
}

// Create POST /api/v1/sanctions
func (h *SanctionHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateSanctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	sanction, err := h.sanctionSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	response.Created(c, sanction)
}

// Update PUT /api/v1/sanctions/:id
func (h *SanctionHandler) Update(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := MustGetID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateSanctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	sanction, err := h.sanctionSvc.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	response.OK(c, sanction)
}
