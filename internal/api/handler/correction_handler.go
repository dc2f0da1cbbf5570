package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davidblanco1407/pma-frequency-backend/internal/dto"
	"github.com/davidblanco1407/pma-frequency-backend/internal/service"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/response"
)

// CorrectionHandler correction request endpoints.
type CorrectionHandler struct {
	correctionSvc service.CorrectionService
	logger        *zap.Logger
}

// NewCorrectionHandler creates a CorrectionHandler.
func NewCorrectionHandler(correctionSvc service.CorrectionService, logger *zap.Logger) *CorrectionHandler {
	return &CorrectionHandler{correctionSvc: correctionSvc, logger: logger}
}

// List GET /api/v1/corrections
func (h *CorrectionHandler) List(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CorrectionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.correctionSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Get GET /api/v1/corrections/:id
func (h *CorrectionHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := MustGetID(c, "id")
	if !ok {
		return
	}

	item, err := h.correctionSvc.Get(c.Request.Context(), actor, id)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	response.OK(c, item)
}

// Create POST /api/v1/corrections
func (h *CorrectionHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateCorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	item, err := h.correctionSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	response.Created(c, item)
}

// Update PUT /api/v1/corrections/:id
func (h *CorrectionHandler) Update(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := MustGetID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateCorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	item, err := h.correctionSvc.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	response.OK(c, item)
}
