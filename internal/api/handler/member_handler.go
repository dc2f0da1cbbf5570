package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davidblanco1407/pma-frequency-backend/internal/dto"
	"github.com/davidblanco1407/pma-frequency-backend/internal/service"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/response"
)

// MemberHandler member endpoints.
type MemberHandler struct {
	memberSvc service.MemberService
	logger    *zap.Logger
}

// NewMemberHandler creates a MemberHandler.
func NewMemberHandler(memberSvc service.MemberService, logger *zap.Logger) *MemberHandler {
	return &MemberHandler{memberSvc: memberSvc, logger: logger}
}

// List members visible to the caller. Also serves /members/search, which
// takes the same filters.
// GET /api/v1/members
func (h *MemberHandler) List(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.MemberListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.memberSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Get one member.
// GET /api/v1/members/:id
func (h *MemberHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := MustGetID(c, "id")
	if !ok {
		return
	}

	member, err := h.memberSvc.Get(c.Request.Context(), actor, id)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	response.OK(c, member)
}

// Me returns the caller's own profile.
// GET /api/v1/members/me
func (h *MemberHandler) Me(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	member, err := h.memberSvc.Me(c.Request.Context(), actor)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	response.OK(c, member)
}

// Create registers a member and provisions the login account.
// POST /api/v1/members
func (h *MemberHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.memberSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	response.Created(c, result)
}

// Update applies a partial update.
// PUT /api/v1/members/:id
func (h *MemberHandler) Update(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := MustGetID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	member, err := h.memberSvc.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	response.OK(c, member)
}

// Delete is always refused.
// DELETE /api/v1/members/:id
func (h *MemberHandler) Delete(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := MustGetID(c, "id")
	if !ok {
		return
	}

	fail(c, h.logger, h.memberSvc.Delete(c.Request.Context(), actor, id))
}

// BulkStatus applies one lifecycle action to many members.
// POST /api/v1/members/bulk-status
func (h *MemberHandler) BulkStatus(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.BulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.memberSvc.BulkStatus(c.Request.Context(), actor, &req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	response.OK(c, result)
}

// Stats counts members by status.
// GET /api/v1/members/stats
func (h *MemberHandler) Stats(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	stats, err := h.memberSvc.Stats(c.Request.Context(), actor)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	response.OK(c, stats)
}
