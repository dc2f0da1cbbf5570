package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davidblanco1407/pma-frequency-backend/internal/dto"
	"github.com/davidblanco1407/pma-frequency-backend/internal/service"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/response"
)

// AccountHandler account administration.
type AccountHandler struct {
	accountSvc service.AccountService
	logger     *zap.Logger
}

// NewAccountHandler creates an AccountHandler.
func NewAccountHandler(accountSvc service.AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc, logger: logger}
}

// UpdatePrivileges grants or revokes staff.
// PUT /api/v1/accounts/:id/privileges
func (h *AccountHandler) UpdatePrivileges(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := MustGetID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePrivilegesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	account, err := h.accountSvc.UpdatePrivileges(c.Request.Context(), actor, id, &req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	response.OK(c, account)
}
