package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davidblanco1407/pma-frequency-backend/internal/dto"
	"github.com/davidblanco1407/pma-frequency-backend/internal/service"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/response"
)

// resetRequestedMessage is returned for every reset request.
const resetRequestedMessage = "if the address is registered, a reset link has been sent"

// AuthHandler authentication endpoints.
type AuthHandler struct {
	authSvc service.AuthService
	logger  *zap.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authSvc service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, logger: logger}
}

// Login exchanges credentials for a token pair.
// POST /api/v1/auth/token
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	response.OK(c, result)
}

// Refresh rotates the refresh token.
// POST /api/v1/auth/token/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), &req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	response.OK(c, result)
}

// Logout revokes the access token and, when given, the refresh token.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}

	var req dto.LogoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindFailed(c, err)
			return
		}
	}

	if err := h.authSvc.Logout(c.Request.Context(), claims, &req); err != nil {
		fail(c, h.logger, err)
		return
	}

	response.OK(c, dto.MessageResponse{Message: "signed out"})
}

// ChangePassword changes the caller's password.
// PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), actor, &req); err != nil {
		fail(c, h.logger, err)
		return
	}

	response.OK(c, dto.MessageResponse{Message: "password updated"})
}

// RequestPasswordReset always answers the same way.
// POST /api/v1/auth/password-reset
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req dto.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	if err := h.authSvc.RequestPasswordReset(c.Request.Context(), &req); err != nil {
		h.logger.Error("password reset request failed", zap.Error(err))
	}

	response.OK(c, dto.MessageResponse{Message: resetRequestedMessage})
}

// ConfirmPasswordReset sets a new password with a reset token.
// POST /api/v1/auth/password-reset/confirm
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req dto.PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	if err := h.authSvc.ConfirmPasswordReset(c.Request.Context(), &req); err != nil {
		fail(c, h.logger, err)
		return
	}

	response.OK(c, dto.MessageResponse{Message: "password updated"})
}
