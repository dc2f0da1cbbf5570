package handler

import (
	"go.uber.org/zap"

	"github.com/davidblanco1407/pma-frequency-backend/internal/service"
)

// Handler aggregates every HTTP handler.
type Handler struct {
	Auth       *AuthHandler
	Member     *MemberHandler
	Sanction   *SanctionHandler
	Correction *CorrectionHandler
	Account    *AccountHandler
	Export     *ExportHandler
	Health     *HealthHandler
}

// NewHandler wires handlers to their services.
func NewHandler(svc *service.Service, health *HealthHandler, logger *zap.Logger) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth, logger),
		Member:     NewMemberHandler(svc.Member, logger),
		Sanction:   NewSanctionHandler(svc.Sanction, logger),
		Correction: NewCorrectionHandler(svc.Correction, logger),
		Account:    NewAccountHandler(svc.Account, logger),
		Export:     NewExportHandler(svc.Export, logger),
		Health:     health,
	}
}
