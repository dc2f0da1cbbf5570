package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/davidblanco1407/pma-frequency-backend/config"
	"github.com/davidblanco1407/pma-frequency-backend/internal/repository"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/jwt"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/metrics"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/password"
)

// Notifier delivers account notifications. A failed welcome notification
// aborts provisioning.
type Notifier interface {
	NotifyWelcome(ctx context.Context, to, fullName, username, tempPassword string) error
	NotifyPasswordReset(ctx context.Context, to, fullName, token string, ttl time.Duration) error
}

// TokenBlacklist revokes tokens by jti. Nil disables revocation.
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Deps are the collaborators shared by every service.
type Deps struct {
	Config    *config.Config
	Repo      *repository.Repository
	JWT       *jwt.Manager
	Blacklist TokenBlacklist
	Notifier  Notifier
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	// Now defaults to time.Now in UTC.
	Now func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now().UTC()
}

func (d *Deps) passwordPolicy() password.Policy {
	return password.NewPolicy(d.Config.Security.PasswordMinLength)
}

// Service is the aggregate entry point for every service.
type Service struct {
	Auth       AuthService
	Member     MemberService
	Sanction   SanctionService
	Correction CorrectionService
	Account    AccountService
	Export     ExportService
}

// NewService wires the services.
func NewService(deps *Deps) *Service {
	prov := NewProvisioner(deps)
	return &Service{
		Auth:       NewAuthService(deps),
		Member:     NewMemberService(deps, prov),
		Sanction:   NewSanctionService(deps),
		Correction: NewCorrectionService(deps),
		Account:    NewAccountService(deps),
		Export:     NewExportService(deps),
	}
}
