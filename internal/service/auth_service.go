package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"go.uber.org/zap"

	"github.com/davidblanco1407/pma-frequency-backend/internal/authz"
	"github.com/davidblanco1407/pma-frequency-backend/internal/dto"
	"github.com/davidblanco1407/pma-frequency-backend/internal/model"
	"github.com/davidblanco1407/pma-frequency-backend/internal/repository"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/jwt"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/password"
)

// AuthService authentication and credential management.
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, access *jwt.Claims, req *dto.LogoutRequest) error
	ChangePassword(ctx context.Context, actor authz.Actor, req *dto.ChangePasswordRequest) error
	// RequestPasswordReset behaves the same whether or not the email is known.
	RequestPasswordReset(ctx context.Context, req *dto.PasswordResetRequest) error
	ConfirmPasswordReset(ctx context.Context, req *dto.PasswordResetConfirmRequest) error
}

type authService struct {
	*Deps
	// dummyHash is compared against on unknown usernames so that both
	// failure paths cost one bcrypt round.
	dummyHash string
}

// NewAuthService creates an AuthService.
func NewAuthService(d *Deps) AuthService {
	dummy, _ := password.Hash("not-a-real-password", d.Config.Auth.BcryptCost)
	return &authService{Deps: d, dummyHash: dummy}
}

// ──── Login ────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	account, err := s.Repo.Account.GetByUsername(ctx, req.Username)
	if err != nil {
		if repository.IsNotFound(err) {
			password.Matches(s.dummyHash, req.Password)
			s.Metrics.Login("invalid_credentials")
			return nil, ErrInvalidCredentials
		}
		s.Logger.Error("load account failed", zap.Error(err))
		return nil, err
	}

	if !password.Matches(account.PasswordHash, req.Password) {
		s.Metrics.Login("invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	if err := s.checkCanSignIn(ctx, account); err != nil {
		s.Metrics.Login("rejected")
		return nil, err
	}

	resp, err := s.issue(account)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.Account.TouchLastLogin(ctx, account.ID, s.now()); err != nil {
		s.Logger.Warn("update last login failed", zap.Uint("account_id", account.ID), zap.Error(err))
	}
	s.Metrics.Login("success")
	return resp, nil
}

// checkCanSignIn rejects disabled accounts, inactive members and accounts
// with no member profile unless they belong to a superuser.
func (s *authService) checkCanSignIn(ctx context.Context, account *model.Account) error {
	if !account.IsActive {
		return ErrAccountInactive
	}
	m, err := s.Repo.Member.GetByAccountID(ctx, account.ID)
	switch {
	case err == nil:
		if !m.Active {
			return ErrAccountInactive
		}
		return nil
	case repository.IsNotFound(err):
		if account.IsSuperuser {
			return nil
		}
		return ErrNoMemberProfile
	default:
		s.Logger.Error("load member profile failed", zap.Uint("account_id", account.ID), zap.Error(err))
		return err
	}
}

func (s *authService) issue(account *model.Account) (*dto.TokenResponse, error) {
	sub := jwt.Subject{
		AccountID:   account.ID,
		Username:    account.Username,
		IsStaff:     account.IsStaff,
		IsSuperuser: account.IsSuperuser,
	}
	access, err := s.JWT.GenerateAccessToken(sub)
	if err != nil {
		s.Logger.Error("sign access token failed", zap.Error(err))
		return nil, err
	}
	refresh, err := s.JWT.GenerateRefreshToken(sub)
	if err != nil {
		s.Logger.Error("sign refresh token failed", zap.Error(err))
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.JWT.AccessTokenTTL().Seconds()),
		Account:      toAccountResponse(account),
	}, nil
}

// ──── Refresh ────

func (s *authService) Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := s.JWT.ParseToken(req.RefreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrTokenInvalid
	}
	if s.Blacklist != nil {
		revoked, err := s.Blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.Logger.Error("blacklist lookup failed", zap.Error(err))
			return nil, err
		}
		if revoked {
			return nil, ErrTokenInvalid
		}
	}

	account, err := s.Repo.Account.GetByID(ctx, claims.AccountID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if err := s.checkCanSignIn(ctx, account); err != nil {
		return nil, err
	}

	if err := s.revoke(ctx, claims); err != nil {
		return nil, err
	}
	return s.issue(account)
}

// ──── Logout ────

func (s *authService) Logout(ctx context.Context, access *jwt.Claims, req *dto.LogoutRequest) error {
	if access == nil {
		return ErrTokenInvalid
	}
	if err := s.revoke(ctx, access); err != nil {
		return err
	}
	if req != nil && req.RefreshToken != "" {
		claims, err := s.JWT.ParseToken(req.RefreshToken)
		if err != nil || claims.AccountID != access.AccountID {
			return ErrTokenInvalid
		}
		return s.revoke(ctx, claims)
	}
	return nil
}

func (s *authService) revoke(ctx context.Context, claims *jwt.Claims) error {
	if s.Blacklist == nil {
		return nil
	}
	if err := s.Blacklist.BlacklistToken(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		s.Logger.Error("blacklist token failed", zap.String("jti", claims.ID), zap.Error(err))
		return err
	}
	return nil
}

// ──── ChangePassword ────

func (s *authService) ChangePassword(ctx context.Context, actor authz.Actor, req *dto.ChangePasswordRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return ErrPasswordMismatch
	}

	account, err := s.Repo.Account.GetByID(ctx, actor.AccountID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrAccountNotFound
		}
		return err
	}

	if err := s.passwordPolicy().Validate(req.NewPassword, account.Username, account.Email); err != nil {
		return weakPassword("new_password", err)
	}
	if !password.Matches(account.PasswordHash, req.CurrentPassword) {
		return ErrWrongPassword
	}

	hash, err := password.Hash(req.NewPassword, s.Config.Auth.BcryptCost)
	if err != nil {
		return err
	}
	if err := s.Repo.Account.UpdatePassword(ctx, account.ID, hash, false); err != nil {
		return err
	}
	s.Logger.Info("password changed", zap.Uint("account_id", account.ID))
	return nil
}

// ──── password reset ────

const resetTokenBytes = 32

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, req *dto.PasswordResetRequest) error {
	account, err := s.Repo.Account.GetByEmail(ctx, req.Email)
	if err != nil {
		if !repository.IsNotFound(err) {
			s.Logger.Error("password reset lookup failed", zap.Error(err))
		}
		return nil
	}
	if !account.IsActive {
		return nil
	}

	token, err := newResetToken()
	if err != nil {
		s.Logger.Error("generate reset token failed", zap.Error(err))
		return nil
	}

	now := s.now()
	ttl := s.Config.Auth.PasswordResetTTL
	err = s.Repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.PasswordReset.InvalidateForAccount(ctx, account.ID, now); err != nil {
			return err
		}
		return tx.PasswordReset.Create(ctx, &model.PasswordReset{
			AccountID: account.ID,
			TokenHash: hashResetToken(token),
			ExpiresAt: now.Add(ttl),
		})
	})
	if err != nil {
		s.Logger.Error("store reset token failed", zap.Uint("account_id", account.ID), zap.Error(err))
		return nil
	}

	name := account.FirstName
	if m, err := s.Repo.Member.GetByAccountID(ctx, account.ID); err == nil {
		name = m.FullName
	}
	if err := s.Notifier.NotifyPasswordReset(ctx, account.Email, name, token, ttl); err != nil {
		s.Logger.Warn("password reset notification failed", zap.Uint("account_id", account.ID), zap.Error(err))
	}
	return nil
}

func (s *authService) ConfirmPasswordReset(ctx context.Context, req *dto.PasswordResetConfirmRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if err := s.passwordPolicy().Validate(req.NewPassword); err != nil {
		return weakPassword("new_password", err)
	}

	hash, err := password.Hash(req.NewPassword, s.Config.Auth.BcryptCost)
	if err != nil {
		return err
	}

	now := s.now()
	return s.Repo.Transaction(ctx, func(tx *repository.Repository) error {
		reset, err := tx.PasswordReset.GetByTokenHashForUpdate(ctx, hashResetToken(req.Token))
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrInvalidResetToken
			}
			return err
		}
		if !reset.Usable(now) {
			return ErrInvalidResetToken
		}

		account, err := tx.Account.GetByID(ctx, reset.AccountID)
		if err != nil {
			return err
		}
		if err := s.passwordPolicy().Validate(req.NewPassword, account.Username, account.Email); err != nil {
			return weakPassword("new_password", err)
		}

		if err := tx.Account.UpdatePassword(ctx, reset.AccountID, hash, false); err != nil {
			return err
		}
		if err := tx.PasswordReset.MarkUsed(ctx, reset.ID, now); err != nil {
			if repository.IsNotFound(err) {
				return ErrInvalidResetToken
			}
			return err
		}
		return tx.PasswordReset.InvalidateForAccount(ctx, reset.AccountID, now)
	})
}
