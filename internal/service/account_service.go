package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/davidblanco1407/pma-frequency-backend/internal/authz"
	"github.com/davidblanco1407/pma-frequency-backend/internal/dto"
	"github.com/davidblanco1407/pma-frequency-backend/internal/model"
	"github.com/davidblanco1407/pma-frequency-backend/internal/repository"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/password"
)

// AccountService account administration.
type AccountService interface {
	UpdatePrivileges(ctx context.Context, actor authz.Actor, id uint, req *dto.UpdatePrivilegesRequest) (*dto.AccountResponse, error)
	// CreateSuperuser is used by the create-superuser command. The account
	// has no member profile.
	CreateSuperuser(ctx context.Context, username, email, plain string) (*dto.AccountResponse, error)
}

type accountService struct {
	*Deps
}

// NewAccountService creates an AccountService.
func NewAccountService(d *Deps) AccountService {
	return &accountService{Deps: d}
}

func (s *accountService) UpdatePrivileges(ctx context.Context, actor authz.Actor, id uint, req *dto.UpdatePrivilegesRequest) (*dto.AccountResponse, error) {
	if !authz.CanManagePrivileges(actor) {
		return nil, ErrForbidden
	}
	if err := s.Repo.Account.UpdatePrivileges(ctx, id, *req.IsStaff); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	account, err := s.Repo.Account.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Logger.Info("account privileges changed",
		zap.Uint("account_id", id), zap.Bool("is_staff", account.IsStaff), zap.Uint("actor", actor.AccountID))
	resp := toAccountResponse(account)
	return &resp, nil
}

func (s *accountService) CreateSuperuser(ctx context.Context, username, email, plain string) (*dto.AccountResponse, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" {
		return nil, blankText("username")
	}
	if err := s.passwordPolicy().Validate(plain, username, email); err != nil {
		return nil, weakPassword("password", err)
	}

	if exists, err := s.Repo.Account.UsernameExists(ctx, username); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrUsernameTaken
	}
	if exists, err := s.Repo.Account.EmailExists(ctx, email, 0); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrEmailTaken
	}

	hash, err := password.Hash(plain, s.Config.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}
	account := &model.Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      true,
		IsSuperuser:  true,
	}
	if err := s.Repo.Account.Create(ctx, account); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	s.Logger.Info("superuser created", zap.String("username", username))
	resp := toAccountResponse(account)
	return &resp, nil
}
