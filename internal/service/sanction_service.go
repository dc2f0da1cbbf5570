package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/davidblanco1407/pma-frequency-backend/internal/authz"
	"github.com/davidblanco1407/pma-frequency-backend/internal/dto"
	"github.com/davidblanco1407/pma-frequency-backend/internal/model"
	"github.com/davidblanco1407/pma-frequency-backend/internal/repository"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/sanitize"
)

// SanctionService sanction management. Staff only.
type SanctionService interface {
	List(ctx context.Context, actor authz.Actor, req *dto.SanctionListRequest) ([]dto.SanctionResponse, int64, error)
	ListByMember(ctx context.Context, actor authz.Actor, memberID uint, page *dto.PaginationRequest) ([]dto.SanctionResponse, int64, error)
	Get(ctx context.Context, actor authz.Actor, id uint) (*dto.SanctionResponse, error)
	Create(ctx context.Context, actor authz.Actor, req *dto.CreateSanctionRequest) (*dto.SanctionResponse, error)
	Update(ctx context.Context, actor authz.Actor, id uint, req *dto.UpdateSanctionRequest) (*dto.SanctionResponse, error)
}

type sanctionService struct {
	*Deps
}

// NewSanctionService creates a SanctionService.
func NewSanctionService(d *Deps) SanctionService {
	return &sanctionService{Deps: d}
}

func (s *sanctionService) List(ctx context.Context, actor authz.Actor, req *dto.SanctionListRequest) ([]dto.SanctionResponse, int64, error) {
	if !authz.CanManageSanctions(actor) {
		return nil, 0, ErrForbidden
	}
	var filter repository.SanctionFilter
	if req.MemberID != 0 {
		filter.MemberID = &req.MemberID
	}
	return s.list(ctx, filter, &req.PaginationRequest)
}

func (s *sanctionService) ListByMember(ctx context.Context, actor authz.Actor, memberID uint, page *dto.PaginationRequest) ([]dto.SanctionResponse, int64, error) {
	if !authz.CanManageSanctions(actor) {
		return nil, 0, ErrForbidden
	}
	if _, err := s.Repo.Member.GetByID(ctx, memberID); err != nil {
		if repository.IsNotFound(err) {
			return nil, 0, ErrMemberNotFound
		}
		return nil, 0, err
	}
	return s.list(ctx, repository.SanctionFilter{MemberID: &memberID}, page)
}

func (s *sanctionService) list(ctx context.Context, filter repository.SanctionFilter, page *dto.PaginationRequest) ([]dto.SanctionResponse, int64, error) {
	sanctions, total, err := s.Repo.Sanction.List(ctx, filter, page.GetOffset(), page.GetPageSize())
	if err != nil {
		return nil, 0, err
	}
	now := s.now()
	list := make([]dto.SanctionResponse, 0, len(sanctions))
	for i := range sanctions {
		list = append(list, toSanctionResponse(&sanctions[i], now))
	}
	return list, total, nil
}

func (s *sanctionService) Get(ctx context.Context, actor authz.Actor, id uint) (*dto.SanctionResponse, error) {
	if !authz.CanManageSanctions(actor) {
		return nil, ErrForbidden
	}
	sanction, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toSanctionResponse(sanction, s.now())
	return &resp, nil
}

func (s *sanctionService) load(ctx context.Context, id uint) (*model.Sanction, error) {
	sanction, err := s.Repo.Sanction.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrSanctionNotFound
		}
		return nil, err
	}
	return sanction, nil
}

func (s *sanctionService) Create(ctx context.Context, actor authz.Actor, req *dto.CreateSanctionRequest) (*dto.SanctionResponse, error) {
	if !authz.CanManageSanctions(actor) {
		return nil, ErrForbidden
	}
	reason := sanitize.Text(req.Reason)
	if reason == "" {
		return nil, blankText("reason")
	}
	if _, err := s.Repo.Member.GetByID(ctx, req.MemberID); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrMemberNotFound.WithField("member_id", "no such member")
		}
		return nil, err
	}

	by := actor.AccountID
	sanction := &model.Sanction{
		MemberID:     req.MemberID,
		Reason:       reason,
		DurationDays: req.DurationDays,
		ImposedBy:    &by,
	}
	if err := s.Repo.Sanction.Create(ctx, sanction); err != nil {
		return nil, err
	}
	s.Logger.Info("sanction imposed",
		zap.Uint("sanction_id", sanction.ID), zap.Uint("member_id", sanction.MemberID), zap.Uint("actor", by))

	return s.Get(ctx, actor, sanction.ID)
}

func (s *sanctionService) Update(ctx context.Context, actor authz.Actor, id uint, req *dto.UpdateSanctionRequest) (*dto.SanctionResponse, error) {
	if !authz.CanManageSanctions(actor) {
		return nil, ErrForbidden
	}
	sanction, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Reason != nil {
		reason := sanitize.Text(*req.Reason)
		if reason == "" {
			return nil, blankText("reason")
		}
		sanction.Reason = reason
	}
	switch {
	case req.ClearDuration:
		sanction.DurationDays = nil
	case req.DurationDays != nil:
		sanction.DurationDays = req.DurationDays
	}

	if err := s.Repo.Sanction.Update(ctx, sanction); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrSanctionNotFound
		}
		return nil, err
	}
	return s.Get(ctx, actor, id)
}
