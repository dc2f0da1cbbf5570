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

// CorrectionService correction requests raised by members about their
// records.
type CorrectionService interface {
	List(ctx context.Context, actor authz.Actor, req *dto.CorrectionListRequest) ([]dto.CorrectionResponse, int64, error)
	Get(ctx context.Context, actor authz.Actor, id uint) (*dto.CorrectionResponse, error)
	Create(ctx context.Context, actor authz.Actor, req *dto.CreateCorrectionRequest) (*dto.CorrectionResponse, error)
	Update(ctx context.Context, actor authz.Actor, id uint, req *dto.UpdateCorrectionRequest) (*dto.CorrectionResponse, error)
}

type correctionService struct {
	*Deps
}

// NewCorrectionService creates a CorrectionService.
func NewCorrectionService(d *Deps) CorrectionService {
	return &correctionService{Deps: d}
}

func (s *correctionService) List(ctx context.Context, actor authz.Actor, req *dto.CorrectionListRequest) ([]dto.CorrectionResponse, int64, error) {
	filter := repository.CorrectionFilter{Status: model.CorrectionStatus(req.Status)}
	if req.MemberID != 0 {
		filter.MemberID = &req.MemberID
	}

	if !actor.IsStaff() {
		m, err := s.Repo.Member.GetByAccountID(ctx, actor.AccountID)
		if err != nil {
			if repository.IsNotFound(err) {
				return []dto.CorrectionResponse{}, 0, nil
			}
			return nil, 0, err
		}
		filter.MemberID = &m.ID
	}

	items, total, err := s.Repo.Correction.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, err
	}
	list := make([]dto.CorrectionResponse, 0, len(items))
	for i := range items {
		list = append(list, toCorrectionResponse(&items[i]))
	}
	return list, total, nil
}

func (s *correctionService) Get(ctx context.Context, actor authz.Actor, id uint) (*dto.CorrectionResponse, error) {
	req, err := s.Repo.Correction.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrCorrectionNotFound
		}
		return nil, err
	}
	if !authz.CanReadCorrection(actor, req.Member) {
		return nil, ErrForbidden
	}
	resp := toCorrectionResponse(req)
	return &resp, nil
}

// Create files a request for the actor's own member profile. Accounts with
// no profile get a not-found error and nothing is stored.
func (s *correctionService) Create(ctx context.Context, actor authz.Actor, req *dto.CreateCorrectionRequest) (*dto.CorrectionResponse, error) {
	if !authz.CanCreateCorrection(actor) {
		return nil, ErrForbidden
	}
	m, err := s.Repo.Member.GetByAccountID(ctx, actor.AccountID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrMemberProfileNotFound
		}
		return nil, err
	}

	description := sanitize.Text(req.Description)
	if description == "" {
		return nil, blankText("description")
	}

	item := &model.CorrectionRequest{
		MemberID:    m.ID,
		Description: description,
		Status:      model.CorrectionPending,
	}
	if err := s.Repo.Correction.Create(ctx, item); err != nil {
		return nil, err
	}
	item.Member = m

	s.Logger.Info("correction request submitted",
		zap.Uint("correction_id", item.ID), zap.Uint("member_id", m.ID))
	resp := toCorrectionResponse(item)
	return &resp, nil
}

// Update resolves or annotates a request. Pending requests may move to
// approved or rejected; resolved ones only accept response edits.
func (s *correctionService) Update(ctx context.Context, actor authz.Actor, id uint, req *dto.UpdateCorrectionRequest) (*dto.CorrectionResponse, error) {
	if !authz.CanResolveCorrection(actor) {
		return nil, ErrForbidden
	}

	err := s.Repo.Transaction(ctx, func(tx *repository.Repository) error {
		item, err := tx.Correction.GetByIDForUpdate(ctx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrCorrectionNotFound
			}
			return err
		}

		if req.Status != nil {
			next := model.CorrectionStatus(*req.Status)
			if !next.Valid() {
				return ErrInvalidStatus
			}
			if next != item.Status {
				if item.Status != model.CorrectionPending {
					return ErrCorrectionResolved
				}
				item.Status = next
				if next != model.CorrectionPending {
					now := s.now()
					by := actor.AccountID
					item.ResolvedAt = &now
					item.ResolvedBy = &by
				}
			}
		}
		if req.Response != nil {
			item.Response = sanitize.TextPtr(req.Response)
		}

		return tx.Correction.Update(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, actor, id)
}
