package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/davidblanco1407/pma-frequency-backend/internal/authz"
	"github.com/davidblanco1407/pma-frequency-backend/internal/dto"
	"github.com/davidblanco1407/pma-frequency-backend/internal/lifecycle"
	"github.com/davidblanco1407/pma-frequency-backend/internal/model"
	"github.com/davidblanco1407/pma-frequency-backend/internal/repository"
	apperrors "github.com/davidblanco1407/pma-frequency-backend/pkg/errors"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/phone"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/sanitize"
)

// MemberService member business logic.
type MemberService interface {
	List(ctx context.Context, actor authz.Actor, req *dto.MemberListRequest) ([]dto.MemberResponse, int64, error)
	Get(ctx context.Context, actor authz.Actor, id uint) (*dto.MemberResponse, error)
	Me(ctx context.Context, actor authz.Actor) (*dto.MemberResponse, error)
	Create(ctx context.Context, actor authz.Actor, req *dto.CreateMemberRequest) (*dto.CreateMemberResponse, error)
	Update(ctx context.Context, actor authz.Actor, id uint, req *dto.UpdateMemberRequest) (*dto.MemberResponse, error)
	Delete(ctx context.Context, actor authz.Actor, id uint) error
	BulkStatus(ctx context.Context, actor authz.Actor, req *dto.BulkStatusRequest) (*dto.BulkStatusResponse, error)
	Stats(ctx context.Context, actor authz.Actor) (*repository.MemberStats, error)
}

type memberService struct {
	*Deps
	prov *Provisioner
}

// NewMemberService creates a MemberService.
func NewMemberService(d *Deps, prov *Provisioner) MemberService {
	return &memberService{Deps: d, prov: prov}
}

// FilterFromRequest maps list query parameters onto the repository filter.
func FilterFromRequest(req *dto.MemberListRequest) repository.MemberFilter {
	return repository.MemberFilter{
		Name:           strings.TrimSpace(req.Name),
		Email:          strings.TrimSpace(req.Email),
		Phone:          strings.TrimSpace(req.Phone),
		Active:         req.Active,
		MayReturn:      req.MayReturn,
		RegisteredFrom: req.RegisteredFrom,
		RegisteredTo:   endOfDay(req.RegisteredTo),
	}
}

// scope restricts non-staff actors to their own member row.
func scope(actor authz.Actor, f repository.MemberFilter) repository.MemberFilter {
	if !authz.CanListAllMembers(actor) {
		id := actor.AccountID
		f.AccountID = &id
	}
	return f
}

// ──── List ────

func (s *memberService) List(ctx context.Context, actor authz.Actor, req *dto.MemberListRequest) ([]dto.MemberResponse, int64, error) {
	filter := scope(actor, FilterFromRequest(req))
	members, total, err := s.Repo.Member.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, err
	}
	return toMemberResponses(members), total, nil
}

// ──── Get / Me ────

func (s *memberService) Get(ctx context.Context, actor authz.Actor, id uint) (*dto.MemberResponse, error) {
	m, err := s.Repo.Member.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	if !authz.CanReadMember(actor, m) {
		return nil, ErrForbidden
	}
	resp := toMemberResponse(m)
	return &resp, nil
}

func (s *memberService) Me(ctx context.Context, actor authz.Actor) (*dto.MemberResponse, error) {
	m, err := s.Repo.Member.GetByAccountID(ctx, actor.AccountID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrMemberProfileNotFound
		}
		return nil, err
	}
	resp := toMemberResponse(m)
	return &resp, nil
}

// ──── Create ────

func (s *memberService) Create(ctx context.Context, actor authz.Actor, req *dto.CreateMemberRequest) (*dto.CreateMemberResponse, error) {
	if !authz.CanCreateMember(actor) {
		return nil, ErrForbidden
	}
	out, err := s.prov.Provision(ctx, req)
	if err != nil {
		return nil, err
	}
	return &dto.CreateMemberResponse{
		Member:   toMemberResponse(out.Member),
		Username: out.Account.Username,
	}, nil
}

// ──── Update ────

func (s *memberService) Update(ctx context.Context, actor authz.Actor, id uint, req *dto.UpdateMemberRequest) (*dto.MemberResponse, error) {
	contact, err := contactFields(req)
	if err != nil {
		return nil, err
	}
	change := lifecycle.Change{Active: req.Active}
	if req.MayReturn != nil {
		d := lifecycle.DecisionFor(*req.MayReturn)
		change.Decision = &d
	}

	var statusChange string
	err = s.Repo.Transaction(ctx, func(tx *repository.Repository) error {
		m, err := tx.Member.GetByIDForUpdate(ctx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrMemberNotFound
			}
			return err
		}
		if !authz.CanUpdateMember(actor, m) {
			return ErrForbidden
		}
		for field := range contact {
			if !authz.CanEditMemberField(actor, m, field) {
				return ErrForbidden
			}
		}

		current := lifecycle.StateOf(m)
		next, err := lifecycle.Apply(actor, current, change, s.now())
		if err != nil {
			return err
		}

		if email, ok := contact["email"].(string); ok && !strings.EqualFold(email, m.Email) {
			if err := s.ensureEmailFree(ctx, tx, email, m); err != nil {
				return err
			}
			if err := tx.Account.UpdateEmail(ctx, m.AccountID, email); err != nil {
				return err
			}
		}
		if err := tx.Member.UpdateContact(ctx, m.ID, contact); err != nil {
			if repository.IsUniqueViolation(err) {
				return ErrEmailTaken
			}
			return err
		}

		if !change.Empty() {
			if err := tx.Member.UpdateStatus(ctx, m.ID, repository.MemberStatusFields{
				Active:        next.Active,
				ReturnPolicy:  next.Policy,
				DeactivatedAt: next.DeactivatedAt,
				DeactivatedBy: next.DeactivatedBy,
			}); err != nil {
				return err
			}
			statusChange = describeChange(current, next)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if statusChange != "" {
		s.Metrics.StatusChange(statusChange)
		s.Logger.Info("member status changed",
			zap.Uint("member_id", id), zap.Uint("actor", actor.AccountID), zap.String("change", statusChange))
	}

	m, err := s.Repo.Member.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toMemberResponse(m)
	return &resp, nil
}

// contactFields validates and normalises the contact part of req.
func contactFields(req *dto.UpdateMemberRequest) (map[string]interface{}, error) {
	var c memberContact
	if req.FullName != nil {
		name := sanitize.Text(*req.FullName)
		c.FullName = &name
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		c.Email = &email
	}
	if err := checkMemberContact(c); err != nil {
		return nil, err
	}

	fields := make(map[string]interface{}, 3)
	if c.FullName != nil {
		fields["full_name"] = *c.FullName
	}
	if c.Email != nil {
		fields["email"] = *c.Email
	}
	if req.Phone != nil {
		tel, err := phone.Normalize(*req.Phone)
		if err != nil {
			return nil, ErrInvalidPhone
		}
		fields["phone"] = tel
	}
	return fields, nil
}

func (s *memberService) ensureEmailFree(ctx context.Context, tx *repository.Repository, email string, m *model.Member) error {
	taken, err := tx.Member.EmailExists(ctx, email, m.ID)
	if err != nil {
		return err
	}
	if !taken {
		if taken, err = tx.Account.EmailExists(ctx, email, m.AccountID); err != nil {
			return err
		}
	}
	if taken {
		return ErrEmailTaken
	}
	return nil
}

func describeChange(from, to lifecycle.State) string {
	switch {
	case from.Active && !to.Active:
		return "deactivated"
	case !from.Active && to.Active:
		return "reactivated"
	case from.Policy != to.Policy:
		return "decision_changed"
	default:
		return ""
	}
}

// ──── Delete ────

// Delete always fails; members are only ever deactivated.
func (s *memberService) Delete(ctx context.Context, actor authz.Actor, id uint) error {
	return ErrMemberDeleteForbidden
}

// ──── BulkStatus ────

func (s *memberService) BulkStatus(ctx context.Context, actor authz.Actor, req *dto.BulkStatusRequest) (*dto.BulkStatusResponse, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	action, err := lifecycle.ParseBulkAction(req.Action)
	if err != nil {
		return nil, ErrUnknownBulkAction.WithField("action", err.Error())
	}

	resp := &dto.BulkStatusResponse{
		Action:  string(action),
		Updated: []uint{},
		Skipped: []dto.BulkSkipped{},
	}
	seen := make(map[uint]struct{}, len(req.MemberIDs))
	for _, id := range req.MemberIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		applied, err := s.applyBulk(ctx, actor, action, id)
		switch {
		case err != nil:
			resp.Skipped = append(resp.Skipped, dto.BulkSkipped{MemberID: id, Reason: s.skipReason(id, err)})
		case !applied:
			resp.Skipped = append(resp.Skipped, dto.BulkSkipped{MemberID: id, Reason: "not applicable"})
		default:
			resp.Updated = append(resp.Updated, id)
		}
	}

	s.Logger.Info("bulk status change",
		zap.String("action", resp.Action), zap.Uint("actor", actor.AccountID),
		zap.Int("updated", len(resp.Updated)), zap.Int("skipped", len(resp.Skipped)))
	return resp, nil
}

func (s *memberService) applyBulk(ctx context.Context, actor authz.Actor, action lifecycle.BulkAction, id uint) (bool, error) {
	applied := false
	var current, next lifecycle.State
	err := s.Repo.Transaction(ctx, func(tx *repository.Repository) error {
		m, err := tx.Member.GetByIDForUpdate(ctx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrMemberNotFound
			}
			return err
		}
		current = lifecycle.StateOf(m)
		if !action.AppliesTo(current) {
			return nil
		}
		if next, err = lifecycle.Apply(actor, current, action.Change(), s.now()); err != nil {
			return err
		}
		if err := tx.Member.UpdateStatus(ctx, id, repository.MemberStatusFields{
			Active:        next.Active,
			ReturnPolicy:  next.Policy,
			DeactivatedAt: next.DeactivatedAt,
			DeactivatedBy: next.DeactivatedBy,
		}); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if applied {
		s.Metrics.StatusChange(describeChange(current, next))
	}
	return applied, nil
}

func (s *memberService) skipReason(id uint, err error) string {
	if errors.Is(err, ErrMemberNotFound) {
		return "not found"
	}
	if appErr, ok := apperrors.As(err); ok {
		return appErr.Message
	}
	s.Logger.Error("bulk status change failed", zap.Uint("member_id", id), zap.Error(err))
	return "internal error"
}

// endOfDay makes a date-only upper bound inclusive.
func endOfDay(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	end := t.Add(24*time.Hour - time.Nanosecond)
	return &end
}

// ──── Stats ────

func (s *memberService) Stats(ctx context.Context, actor authz.Actor) (*repository.MemberStats, error) {
	if !authz.CanViewMemberStats(actor) {
		return nil, ErrForbidden
	}
	return s.Repo.Member.Stats(ctx)
}
