package service

import (
	"time"

	"github.com/davidblanco1407/pma-frequency-backend/internal/dto"
	"github.com/davidblanco1407/pma-frequency-backend/internal/model"
)

func toAccountResponse(a *model.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:                 a.ID,
		Username:           a.Username,
		Email:              a.Email,
		FirstName:          a.FirstName,
		LastName:           a.LastName,
		IsStaff:            a.IsStaff,
		IsSuperuser:        a.IsSuperuser,
		MustChangePassword: a.MustChangePassword,
	}
}

func toMemberResponse(m *model.Member) dto.MemberResponse {
	var mayReturn *bool
	switch m.ReturnPolicy {
	case model.ReturnPolicyMayReturn:
		v := true
		mayReturn = &v
	case model.ReturnPolicyBlocked:
		v := false
		mayReturn = &v
	}
	return dto.MemberResponse{
		ID:            m.ID,
		AccountID:     m.AccountID,
		FullName:      m.FullName,
		Email:         m.Email,
		Phone:         m.Phone,
		Active:        m.Active,
		MayReturn:     mayReturn,
		Status:        string(m.Status()),
		RegisteredAt:  m.RegisteredAt,
		DeactivatedAt: m.DeactivatedAt,
		DeactivatedBy: m.DeactivatedBy,
	}
}

func toMemberResponses(members []model.Member) []dto.MemberResponse {
	list := make([]dto.MemberResponse, 0, len(members))
	for i := range members {
		list = append(list, toMemberResponse(&members[i]))
	}
	return list
}

func toSanctionResponse(s *model.Sanction, now time.Time) dto.SanctionResponse {
	resp := dto.SanctionResponse{
		ID:           s.ID,
		MemberID:     s.MemberID,
		Reason:       s.Reason,
		ImposedAt:    s.ImposedAt,
		DurationDays: s.DurationDays,
		ExpiresAt:    s.ExpiresAt(),
		InForce:      s.InForce(now),
		ImposedBy:    s.ImposedBy,
	}
	if s.Member != nil {
		resp.MemberName = s.Member.FullName
	}
	return resp
}

func toCorrectionResponse(c *model.CorrectionRequest) dto.CorrectionResponse {
	resp := dto.CorrectionResponse{
		ID:          c.ID,
		MemberID:    c.MemberID,
		Description: c.Description,
		SubmittedAt: c.SubmittedAt,
		Status:      string(c.Status),
		Response:    c.Response,
		ResolvedBy:  c.ResolvedBy,
		ResolvedAt:  c.ResolvedAt,
	}
	if c.Member != nil {
		resp.MemberName = c.Member.FullName
	}
	return resp
}
