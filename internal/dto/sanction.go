package dto

// ── sanctions ──

// SanctionListRequest list query parameters.
type SanctionListRequest struct {
	PaginationRequest
	MemberID uint `form:"member_id" binding:"omitempty,min=1"`
}

// CreateSanctionRequest imposes a sanction.
type CreateSanctionRequest struct {
	MemberID     uint   `json:"member_id"     binding:"required,min=1"`
	Reason       string `json:"reason"        binding:"required,max=5000"`
	DurationDays *int   `json:"duration_days" binding:"omitempty,min=1,max=3650"`
}

// UpdateSanctionRequest edits reason or duration.
type UpdateSanctionRequest struct {
	Reason       *string `json:"reason"        binding:"omitempty,max=5000"`
	DurationDays *int    `json:"duration_days" binding:"omitempty,min=1,max=3650"`
	// ClearDuration makes the sanction open-ended.
	ClearDuration bool `json:"clear_duration"`
}
