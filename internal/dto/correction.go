package dto

// ── correction requests ──

// CorrectionListRequest list query parameters.
type CorrectionListRequest struct {
	PaginationRequest
	Status   string `form:"status"    binding:"omitempty,oneof=pending approved rejected"`
	MemberID uint   `form:"member_id" binding:"omitempty,min=1"`
}

// CreateCorrectionRequest submitted by a member about their own records.
type CreateCorrectionRequest struct {
	Description string `json:"description" binding:"required,max=5000"`
}

// UpdateCorrectionRequest staff resolution.
type UpdateCorrectionRequest struct {
	Status   *string `json:"status"   binding:"omitempty,oneof=pending approved rejected"`
	Response *string `json:"response" binding:"omitempty,max=5000"`
}
