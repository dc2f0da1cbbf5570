package dto

import "time"

// ── members ──

// MemberListRequest list and search query parameters.
type MemberListRequest struct {
	PaginationRequest
	Name           string     `form:"name"            binding:"omitempty,max=100"`
	Email          string     `form:"email"           binding:"omitempty,max=254"`
	Phone          string     `form:"phone"           binding:"omitempty,max=20"`
	Active         *bool      `form:"active"`
	MayReturn      *bool      `form:"may_return"`
	RegisteredFrom *time.Time `form:"registered_from" time_format:"2006-01-02"`
	RegisteredTo   *time.Time `form:"registered_to"   time_format:"2006-01-02"`
}

// CreateMemberRequest registers a member and provisions the account.
type CreateMemberRequest struct {
	FullName string `json:"full_name" binding:"required,max=100"`
	Email    string `json:"email"     binding:"required,email,max=254"`
	Phone    string `json:"phone"     binding:"required,max=32"`
	// Password is optional; a temporary one is generated when empty.
	Password string `json:"password"  binding:"omitempty,max=128"`
}

// UpdateMemberRequest partial update. Nil fields are left alone.
type UpdateMemberRequest struct {
	FullName  *string `json:"full_name"  binding:"omitempty,max=100"`
	Email     *string `json:"email"      binding:"omitempty,email,max=254"`
	Phone     *string `json:"phone"      binding:"omitempty,max=32"`
	Active    *bool   `json:"active"`
	MayReturn *bool   `json:"may_return"`
}

// BulkStatusRequest applies one lifecycle action to many members.
type BulkStatusRequest struct {
	Action    string `json:"action"     binding:"required,oneof=reactivate deactivate_temporary deactivate_permanent"`
	MemberIDs []uint `json:"member_ids" binding:"required,min=1,max=500,dive,min=1"`
}
