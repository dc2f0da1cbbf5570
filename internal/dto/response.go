package dto

import "time"

// ── auth responses ──

// TokenResponse access/refresh pair.
type TokenResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"` // access token lifetime, seconds
	Account      AccountResponse `json:"account"`
}

// MessageResponse plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// ── accounts ──

// AccountResponse account without secrets.
type AccountResponse struct {
	ID                 uint   `json:"id"`
	Username           string `json:"username"`
	Email              string `json:"email"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	IsStaff            bool   `json:"is_staff"`
	IsSuperuser        bool   `json:"is_superuser"`
	MustChangePassword bool   `json:"must_change_password"`
}

// ── members ──

// MemberResponse member with derived status.
type MemberResponse struct {
	ID            uint       `json:"id"`
	AccountID     uint       `json:"account_id"`
	FullName      string     `json:"full_name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Active        bool       `json:"active"`
	MayReturn     *bool      `json:"may_return"` // null while undecided
	Status        string     `json:"status"`
	RegisteredAt  time.Time  `json:"registered_at"`
	DeactivatedAt *time.Time `json:"deactivated_at"`
	DeactivatedBy *uint      `json:"deactivated_by"`
}

// CreateMemberResponse member plus the login name it was given.
type CreateMemberResponse struct {
	Member   MemberResponse `json:"member"`
	Username string         `json:"username"`
}

// BulkStatusResponse outcome per member.
type BulkStatusResponse struct {
	Action  string        `json:"action"`
	Updated []uint        `json:"updated"`
	Skipped []BulkSkipped `json:"skipped"`
}

// BulkSkipped a member the action did not touch.
type BulkSkipped struct {
	MemberID uint   `json:"member_id"`
	Reason   string `json:"reason"`
}

// ── sanctions ──

// SanctionResponse sanction with derived expiry.
type SanctionResponse struct {
	ID           uint       `json:"id"`
	MemberID     uint       `json:"member_id"`
	MemberName   string     `json:"member_name"`
	Reason       string     `json:"reason"`
	ImposedAt    time.Time  `json:"imposed_at"`
	DurationDays *int       `json:"duration_days"`
	ExpiresAt    *time.Time `json:"expires_at"`
	InForce      bool       `json:"in_force"`
	ImposedBy    *uint      `json:"imposed_by"`
}

// ── correction requests ──

// CorrectionResponse correction request.
type CorrectionResponse struct {
	ID          uint       `json:"id"`
	MemberID    uint       `json:"member_id"`
	MemberName  string     `json:"member_name"`
	Description string     `json:"description"`
	SubmittedAt time.Time  `json:"submitted_at"`
	Status      string     `json:"status"`
	Response    *string    `json:"response"`
	ResolvedBy  *uint      `json:"resolved_by"`
	ResolvedAt  *time.Time `json:"resolved_at"`
}

// ── pagination ──

// PaginationRequest common paging parameters.
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage page number with default.
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize page size with default.
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset row offset.
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}
