package model

import "time"

// CorrectionStatus of a correction request.
type CorrectionStatus string

const (
	CorrectionPending  CorrectionStatus = "pending"
	CorrectionApproved CorrectionStatus = "approved"
	CorrectionRejected CorrectionStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s CorrectionStatus) Valid() bool {
	switch s {
	case CorrectionPending, CorrectionApproved, CorrectionRejected:
		return true
	}
	return false
}

// CorrectionRequest is a member's request to fix a record about them.
type CorrectionRequest struct {
	ID          uint             `gorm:"primaryKey"                                  json:"id"`
	MemberID    uint             `gorm:"not null;index"                              json:"member_id"`
	Description string           `gorm:"type:text;not null"                          json:"description"`
	SubmittedAt time.Time        `gorm:"not null;autoCreateTime"                     json:"submitted_at"`
	Status      CorrectionStatus `gorm:"type:varchar(10);not null;default:'pending'" json:"status"`
	Response    *string          `gorm:"type:text"                                   json:"response,omitempty"`
	ResolvedBy  *uint            `                                                   json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time       `                                                   json:"resolved_at,omitempty"`

	Member *Member `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the table name.
func (CorrectionRequest) TableName() string { return "correction_requests" }
