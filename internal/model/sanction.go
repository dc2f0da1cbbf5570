package model

import "time"

// Sanction is a disciplinary record against a member.
type Sanction struct {
	ID           uint      `gorm:"primaryKey"                json:"id"`
	MemberID     uint      `gorm:"not null;index"            json:"member_id"`
	Reason       string    `gorm:"type:text;not null"        json:"reason"`
	ImposedAt    time.Time `gorm:"not null;autoCreateTime"   json:"imposed_at"`
	DurationDays *int      `                                 json:"duration_days,omitempty"`
	ImposedBy    *uint     `                                 json:"imposed_by,omitempty"`

	Member *Member `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the table name.
func (Sanction) TableName() string { return "sanctions" }

// ExpiresAt is nil for sanctions without a duration.
func (s *Sanction) ExpiresAt() *time.Time {
	if s.DurationDays == nil {
		return nil
	}
	t := s.ImposedAt.AddDate(0, 0, *s.DurationDays)
	return &t
}

// InForce reports whether the sanction still applies at now.
// Sanctions without a duration never lapse.
func (s *Sanction) InForce(now time.Time) bool {
	exp := s.ExpiresAt()
	return exp == nil || now.Before(*exp)
}
