package model

import "time"

// ReturnPolicy records whether an inactive member may come back.
type ReturnPolicy string

const (
	ReturnPolicyUnset     ReturnPolicy = "unset"
	ReturnPolicyMayReturn ReturnPolicy = "may_return"
	ReturnPolicyBlocked   ReturnPolicy = "blocked"
)

// Valid reports whether p is one of the known values.
func (p ReturnPolicy) Valid() bool {
	switch p {
	case ReturnPolicyUnset, ReturnPolicyMayReturn, ReturnPolicyBlocked:
		return true
	}
	return false
}

// MemberStatus is the derived status shown to clients.
type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "active"
	MemberStatusInactive MemberStatus = "inactive"
	MemberStatusBlocked  MemberStatus = "blocked"
)

// Member is a registered community member. Members are never deleted;
// they are deactivated instead.
type Member struct {
	ID            uint         `gorm:"primaryKey"                                json:"id"`
	AccountID     uint         `gorm:"uniqueIndex;not null"                      json:"account_id"`
	FullName      string       `gorm:"type:varchar(100);not null;index"          json:"full_name"`
	Email         string       `gorm:"type:varchar(254);uniqueIndex;not null"    json:"email"`
	Phone         string       `gorm:"type:varchar(20);not null"                 json:"phone"`
	Active        bool         `gorm:"not null;default:true"                     json:"active"`
	ReturnPolicy  ReturnPolicy `gorm:"type:varchar(20);not null;default:'unset'" json:"return_policy"`
	RegisteredAt  time.Time    `gorm:"not null;autoCreateTime"                   json:"registered_at"`
	DeactivatedAt *time.Time   `                                                 json:"deactivated_at,omitempty"`
	DeactivatedBy *uint        `                                                 json:"deactivated_by,omitempty"`
	UpdatedAt     time.Time    `gorm:"not null;autoUpdateTime"                   json:"updated_at"`

	Account *Account `gorm:"foreignKey:AccountID" json:"-"`
}

// TableName overrides the table name.
func (Member) TableName() string { return "members" }

// Status derives the display status.
func (m *Member) Status() MemberStatus {
	switch {
	case m.Active:
		return MemberStatusActive
	case m.ReturnPolicy == ReturnPolicyBlocked:
		return MemberStatusBlocked
	default:
		return MemberStatusInactive
	}
}
