package model

import "time"

// Account is the login identity. A member owns exactly one account;
// superusers may exist without a member profile.
type Account struct {
	ID                 uint       `gorm:"primaryKey"                             json:"id"`
	Username           string     `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email              string     `gorm:"type:varchar(254);uniqueIndex;not null" json:"email"`
	PasswordHash       string     `gorm:"type:varchar(255);not null"             json:"-"`
	FirstName          string     `gorm:"type:varchar(150);not null;default:''"  json:"first_name"`
	LastName           string     `gorm:"type:varchar(150);not null;default:''"  json:"last_name"`
	IsStaff            bool       `gorm:"not null;default:false"                 json:"is_staff"`
	IsSuperuser        bool       `gorm:"not null;default:false"                 json:"is_superuser"`
	IsActive           bool       `gorm:"not null;default:true"                  json:"is_active"`
	MustChangePassword bool       `gorm:"not null;default:false"                 json:"must_change_password"`
	LastLoginAt        *time.Time `                                              json:"last_login_at,omitempty"`
	BaseModel
}

// TableName overrides the table name.
func (Account) TableName() string { return "accounts" }
