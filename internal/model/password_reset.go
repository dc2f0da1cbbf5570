package model

import "time"

// PasswordReset is a single-use reset token. Only the sha256 of the token
// is stored.
type PasswordReset struct {
	ID        uint       `gorm:"primaryKey"                            json:"id"`
	AccountID uint       `gorm:"not null;index"                        json:"account_id"`
	TokenHash string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time  `gorm:"not null"                              json:"expires_at"`
	UsedAt    *time.Time `                                             json:"used_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime"               json:"created_at"`

	Account *Account `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the table name.
func (PasswordReset) TableName() string { return "password_resets" }

// Usable reports whether the token can still be redeemed at now.
func (r *PasswordReset) Usable(now time.Time) bool {
	return r.UsedAt == nil && now.Before(r.ExpiresAt)
}
