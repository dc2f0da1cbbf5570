package model

import "time"

// BaseModel audit timestamps embedded by mutable records.
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// All lists every persisted model, in dependency order.
func All() []interface{} {
	return []interface{}{
		&Account{}, &Member{}, &Sanction{}, &CorrectionRequest{}, &PasswordReset{},
	}
}
