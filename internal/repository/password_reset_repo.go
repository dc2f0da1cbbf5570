package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/davidblanco1407/pma-frequency-backend/internal/model"
)

// PasswordResetRepository data access for reset tokens.
type PasswordResetRepository interface {
	Create(ctx context.Context, reset *model.PasswordReset) error
	// GetByTokenHashForUpdate locks the token row; call inside a transaction.
	GetByTokenHashForUpdate(ctx context.Context, tokenHash string) (*model.PasswordReset, error)
	MarkUsed(ctx context.Context, id uint, at time.Time) error
	// InvalidateForAccount marks every unused token of the account as used.
	InvalidateForAccount(ctx context.Context, accountID uint, at time.Time) error
}

type passwordResetRepo struct {
	db *gorm.DB
}

// NewPasswordResetRepo creates a PasswordResetRepository.
func NewPasswordResetRepo(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepo{db: db}
}

func (r *passwordResetRepo) Create(ctx context.Context, reset *model.PasswordReset) error {
	return r.db.WithContext(ctx).Create(reset).Error
}

func (r *passwordResetRepo) GetByTokenHashForUpdate(ctx context.Context, tokenHash string) (*model.PasswordReset, error) {
	var reset model.PasswordReset
	err := forUpdate(r.db.WithContext(ctx)).
		Where("token_hash = ?", tokenHash).
		First(&reset).Error
	if err != nil {
		return nil, err
	}
	return &reset, nil
}

func (r *passwordResetRepo) MarkUsed(ctx context.Context, id uint, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.PasswordReset{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *passwordResetRepo) InvalidateForAccount(ctx context.Context, accountID uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.PasswordReset{}).
		Where("account_id = ? AND used_at IS NULL", accountID).
		Update("used_at", at).Error
}
