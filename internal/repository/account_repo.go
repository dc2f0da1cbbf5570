package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/davidblanco1407/pma-frequency-backend/internal/model"
)

// AccountRepository data access for login accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id uint) (*model.Account, error)
	GetByUsername(ctx context.Context, username string) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string, excludeID uint) (bool, error)
	UpdateEmail(ctx context.Context, id uint, email string) error
	UpdatePassword(ctx context.Context, id uint, hash string, mustChange bool) error
	UpdatePrivileges(ctx context.Context, id uint, isStaff bool) error
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
}

type accountRepo struct {
	db *gorm.DB
}

// NewAccountRepo creates an AccountRepository.
func NewAccountRepo(db *gorm.DB) AccountRepository {
	return &accountRepo{db: db}
}

func (r *accountRepo) Create(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *accountRepo) GetByID(ctx context.Context, id uint) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepo) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("username = ?", username).
		Count(&n).Error
	return n > 0, err
}

func (r *accountRepo) EmailExists(ctx context.Context, email string, excludeID uint) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("LOWER(email) = LOWER(?)", email)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

func (r *accountRepo) UpdateEmail(ctx context.Context, id uint, email string) error {
	return r.update(ctx, id, map[string]interface{}{"email": email})
}

func (r *accountRepo) UpdatePassword(ctx context.Context, id uint, hash string, mustChange bool) error {
	return r.update(ctx, id, map[string]interface{}{
		"password_hash":        hash,
		"must_change_password": mustChange,
	})
}

func (r *accountRepo) UpdatePrivileges(ctx context.Context, id uint, isStaff bool) error {
	return r.update(ctx, id, map[string]interface{}{"is_staff": isStaff})
}

func (r *accountRepo) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.update(ctx, id, map[string]interface{}{"last_login_at": at})
}

func (r *accountRepo) update(ctx context.Context, id uint, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
