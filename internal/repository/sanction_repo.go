package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/davidblanco1407/pma-frequency-backend/internal/model"
)

// SanctionFilter narrows sanction listings.
type SanctionFilter struct {
	MemberID *uint
}

// SanctionRepository data access for sanctions. Sanctions are never deleted.
type SanctionRepository interface {
	Create(ctx context.Context, sanction *model.Sanction) error
	GetByID(ctx context.Context, id uint) (*model.Sanction, error)
	Update(ctx context.Context, sanction *model.Sanction) error
	List(ctx context.Context, filter SanctionFilter, offset, limit int) ([]model.Sanction, int64, error)
}

type sanctionRepo struct {
	db *gorm.DB
}

// NewSanctionRepo creates a SanctionRepository.
func NewSanctionRepo(db *gorm.DB) SanctionRepository {
	return &sanctionRepo{db: db}
}

func (r *sanctionRepo) Create(ctx context.Context, sanction *model.Sanction) error {
	return r.db.WithContext(ctx).Create(sanction).Error
}

func (r *sanctionRepo) GetByID(ctx context.Context, id uint) (*model.Sanction, error) {
	var sanction model.Sanction
	err := r.db.WithContext(ctx).
		Preload("Member").
		First(&sanction, id).Error
	if err != nil {
		return nil, err
	}
	return &sanction, nil
}

// Update writes reason and duration. Member, imposed_at and imposed_by are
// fixed once recorded.
func (r *sanctionRepo) Update(ctx context.Context, sanction *model.Sanction) error {
	res := r.db.WithContext(ctx).Model(&model.Sanction{}).
		Where("id = ?", sanction.ID).
		Updates(map[string]interface{}{
			"reason":        sanction.Reason,
			"duration_days": sanction.DurationDays,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *sanctionRepo) List(ctx context.Context, filter SanctionFilter, offset, limit int) ([]model.Sanction, int64, error) {
	var sanctions []model.Sanction
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Sanction{})
	if filter.MemberID != nil {
		db = db.Where("member_id = ?", *filter.MemberID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := paginate(db, offset, limit).
		Preload("Member").
		Order("imposed_at DESC").Order("id DESC").
		Find(&sanctions).Error; err != nil {
		return nil, 0, err
	}

	return sanctions, total, nil
}
