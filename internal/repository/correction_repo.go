package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/davidblanco1407/pma-frequency-backend/internal/model"
)

// CorrectionFilter narrows correction request listings.
type CorrectionFilter struct {
	MemberID *uint
	Status   model.CorrectionStatus
}

// CorrectionRepository data access for correction requests.
type CorrectionRepository interface {
	Create(ctx context.Context, req *model.CorrectionRequest) error
	GetByID(ctx context.Context, id uint) (*model.CorrectionRequest, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*model.CorrectionRequest, error)
	Update(ctx context.Context, req *model.CorrectionRequest) error
	List(ctx context.Context, filter CorrectionFilter, offset, limit int) ([]model.CorrectionRequest, int64, error)
}

type correctionRepo struct {
	db *gorm.DB
}

// NewCorrectionRepo creates a CorrectionRepository.
func NewCorrectionRepo(db *gorm.DB) CorrectionRepository {
	return &correctionRepo{db: db}
}

func (r *correctionRepo) Create(ctx context.Context, req *model.CorrectionRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *correctionRepo) GetByID(ctx context.Context, id uint) (*model.CorrectionRequest, error) {
	var req model.CorrectionRequest
	err := r.db.WithContext(ctx).
		Preload("Member").
		First(&req, id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *correctionRepo) GetByIDForUpdate(ctx context.Context, id uint) (*model.CorrectionRequest, error) {
	var req model.CorrectionRequest
	err := forUpdate(r.db.WithContext(ctx)).
		First(&req, id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Update writes the resolution columns.
func (r *correctionRepo) Update(ctx context.Context, req *model.CorrectionRequest) error {
	res := r.db.WithContext(ctx).Model(&model.CorrectionRequest{}).
		Where("id = ?", req.ID).
		Updates(map[string]interface{}{
			"status":      req.Status,
			"response":    req.Response,
			"resolved_by": req.ResolvedBy,
			"resolved_at": req.ResolvedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *correctionRepo) List(ctx context.Context, filter CorrectionFilter, offset, limit int) ([]model.CorrectionRequest, int64, error) {
	var reqs []model.CorrectionRequest
	var total int64

	db := r.db.WithContext(ctx).Model(&model.CorrectionRequest{})
	if filter.MemberID != nil {
		db = db.Where("member_id = ?", *filter.MemberID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := paginate(db, offset, limit).
		Preload("Member").
		Order("submitted_at DESC").Order("id DESC").
		Find(&reqs).Error; err != nil {
		return nil, 0, err
	}

	return reqs, total, nil
}
