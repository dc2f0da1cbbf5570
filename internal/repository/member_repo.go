package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/davidblanco1407/pma-frequency-backend/internal/model"
)

// MemberFilter narrows member listings. Set fields are AND-combined;
// text fields match case-insensitive substrings.
type MemberFilter struct {
	Name           string
	Email          string
	Phone          string
	Active         *bool
	MayReturn      *bool // true: may_return, false: blocked
	RegisteredFrom *time.Time
	RegisteredTo   *time.Time
	// AccountID restricts the listing to one owner.
	AccountID *uint
}

// MemberStats aggregate counts by status.
type MemberStats struct {
	Total              int64 `json:"total"`
	Active             int64 `json:"active"`
	InactiveReturnable int64 `json:"inactive_returnable"`
	InactiveBlocked    int64 `json:"inactive_blocked"`
}

// MemberStatusFields are the lifecycle columns, always written together.
type MemberStatusFields struct {
	Active        bool
	ReturnPolicy  model.ReturnPolicy
	DeactivatedAt *time.Time
	DeactivatedBy *uint
}

// MemberRepository data access for members.
type MemberRepository interface {
	Create(ctx context.Context, member *model.Member) error
	GetByID(ctx context.Context, id uint) (*model.Member, error)
	// GetByIDForUpdate locks the row; call on a transaction-bound repository.
	GetByIDForUpdate(ctx context.Context, id uint) (*model.Member, error)
	GetByAccountID(ctx context.Context, accountID uint) (*model.Member, error)
	EmailExists(ctx context.Context, email string, excludeID uint) (bool, error)
	UpdateContact(ctx context.Context, id uint, fields map[string]interface{}) error
	UpdateStatus(ctx context.Context, id uint, status MemberStatusFields) error
	List(ctx context.Context, filter MemberFilter, offset, limit int) ([]model.Member, int64, error)
	ListAll(ctx context.Context, filter MemberFilter) ([]model.Member, error)
	Stats(ctx context.Context) (*MemberStats, error)
}

type memberRepo struct {
	db *gorm.DB
}

// NewMemberRepo creates a MemberRepository.
func NewMemberRepo(db *gorm.DB) MemberRepository {
	return &memberRepo{db: db}
}

func (r *memberRepo) Create(ctx context.Context, member *model.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *memberRepo) GetByID(ctx context.Context, id uint) (*model.Member, error) {
	var member model.Member
	if err := r.db.WithContext(ctx).First(&member, id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepo) GetByIDForUpdate(ctx context.Context, id uint) (*model.Member, error) {
	var member model.Member
	if err := forUpdate(r.db.WithContext(ctx)).First(&member, id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepo) GetByAccountID(ctx context.Context, accountID uint) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepo) EmailExists(ctx context.Context, email string, excludeID uint) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&model.Member{}).
		Where("LOWER(email) = LOWER(?)", email)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

// UpdateContact writes full_name, email and phone only. Other keys are ignored.
func (r *memberRepo) UpdateContact(ctx context.Context, id uint, fields map[string]interface{}) error {
	allowed := make(map[string]interface{}, len(fields))
	for _, k := range []string{"full_name", "email", "phone"} {
		if v, ok := fields[k]; ok {
			allowed[k] = v
		}
	}
	if len(allowed) == 0 {
		return nil
	}
	return r.update(ctx, id, allowed)
}

func (r *memberRepo) UpdateStatus(ctx context.Context, id uint, s MemberStatusFields) error {
	return r.update(ctx, id, map[string]interface{}{
		"active":         s.Active,
		"return_policy":  s.ReturnPolicy,
		"deactivated_at": s.DeactivatedAt,
		"deactivated_by": s.DeactivatedBy,
	})
}

func (r *memberRepo) update(ctx context.Context, id uint, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Member{}).
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

func (r *memberRepo) List(ctx context.Context, filter MemberFilter, offset, limit int) ([]model.Member, int64, error) {
	var members []model.Member
	var total int64

	db := r.filtered(ctx, filter)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := paginate(db, offset, limit).
		Order("full_name ASC").Order("id ASC").
		Find(&members).Error; err != nil {
		return nil, 0, err
	}

	return members, total, nil
}

func (r *memberRepo) ListAll(ctx context.Context, filter MemberFilter) ([]model.Member, error) {
	var members []model.Member
	err := r.filtered(ctx, filter).
		Order("full_name ASC").Order("id ASC").
		Find(&members).Error
	return members, err
}

func (r *memberRepo) filtered(ctx context.Context, f MemberFilter) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.Member{})

	if f.AccountID != nil {
		db = db.Where("account_id = ?", *f.AccountID)
	}
	if f.Name != "" {
		db = db.Where(`LOWER(full_name) LIKE ? ESCAPE '\'`, likePattern(f.Name))
	}
	if f.Email != "" {
		db = db.Where(`LOWER(email) LIKE ? ESCAPE '\'`, likePattern(f.Email))
	}
	if f.Phone != "" {
		db = db.Where(`phone LIKE ? ESCAPE '\'`, likePattern(f.Phone))
	}
	if f.Active != nil {
		db = db.Where("active = ?", *f.Active)
	}
	if f.MayReturn != nil {
		policy := model.ReturnPolicyBlocked
		if *f.MayReturn {
			policy = model.ReturnPolicyMayReturn
		}
		db = db.Where("active = ? AND return_policy = ?", false, policy)
	}
	if f.RegisteredFrom != nil {
		db = db.Where("registered_at >= ?", *f.RegisteredFrom)
	}
	if f.RegisteredTo != nil {
		db = db.Where("registered_at <= ?", *f.RegisteredTo)
	}
	return db
}

func (r *memberRepo) Stats(ctx context.Context) (*MemberStats, error) {
	var stats MemberStats
	err := r.db.WithContext(ctx).Model(&model.Member{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN active THEN 1 ELSE 0 END), 0) AS active,
			COALESCE(SUM(CASE WHEN NOT active AND return_policy = ? THEN 1 ELSE 0 END), 0) AS inactive_returnable,
			COALESCE(SUM(CASE WHEN NOT active AND return_policy = ? THEN 1 ELSE 0 END), 0) AS inactive_blocked`,
			model.ReturnPolicyMayReturn, model.ReturnPolicyBlocked).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
