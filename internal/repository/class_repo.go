package repository

import (
	"context"

	"gorm.io/gorm"

	"scholchat/backend/internal/model"
)

// ClassRepository 班级数据访问接口
type ClassRepository interface {
	Create(ctx context.Context, class *model.SchoolClass) error
	GetByID(ctx context.Context, id string) (*model.SchoolClass, error)
	GetByIDs(ctx context.Context, ids []string) ([]model.SchoolClass, error)
	ListByModerator(ctx context.Context, moderatorID string) ([]model.SchoolClass, error)
	Update(ctx context.Context, class *model.SchoolClass) error
	UpdateActivationCode(ctx context.Context, classID, code string) error
}

type classRepo struct {
	db *gorm.DB
}

// NewClassRepo 创建 ClassRepository 实例
func NewClassRepo(db *gorm.DB) ClassRepository {
	return &classRepo{db: db}
}

func (r *classRepo) Create(ctx context.Context, class *model.SchoolClass) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepo) GetByID(ctx context.Context, id string) (*model.SchoolClass, error) {
	var class model.SchoolClass
	err := r.db.WithContext(ctx).
		Where("class_id = ?", id).
		First(&class).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *classRepo) GetByIDs(ctx context.Context, ids []string) ([]model.SchoolClass, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var classes []model.SchoolClass
	err := r.db.WithContext(ctx).
		Where("class_id IN ?", ids).
		Find(&classes).Error
	return classes, err
}

func (r *classRepo) ListByModerator(ctx context.Context, moderatorID string) ([]model.SchoolClass, error) {
	var classes []model.SchoolClass
	err := r.db.WithContext(ctx).
		Where("moderator_id = ?", moderatorID).
		Order("created_at DESC").
		Find(&classes).Error
	return classes, err
}

func (r *classRepo) Update(ctx context.Context, class *model.SchoolClass) error {
	return r.db.WithContext(ctx).Save(class).Error
}

// UpdateActivationCode 轮换激活码
func (r *classRepo) UpdateActivationCode(ctx context.Context, classID, code string) error {
	return r.db.WithContext(ctx).
		Model(&model.SchoolClass{}).
		Where("class_id = ?", classID).
		Update("activation_code", code).Error
}
