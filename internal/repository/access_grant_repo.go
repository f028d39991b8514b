package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"scholchat/backend/internal/model"
	pkgerrors "scholchat/backend/pkg/errors"
)

// AccessGrantRepository 准入授权数据访问接口
// 授权记录只增不删；撤销通过 Revoke 的条件软删除完成
type AccessGrantRepository interface {
	Create(ctx context.Context, grant *model.AccessGrant) error
	GetByID(ctx context.Context, id string) (*model.AccessGrant, error)
	// GetActiveByUserClass 查询 (用户, 班级) 当前有效（未撤销）授权
	GetActiveByUserClass(ctx context.Context, userID, classID string) (*model.AccessGrant, error)
	ListActiveByUser(ctx context.Context, userID string) ([]model.AccessGrant, error)
	ListActiveByClass(ctx context.Context, classID string) ([]model.AccessGrant, error)
	// Revoke 条件撤销：仅当存在未撤销授权时生效
	// 未命中任何行（授权不存在或已被撤销）返回 pkg/errors.ErrStateConflict
	Revoke(ctx context.Context, userID, classID, revokedBy string) error
}

type accessGrantRepo struct {
	db *gorm.DB
}

// NewAccessGrantRepo 创建 AccessGrantRepository 实例
func NewAccessGrantRepo(db *gorm.DB) AccessGrantRepository {
	return &accessGrantRepo{db: db}
}

func (r *accessGrantRepo) Create(ctx context.Context, grant *model.AccessGrant) error {
	return r.db.WithContext(ctx).Create(grant).Error
}

func (r *accessGrantRepo) GetByID(ctx context.Context, id string) (*model.AccessGrant, error) {
	var grant model.AccessGrant
	err := r.db.WithContext(ctx).
		Where("grant_id = ?", id).
		First(&grant).Error
	if err != nil {
		return nil, err
	}
	return &grant, nil
}

func (r *accessGrantRepo) GetActiveByUserClass(ctx context.Context, userID, classID string) (*model.AccessGrant, error) {
	var grant model.AccessGrant
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND class_id = ? AND revoked_at IS NULL", userID, classID).
		First(&grant).Error
	if err != nil {
		return nil, err
	}
	return &grant, nil
}

func (r *accessGrantRepo) ListActiveByUser(ctx context.Context, userID string) ([]model.AccessGrant, error) {
	var grants []model.AccessGrant
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Order("granted_at DESC").
		Find(&grants).Error
	return grants, err
}

func (r *accessGrantRepo) ListActiveByClass(ctx context.Context, classID string) ([]model.AccessGrant, error) {
	var grants []model.AccessGrant
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("class_id = ? AND revoked_at IS NULL", classID).
		Order("granted_at ASC").
		Find(&grants).Error
	return grants, err
}

// Revoke 条件撤销
// WHERE revoked_at IS NULL 保证重复撤销或并发撤销只有一次生效
func (r *accessGrantRepo) Revoke(ctx context.Context, userID, classID, revokedBy string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.AccessGrant{}).
		Where("user_id = ? AND class_id = ? AND revoked_at IS NULL", userID, classID).
		Updates(map[string]interface{}{
			"revoked_at": now,
			"revoked_by": revokedBy,
			"updated_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStateConflict
	}
	return nil
}
