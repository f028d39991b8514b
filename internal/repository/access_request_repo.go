package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"scholchat/backend/internal/model"
	pkgerrors "scholchat/backend/pkg/errors"
)

// AccessRequestRepository 准入申请数据访问接口
// 申请记录只增不删；状态迁移通过 Transition 的条件更新完成
type AccessRequestRepository interface {
	Create(ctx context.Context, req *model.AccessRequest) error
	GetByID(ctx context.Context, id string) (*model.AccessRequest, error)
	// GetPendingByUserClass 查询 (申请人, 班级) 当前的 pending 申请
	GetPendingByUserClass(ctx context.Context, requesterID, classID string) (*model.AccessRequest, error)
	// GetLatestByUserClass 查询 (申请人, 班级) 最近一次提交的申请
	GetLatestByUserClass(ctx context.Context, requesterID, classID string) (*model.AccessRequest, error)
	ListByClass(ctx context.Context, classID string, status model.RequestStatus) ([]model.AccessRequest, error)
	// Transition 条件状态迁移：仅当记录仍处于 from 状态时生效
	// 未命中任何行（记录不存在或已被并发操作推进）返回 pkg/errors.ErrStateConflict
	Transition(ctx context.Context, requestID string, from, to model.RequestStatus, decidedBy, reason string) error
}

type accessRequestRepo struct {
	db *gorm.DB
}

// NewAccessRequestRepo 创建 AccessRequestRepository 实例
func NewAccessRequestRepo(db *gorm.DB) AccessRequestRepository {
	return &accessRequestRepo{db: db}
}

func (r *accessRequestRepo) Create(ctx context.Context, req *model.AccessRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *accessRequestRepo) GetByID(ctx context.Context, id string) (*model.AccessRequest, error) {
	var req model.AccessRequest
	err := r.db.WithContext(ctx).
		Where("request_id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *accessRequestRepo) GetPendingByUserClass(ctx context.Context, requesterID, classID string) (*model.AccessRequest, error) {
	var req model.AccessRequest
	err := r.db.WithContext(ctx).
		Where("requester_id = ? AND class_id = ? AND statut = ?", requesterID, classID, model.RequestPending).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *accessRequestRepo) GetLatestByUserClass(ctx context.Context, requesterID, classID string) (*model.AccessRequest, error) {
	var req model.AccessRequest
	err := r.db.WithContext(ctx).
		Where("requester_id = ? AND class_id = ?", requesterID, classID).
		Order("submitted_at DESC").
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *accessRequestRepo) ListByClass(ctx context.Context, classID string, status model.RequestStatus) ([]model.AccessRequest, error) {
	var reqs []model.AccessRequest
	db := r.db.WithContext(ctx).
		Preload("Requester").
		Where("class_id = ?", classID)
	if status != "" {
		db = db.Where("statut = ?", status)
	}
	err := db.Order("submitted_at ASC").Find(&reqs).Error
	return reqs, err
}

// Transition 条件状态迁移
// WHERE statut = from 保证并发审批下恰好一个胜出，落败方得到 ErrStateConflict
func (r *accessRequestRepo) Transition(ctx context.Context, requestID string, from, to model.RequestStatus, decidedBy, reason string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"statut":     to,
		"decided_at": now,
		"decided_by": decidedBy,
		"updated_at": now,
	}
	if reason != "" {
		updates["reject_reason"] = reason
	}

	result := r.db.WithContext(ctx).
		Model(&model.AccessRequest{}).
		Where("request_id = ? AND statut = ?", requestID, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStateConflict
	}
	return nil
}
