package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"scholchat/backend/internal/dto"
	"scholchat/backend/internal/model"
	"scholchat/backend/internal/repository"
)

// ── 派生准入状态 ──

// AccessStatus (用户, 班级) 的派生状态，只读查询结果，不落库
type AccessStatus string

const (
	StatusNone     AccessStatus = "none"
	StatusPending  AccessStatus = "pending"
	StatusApproved AccessStatus = "approved"
	StatusRejected AccessStatus = "rejected"
)

// AccessStatusService 准入状态只读查询接口
// 合并申请表与授权表的读侧组件，不做任何写入
type AccessStatusService interface {
	StatusOf(ctx context.Context, userID, classID string) (*dto.AccessStatusResponse, error)
	AccessibleClasses(ctx context.Context, userID string) ([]dto.ClassResponse, error)
	PendingRequests(ctx context.Context, classID, callerID string) ([]dto.AccessRequestResponse, error)
	Members(ctx context.Context, classID, callerID string) ([]dto.MemberResponse, error)
}

type accessStatusService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAccessStatusService 创建 AccessStatusService 实例
func NewAccessStatusService(repo *repository.Repository, logger *zap.Logger) AccessStatusService {
	return &accessStatusService{repo: repo, logger: logger}
}

// ────────────────────── StatusOf ──────────────────────
//
// 判定顺序（顺序即语义）：
//  1. 有效授权 → approved：授权永远压过历史驳回记录
//  2. pending 申请 → pending：驳回后重新提交会覆盖旧的 rejected 读值
//  3. 最近一次申请为 rejected → rejected
//  4. 否则 → none（含授权被撤销后的状态）

func (s *accessStatusService) StatusOf(ctx context.Context, userID, classID string) (*dto.AccessStatusResponse, error) {
	if _, err := s.repo.Class.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.String("class_id", classID), zap.Error(err))
		return nil, err
	}

	status, err := s.resolve(ctx, userID, classID)
	if err != nil {
		return nil, err
	}

	return &dto.AccessStatusResponse{
		ClassID: classID,
		UserID:  userID,
		Status:  string(status),
	}, nil
}

func (s *accessStatusService) resolve(ctx context.Context, userID, classID string) (AccessStatus, error) {
	// 1. 有效授权
	if _, err := s.repo.AccessGrant.GetActiveByUserClass(ctx, userID, classID); err == nil {
		return StatusApproved, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询授权失败", zap.Error(err))
		return "", err
	}

	// 2. pending 申请
	if _, err := s.repo.AccessRequest.GetPendingByUserClass(ctx, userID, classID); err == nil {
		return StatusPending, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询待处理申请失败", zap.Error(err))
		return "", err
	}

	// 3. 最近一次申请
	latest, err := s.repo.AccessRequest.GetLatestByUserClass(ctx, userID, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return StatusNone, nil
		}
		s.logger.Error("查询最近申请失败", zap.Error(err))
		return "", err
	}
	if latest.Status == model.RequestRejected {
		return StatusRejected, nil
	}

	// 最近申请为 approved 但授权已撤销 → none（撤销不回退为 pending）
	return StatusNone, nil
}

// ────────────────────── AccessibleClasses ──────────────────────

func (s *accessStatusService) AccessibleClasses(ctx context.Context, userID string) ([]dto.ClassResponse, error) {
	grants, err := s.repo.AccessGrant.ListActiveByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询用户授权失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	ids := make([]string, 0, len(grants))
	for _, g := range grants {
		ids = append(ids, g.ClassID)
	}

	classes, err := s.repo.Class.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("查询班级失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ClassResponse, 0, len(classes))
	for i := range classes {
		c := &classes[i]
		result = append(result, dto.ClassResponse{
			ID:              c.ClassID,
			Name:            c.Name,
			MajorAccessMode: c.MajorAccessMode,
			ModeratorID:     c.ModeratorID,
			CreatedAt:       c.CreatedAt.Format(time.RFC3339),
		})
	}

	return result, nil
}

// ────────────────────── PendingRequests ──────────────────────

func (s *accessStatusService) PendingRequests(ctx context.Context, classID, callerID string) ([]dto.AccessRequestResponse, error) {
	if err := s.authorizeClassRead(ctx, classID, callerID); err != nil {
		return nil, err
	}

	requests, err := s.repo.AccessRequest.ListByClass(ctx, classID, model.RequestPending)
	if err != nil {
		s.logger.Error("查询待处理申请失败", zap.String("class_id", classID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.AccessRequestResponse, 0, len(requests))
	for i := range requests {
		result = append(result, *toAccessRequestResponse(&requests[i]))
	}

	return result, nil
}

// ────────────────────── Members ──────────────────────

func (s *accessStatusService) Members(ctx context.Context, classID, callerID string) ([]dto.MemberResponse, error) {
	if err := s.authorizeClassRead(ctx, classID, callerID); err != nil {
		return nil, err
	}

	grants, err := s.repo.AccessGrant.ListActiveByClass(ctx, classID)
	if err != nil {
		s.logger.Error("查询班级成员失败", zap.String("class_id", classID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.MemberResponse, 0, len(grants))
	for i := range grants {
		g := &grants[i]
		member := dto.MemberResponse{
			UserID:     g.UserID,
			Dependents: toDependentResponses(g.Dependents),
			GrantedAt:  g.GrantedAt.Format(time.RFC3339),
		}
		if g.User != nil {
			member.FullName = g.User.FullName
		}
		result = append(result, member)
	}

	return result, nil
}

// ── 内部辅助方法 ──

// authorizeClassRead 管理侧列表仅班级管理人或管理员可读
func (s *accessStatusService) authorizeClassRead(ctx context.Context, classID, callerID string) error {
	class, err := s.repo.Class.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.String("class_id", classID), zap.Error(err))
		return err
	}

	caller, err := s.repo.User.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotModerator
		}
		s.logger.Error("查询操作人失败", zap.String("user_id", callerID), zap.Error(err))
		return err
	}

	if caller.Role == model.RoleAdmin || class.ModeratorID == callerID {
		return nil
	}

	return ErrNotModerator
}
