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

// ClassService 班级业务接口
type ClassService interface {
	Create(ctx context.Context, req *dto.CreateClassRequest, creatorID string) (*dto.ClassResponse, error)
	GetByID(ctx context.Context, id, callerID string) (*dto.ClassResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateClassRequest, callerID string) (*dto.ClassResponse, error)
	// RotateCode 轮换激活码，旧码立即失效
	RotateCode(ctx context.Context, id, callerID string) (*dto.RotateCodeResponse, error)
	ListMine(ctx context.Context, moderatorID string) ([]dto.ClassResponse, error)
	Roster(ctx context.Context, classID, callerID string) ([]dto.StudentResponse, error)
}

type classService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewClassService 创建 ClassService 实例
func NewClassService(repo *repository.Repository, logger *zap.Logger) ClassService {
	return &classService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *classService) Create(ctx context.Context, req *dto.CreateClassRequest, creatorID string) (*dto.ClassResponse, error) {
	code, err := GenerateActivationCode()
	if err != nil {
		s.logger.Error("生成激活码失败", zap.Error(err))
		return nil, err
	}

	class := &model.SchoolClass{
		Name:            req.Name,
		ActivationCode:  code,
		MajorAccessMode: req.MajorAccessMode,
		ModeratorID:     creatorID,
	}

	if err := s.repo.Class.Create(ctx, class); err != nil {
		s.logger.Error("创建班级失败", zap.Error(err))
		return nil, err
	}

	return s.toClassResponse(class, true), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *classService) GetByID(ctx context.Context, id, callerID string) (*dto.ClassResponse, error) {
	class, err := s.repo.Class.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.String("class_id", id), zap.Error(err))
		return nil, err
	}

	return s.toClassResponse(class, s.canSeeCode(ctx, class, callerID)), nil
}

// ────────────────────── Update ──────────────────────

func (s *classService) Update(ctx context.Context, id string, req *dto.UpdateClassRequest, callerID string) (*dto.ClassResponse, error) {
	class, err := s.repo.Class.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.String("class_id", id), zap.Error(err))
		return nil, err
	}

	if err := s.authorizeModerator(ctx, class, callerID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		class.Name = *req.Name
	}
	if req.MajorAccessMode != nil {
		class.MajorAccessMode = *req.MajorAccessMode
	}

	if err := s.repo.Class.Update(ctx, class); err != nil {
		s.logger.Error("更新班级失败", zap.String("class_id", id), zap.Error(err))
		return nil, err
	}

	return s.toClassResponse(class, true), nil
}

// ────────────────────── RotateCode ──────────────────────

func (s *classService) RotateCode(ctx context.Context, id, callerID string) (*dto.RotateCodeResponse, error) {
	class, err := s.repo.Class.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.String("class_id", id), zap.Error(err))
		return nil, err
	}

	if err := s.authorizeModerator(ctx, class, callerID); err != nil {
		return nil, err
	}

	code, err := GenerateActivationCode()
	if err != nil {
		s.logger.Error("生成激活码失败", zap.Error(err))
		return nil, err
	}

	if err := s.repo.Class.UpdateActivationCode(ctx, id, code); err != nil {
		s.logger.Error("轮换激活码失败", zap.String("class_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("激活码已轮换", zap.String("class_id", id), zap.String("caller_id", callerID))

	return &dto.RotateCodeResponse{ClassID: id, ActivationCode: code}, nil
}

// ────────────────────── ListMine ──────────────────────

func (s *classService) ListMine(ctx context.Context, moderatorID string) ([]dto.ClassResponse, error) {
	classes, err := s.repo.Class.ListByModerator(ctx, moderatorID)
	if err != nil {
		s.logger.Error("查询管理班级失败", zap.String("moderator_id", moderatorID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ClassResponse, 0, len(classes))
	for i := range classes {
		result = append(result, *s.toClassResponse(&classes[i], true))
	}

	return result, nil
}

// ────────────────────── Roster ──────────────────────

func (s *classService) Roster(ctx context.Context, classID, callerID string) ([]dto.StudentResponse, error) {
	class, err := s.repo.Class.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.String("class_id", classID), zap.Error(err))
		return nil, err
	}

	if err := s.authorizeModerator(ctx, class, callerID); err != nil {
		return nil, err
	}

	students, err := s.repo.Student.ListByClass(ctx, classID)
	if err != nil {
		s.logger.Error("查询花名册失败", zap.String("class_id", classID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		st := &students[i]
		result = append(result, dto.StudentResponse{
			ID:            st.StudentID,
			FullName:      st.FullName,
			IsPlaceholder: st.IsPlaceholder,
		})
	}

	return result, nil
}

// ── 内部辅助方法 ──

func (s *classService) authorizeModerator(ctx context.Context, class *model.SchoolClass, callerID string) error {
	if class.ModeratorID == callerID {
		return nil
	}

	caller, err := s.repo.User.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotModerator
		}
		s.logger.Error("查询操作人失败", zap.String("user_id", callerID), zap.Error(err))
		return err
	}
	if caller.Role == model.RoleAdmin {
		return nil
	}

	return ErrNotModerator
}

func (s *classService) canSeeCode(ctx context.Context, class *model.SchoolClass, callerID string) bool {
	return s.authorizeModerator(ctx, class, callerID) == nil
}

func (s *classService) toClassResponse(class *model.SchoolClass, withCode bool) *dto.ClassResponse {
	resp := &dto.ClassResponse{
		ID:              class.ClassID,
		Name:            class.Name,
		MajorAccessMode: class.MajorAccessMode,
		ModeratorID:     class.ModeratorID,
		CreatedAt:       class.CreatedAt.Format(time.RFC3339),
	}
	if withCode {
		resp.ActivationCode = class.ActivationCode
	}
	return resp
}
