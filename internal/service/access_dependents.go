package service

import (
	"context"
	"errors"
	"strings"

	"scholchat/backend/internal/dto"
	"scholchat/backend/internal/model"
	"scholchat/backend/internal/repository"
)

// ── 随行学生解析错误 ──

var (
	ErrEmptyDependents  = errors.New("必须至少提供一名随行学生")
	ErrDependentInvalid = errors.New("随行学生与班级准入模式不符")
)

// DependentResolver 随行学生解析器
// major 模式：每个条目必须引用班级花名册中已有学生
// minor 模式：每个条目必须携带自由姓名，解析时创建占位学生记录
// 混合条目（部分带 ID、部分带姓名）一律拒绝，模式不允许折中
//
// 提交流程在事务内调用本解析器，传入绑定事务的 StudentRepository，
// 保证占位学生与申请记录同生共死
type DependentResolver struct {
	students repository.StudentRepository
}

// NewDependentResolver 创建 DependentResolver
func NewDependentResolver(students repository.StudentRepository) *DependentResolver {
	return &DependentResolver{students: students}
}

// Resolve 解析调用方提交的随行学生列表
func (r *DependentResolver) Resolve(ctx context.Context, class *model.SchoolClass, requesterID string, raw []dto.RawDependent) (model.DependentList, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyDependents
	}

	if class.MajorAccessMode {
		return r.resolveMajor(ctx, class.ClassID, raw)
	}
	return r.resolveMinor(ctx, class.ClassID, requesterID, raw)
}

// resolveMajor 校验所有条目引用的学生均在班级花名册中
func (r *DependentResolver) resolveMajor(ctx context.Context, classID string, raw []dto.RawDependent) (model.DependentList, error) {
	ids := make([]string, 0, len(raw))
	for _, d := range raw {
		if d.StudentID == "" || strings.TrimSpace(d.Name) != "" {
			return nil, ErrDependentInvalid
		}
		ids = append(ids, d.StudentID)
	}

	students, err := r.students.ListByClassAndIDs(ctx, classID, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*model.Student, len(students))
	for i := range students {
		byID[students[i].StudentID] = &students[i]
	}

	resolved := make(model.DependentList, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		student, ok := byID[id]
		if !ok {
			return nil, ErrDependentInvalid
		}
		if seen[id] {
			continue // 重复引用同一学生只保留一条
		}
		seen[id] = true
		resolved = append(resolved, model.Dependent{
			StudentID: student.StudentID,
			Name:      student.FullName,
		})
	}

	return resolved, nil
}

// resolveMinor 为每个自由姓名创建占位学生并返回新记录的引用
func (r *DependentResolver) resolveMinor(ctx context.Context, classID, requesterID string, raw []dto.RawDependent) (model.DependentList, error) {
	resolved := make(model.DependentList, 0, len(raw))
	for _, d := range raw {
		if d.StudentID != "" {
			return nil, ErrDependentInvalid
		}
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return nil, ErrDependentInvalid
		}

		student := &model.Student{
			ClassID:       classID,
			FullName:      name,
			IsPlaceholder: true,
			GuardianID:    &requesterID,
		}
		if err := r.students.Create(ctx, student); err != nil {
			return nil, err
		}

		resolved = append(resolved, model.Dependent{
			StudentID: student.StudentID,
			Name:      name,
		})
	}

	return resolved, nil
}
