package repository

import (
	"context"

	"gorm.io/gorm"

	"scholchat/backend/internal/model"
)

// StudentRepository 学生（花名册）数据访问接口
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id string) (*model.Student, error)
	ListByClass(ctx context.Context, classID string) ([]model.Student, error)
	// ListByClassAndIDs 返回指定班级花名册中命中给定 ID 的学生，用于 major 模式校验
	ListByClassAndIDs(ctx context.Context, classID string, ids []string) ([]model.Student, error)
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("student_id = ?", id).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) ListByClass(ctx context.Context, classID string) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("full_name ASC").
		Find(&students).Error
	return students, err
}

func (r *studentRepo) ListByClassAndIDs(ctx context.Context, classID string, ids []string) ([]model.Student, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var students []model.Student
	err := r.db.WithContext(ctx).
		Where("class_id = ? AND student_id IN ?", classID, ids).
		Find(&students).Error
	return students, err
}
