package dto

// ── 班级模块 DTO ──

// CreateClassRequest 创建班级请求
type CreateClassRequest struct {
	Name            string `json:"name" binding:"required,min=1,max=100"`
	MajorAccessMode bool   `json:"major_access_mode"`
}

// UpdateClassRequest 更新班级请求
type UpdateClassRequest struct {
	Name            *string `json:"name" binding:"omitempty,min=1,max=100"`
	MajorAccessMode *bool   `json:"major_access_mode"`
}

// ClassResponse 班级响应
// ActivationCode 仅在请求方为该班管理人或管理员时填充
type ClassResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	MajorAccessMode bool   `json:"major_access_mode"`
	ModeratorID     string `json:"moderator_id"`
	ActivationCode  string `json:"activation_code,omitempty"`
	CreatedAt       string `json:"created_at"`
}

// RotateCodeResponse 激活码轮换响应
type RotateCodeResponse struct {
	ClassID        string `json:"class_id"`
	ActivationCode string `json:"activation_code"`
}

// StudentResponse 花名册学生响应
type StudentResponse struct {
	ID            string `json:"id"`
	FullName      string `json:"full_name"`
	IsPlaceholder bool   `json:"is_placeholder"`
}
