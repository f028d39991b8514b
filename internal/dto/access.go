package dto

// ── 班级准入模块 DTO ──

// RawDependent 调用方提交的随行学生
// major 模式下填 StudentID，minor 模式下填 Name，二者互斥
type RawDependent struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
}

// SubmitAccessRequest 提交准入申请请求
type SubmitAccessRequest struct {
	ClassID        string         `json:"class_id"        binding:"required,uuid"`
	ActivationCode string         `json:"activation_code" binding:"required"`
	Dependents     []RawDependent `json:"dependents"      binding:"required"`
}

// RejectAccessRequest 驳回申请请求
type RejectAccessRequest struct {
	Reason string `json:"reason"`
}

// DependentResponse 随行学生响应
type DependentResponse struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name,omitempty"`
}

// AccessRequestResponse 准入申请响应
type AccessRequestResponse struct {
	ID            string              `json:"id"`
	RequesterID   string              `json:"requester_id"`
	RequesterName string              `json:"requester_name,omitempty"`
	ClassID       string              `json:"class_id"`
	Status        string              `json:"statut"`
	Dependents    []DependentResponse `json:"dependents"`
	SubmittedAt   string              `json:"submitted_at"`
	DecidedAt     string              `json:"decided_at,omitempty"`
	RejectReason  string              `json:"reject_reason,omitempty"`
}

// AccessGrantResponse 准入授权响应
type AccessGrantResponse struct {
	ID         string              `json:"id"`
	RequestID  string              `json:"request_id"`
	UserID     string              `json:"user_id"`
	ClassID    string              `json:"class_id"`
	Dependents []DependentResponse `json:"dependents"`
	GrantedAt  string              `json:"granted_at"`
	RevokedAt  string              `json:"revoked_at,omitempty"`
}

// AccessStatusResponse (用户, 班级) 的派生准入状态
type AccessStatusResponse struct {
	ClassID string `json:"class_id"`
	UserID  string `json:"user_id"`
	Status  string `json:"statut"` // none | pending | approved | rejected
}

// MemberResponse 班级成员（持有有效授权的用户）响应
type MemberResponse struct {
	UserID     string              `json:"user_id"`
	FullName   string              `json:"full_name,omitempty"`
	Dependents []DependentResponse `json:"dependents"`
	GrantedAt  string              `json:"granted_at"`
}
