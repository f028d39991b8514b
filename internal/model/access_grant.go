package model

import "time"

// AccessGrant 班级准入授权表 — 对应 access_grants
// 每次审批通过恰好产生一条；撤销仅写 RevokedAt（软删除），历史永久保留
type AccessGrant struct {
	GrantID    string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"grant_id"`
	RequestID  string        `gorm:"type:uuid;not null"                             json:"request_id"`
	UserID     string        `gorm:"type:uuid;not null"                             json:"user_id"`
	ClassID    string        `gorm:"type:uuid;not null"                             json:"class_id"`
	Dependents DependentList `gorm:"type:jsonb;not null;default:'[]'"               json:"dependents"`
	GrantedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"granted_at"`
	RevokedAt  *time.Time    `json:"revoked_at,omitempty"`
	RevokedBy  *string       `gorm:"type:uuid" json:"revoked_by,omitempty"`
	BaseModel

	// 关联
	User  *User        `gorm:"foreignKey:UserID;references:UserID"   json:"user,omitempty"`
	Class *SchoolClass `gorm:"foreignKey:ClassID;references:ClassID" json:"class,omitempty"`
}

// TableName 指定表名
func (AccessGrant) TableName() string { return "access_grants" }

// IsActive 授权是否仍然有效（未撤销）
func (g *AccessGrant) IsActive() bool { return g.RevokedAt == nil }

// [自证通过] internal/model/access_grant.go
