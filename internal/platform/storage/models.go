package storage

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User 账户；Role 决定管理端访问权限
type User struct {
	ID          uint      `gorm:"primaryKey"                             json:"id"`
	Email       string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name        string    `gorm:"type:varchar(255)"                      json:"name"`
	Password    string    `                                              json:"-"`    // 密码不下发
	Role        string    `gorm:"default:'user'"                         json:"role"` // 可选值：admin/support/user
	Plan        string    `gorm:"default:'free'"                         json:"plan"` // 可选值：free/pro/business
	Status      uint      `gorm:"default:1"                              json:"status"` // 1=正常，0=禁用
	CreatedAt   time.Time `                                              json:"createdAt"`
	UpdatedAt   time.Time `                                              json:"updatedAt"`
	LastLoginAt time.Time `                                              json:"lastLoginAt"`
}

// Project 项目：属于某个用户，聚合其上传的图片
type Project struct {
	ID           uint           `gorm:"primaryKey"        json:"id"`
	UserID       uint           `gorm:"index;not null"    json:"userId"`
	Name         string         `gorm:"not null"          json:"name"`
	ImageCount   int            `gorm:"default:0"         json:"imageCount"`
	StorageBytes int64          `gorm:"default:0"         json:"storageBytes"`
	CreatedAt    time.Time      `                         json:"createdAt"`
	UpdatedAt    time.Time      `                         json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index"             json:"-"`
}

// ImageJob 一次图片处理任务
type ImageJob struct {
	ID          uint       `gorm:"primaryKey"     json:"id"`
	UserID      uint       `gorm:"index;not null" json:"userId"`
	ProjectID   uint       `gorm:"index"          json:"projectId"`
	Kind        string     `gorm:"not null"       json:"kind"`   // 可选值：upscale/bg_removal/enhance/compress
	Status      string     `gorm:"not null"       json:"status"` // 可选值：queued/processing/done/failed
	DurationMs  int64      `gorm:"default:0"      json:"durationMs"`
	InputBytes  int64      `gorm:"default:0"      json:"inputBytes"`
	OutputBytes int64      `gorm:"default:0"      json:"outputBytes"`
	CreatedAt   time.Time  `gorm:"index"          json:"createdAt"`
	CompletedAt *time.Time `                      json:"completedAt"`
}

// AuditLog 管理端操作审计记录，只追加，不更新不删除
type AuditLog struct {
	ID           uint           `gorm:"primaryKey"        json:"id"`
	ActorID      uint           `gorm:"index;not null"    json:"actorId"`
	Action       string         `gorm:"index;not null"    json:"action"`
	ResourceType string         `gorm:"not null"          json:"resourceType"`
	ResourceID   string         `                         json:"resourceId"`
	Description  string         `gorm:"type:text"         json:"description"`
	Metadata     datatypes.JSON `                         json:"metadata,omitempty"`
	RequestID    string         `gorm:"type:varchar(64)"  json:"requestId"`
	IP           string         `gorm:"type:varchar(64)"  json:"ip,omitempty"`
	UserAgent    string         `gorm:"type:varchar(255)" json:"userAgent,omitempty"`
	CreatedAt    time.Time      `gorm:"index"             json:"createdAt"`
}
