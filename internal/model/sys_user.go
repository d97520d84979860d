package model

import "time"

// 用户状态常量
const (
	UserStatusDisabled = 0 // 已禁用
	UserStatusActive   = 1 // 正常
)

// 系统级角色: admin (店主/管理员), viewer (只读)
const (
	UserRoleAdmin  = "admin"
	UserRoleViewer = "viewer"
)

// SysUser 店主账号
type SysUser struct {
	BaseModel
	// 基础信息
	Username string `gorm:"size:100;uniqueIndex;not null"`
	Password string `gorm:"size:255;not null"` // 哈希密码
	Email    string `gorm:"size:100"`

	Role   string `gorm:"size:20;default:'admin'"`
	Status int    `gorm:"default:1;comment:状态 0-禁用 1-正常"`

	LastLoginAt *time.Time

	// 关联关系
	// 一个店主拥有多个店铺
	Shops []Shop `gorm:"foreignKey:AdminID"`
}

func (SysUser) TableName() string {
	return "sys_users"
}
