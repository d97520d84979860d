package model

import (
	"time"

	"github.com/lib/pq"
)

// 评价链接检测状态常量
const (
	ReviewLinkUnchecked   = "unchecked"   // 未检测
	ReviewLinkReachable   = "reachable"   // 可访问
	ReviewLinkUnreachable = "unreachable" // 不可访问
)

// MaxParametersPerShop 每个店铺最多可配置的评价维度数
const MaxParametersPerShop = 3

// DefaultMaxFeedbackPerDay 默认每台设备每天的提交上限
const DefaultMaxFeedbackPerDay = 1

type Shop struct {
	BaseModel
	// 1. 核心身份
	AdminID  int64  `gorm:"index;not null;comment:店主用户ID"`
	ShopName string `gorm:"size:100;not null"`
	// 挂件公开令牌，前端嵌入代码使用，避免暴露数据库主键
	WidgetToken string `gorm:"size:36;uniqueIndex"`

	// 2. 评价跳转设置
	GoogleReviewURL string `gorm:"size:255"`
	// 周期检测评价链接是否可达
	ReviewLinkStatus    string     `gorm:"size:20;default:'unchecked'"`
	ReviewLinkCheckedAt *time.Time `gorm:"comment:最后检测时间"`

	// 3. 提交配额
	MaxFeedbackPerDevicePerDay int `gorm:"default:1;comment:每台设备每天最多提交次数"`

	// 4. 优惠券设置
	CouponEnabled bool   `gorm:"default:false"`
	CouponCode    string `gorm:"size:50"`
	CouponMessage string `gorm:"size:255"`

	// 5. 挂件安全设置
	// 允许嵌入挂件的站点 Origin 列表，为空表示不限制
	WidgetOrigins pq.StringArray `gorm:"type:text[]"`

	// 6. 关联关系
	Admin      *SysUser            `gorm:"foreignKey:AdminID"`
	Parameters []FeedbackParameter `gorm:"foreignKey:ShopID"`
}

// FeedbackParameter 店铺自定义评价维度 (如 Service / Quality / Cleanliness)
// 每个店铺最多 3 个，创建时由 service 层校验
type FeedbackParameter struct {
	BaseModel
	ShopID int64  `gorm:"index;not null"`
	Label  string `gorm:"size:50;not null"`
}

// EffectiveMaxPerDay 返回生效的每日配额，兜底为默认值
func (s *Shop) EffectiveMaxPerDay() int {
	if s.MaxFeedbackPerDevicePerDay <= 0 {
		return DefaultMaxFeedbackPerDay
	}
	return s.MaxFeedbackPerDevicePerDay
}

func (Shop) TableName() string {
	return "shops"
}

func (FeedbackParameter) TableName() string {
	return "feedback_parameters"
}
