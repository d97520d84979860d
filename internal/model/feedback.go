package model

import (
	"gorm.io/datatypes"
)

// 评分取值范围
const (
	RatingMin = 1
	RatingMax = 5
)

// Feedback 顾客反馈记录
// 只新增，不更新；仅随店铺删除级联清理
type Feedback struct {
	BaseModel
	ShopID int64 `gorm:"index;not null"`
	// 客户端自报的设备标识，仅在店铺范围内有意义，不是全局唯一身份
	DeviceID string `gorm:"size:100;index;not null"`

	Rating  int    `gorm:"not null;comment:评分 1-5"`
	Comment string `gorm:"type:text"`

	// 各评价维度得分，键为店铺配置的维度名
	ParamScores datatypes.JSONMap `gorm:"type:jsonb"`
}

func (Feedback) TableName() string {
	return "feedback"
}

// AnalyticsSnapshot 全局统计快照，由定时任务每日落库
type AnalyticsSnapshot struct {
	BaseModel
	Day           string            `gorm:"size:10;uniqueIndex;comment:UTC日期 YYYY-MM-DD"`
	TotalFeedback int64             `gorm:"default:0"`
	AvgRating     float64           `gorm:"type:decimal(3,2);default:0"`
	Distribution  datatypes.JSONMap `gorm:"type:jsonb"`
}

func (AnalyticsSnapshot) TableName() string {
	return "analytics_snapshots"
}
