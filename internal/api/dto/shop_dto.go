package dto

import "time"

// ==================== 创建店铺 ====================

// ShopCreateReq 创建店铺请求
// parameters 为评价维度名列表，最多保留前 3 个
type ShopCreateReq struct {
	Name                       string   `json:"name" binding:"required,max=100"`
	Parameters                 []string `json:"parameters"`
	GoogleReviewLink           string   `json:"google_review_link" binding:"omitempty,url"`
	MaxFeedbackPerDevicePerDay int      `json:"max_feedback_per_device_per_day" binding:"omitempty,min=1"`
	CouponEnabled              bool     `json:"coupon_enabled"`
	CouponCode                 string   `json:"coupon_code" binding:"max=50"`
	CouponMessage              string   `json:"coupon_message" binding:"max=255"`
	WidgetOrigins              []string `json:"widget_origins"`
}

// ==================== 更新设置 ====================

// ShopSettingsUpdateReq 更新店铺设置请求
// 指针字段缺省表示不修改
type ShopSettingsUpdateReq struct {
	MaxFeedbackPerDevicePerDay *int      `json:"max_feedback_per_device_per_day" binding:"omitempty,min=1"`
	CouponEnabled              *bool     `json:"coupon_enabled"`
	CouponCode                 string    `json:"coupon_code" binding:"max=50"`
	CouponMessage              string    `json:"coupon_message" binding:"max=255"`
	GoogleReviewURL            *string   `json:"google_review_url"`
	WidgetOrigins              *[]string `json:"widget_origins"`
}

// AddParameterReq 新增评价维度请求
type AddParameterReq struct {
	Label string `json:"label" binding:"required,max=50"`
}

// ==================== 店铺信息 ====================

// ShopInfo 店铺信息
type ShopInfo struct {
	ID                         int64     `json:"id"`
	ShopName                   string    `json:"shop_name"`
	WidgetToken                string    `json:"widget_token"`
	GoogleReviewURL            string    `json:"google_review_url"`
	ReviewLinkStatus           string    `json:"review_link_status"`
	MaxFeedbackPerDevicePerDay int       `json:"max_feedback_per_device_per_day"`
	CouponEnabled              bool      `json:"coupon_enabled"`
	CouponCode                 string    `json:"coupon_code,omitempty"`
	CouponMessage              string    `json:"coupon_message,omitempty"`
	WidgetOrigins              []string  `json:"widget_origins,omitempty"`
	Parameters                 []string  `json:"parameters"`
	CreatedAt                  time.Time `json:"created_at"`
}
