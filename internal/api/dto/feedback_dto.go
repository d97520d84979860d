package dto

import "time"

// ==================== 挂件提交 ====================

// FeedbackSubmitReq 挂件提交反馈请求
// param_scores 缺省时，由 service/quality/cleanliness 三个兜底字段拼装
type FeedbackSubmitReq struct {
	Rating      int                    `json:"rating" binding:"required,min=1,max=5"`
	DeviceID    string                 `json:"deviceId" binding:"required,max=100"`
	Comment     string                 `json:"comment" binding:"max=2000"`
	ParamScores map[string]interface{} `json:"param_scores"`

	Service     string `json:"service"`
	Quality     string `json:"quality"`
	Cleanliness string `json:"cleanliness"`
}

// FeedbackSubmitResp 挂件提交反馈响应
// 字段名与挂件前端约定保持 camelCase，只返回展示决策，不含落库记录
type FeedbackSubmitResp struct {
	ShowGoogleReview bool    `json:"showGoogleReview"`
	GoogleReviewURL  *string `json:"googleReviewUrl"`

	ShowCoupon    bool    `json:"showCoupon"`
	CouponCode    *string `json:"couponCode"`
	CouponMessage *string `json:"couponMessage"`
}

// ==================== 挂件配置 ====================

// WidgetConfigResp 挂件渲染配置
// 通过公开令牌获取，不暴露优惠券与配额等内部设置
type WidgetConfigResp struct {
	ShopID     int64    `json:"shopId"`
	ShopName   string   `json:"shopName"`
	Parameters []string `json:"parameters"`
	MaxRating  int      `json:"maxRating"`
}

// ==================== 反馈列表 ====================

// FeedbackItem 反馈记录
type FeedbackItem struct {
	ID          int64                  `json:"id"`
	Rating      int                    `json:"rating"`
	ParamScores map[string]interface{} `json:"param_scores"`
	Comment     string                 `json:"comment"`
	DeviceID    string                 `json:"device_id"`
	CreatedAt   time.Time              `json:"created_at"`
}
