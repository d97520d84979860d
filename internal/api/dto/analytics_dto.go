package dto

// ==================== 统计分析 ====================

// TrendPoint 单日评分趋势点
// AvgRating 为保留两位小数的十进制字符串
type TrendPoint struct {
	Date      string `json:"date"`
	AvgRating string `json:"avgRating"`
}

// ShopAnalyticsResp 店铺维度统计（含优惠券指标）
type ShopAnalyticsResp struct {
	TotalFeedback      int64         `json:"totalFeedback"`
	HighRatingCount    int64         `json:"highRatingCount"`
	CouponShownCount   int64         `json:"couponShownCount"`
	ConversionRate     string        `json:"conversionRate"`
	RatingDistribution map[int]int64 `json:"ratingDistribution"`
	RatingTrend        []TrendPoint  `json:"ratingTrend"`
}

// GlobalAnalyticsResp 全局统计（不含优惠券指标）
type GlobalAnalyticsResp struct {
	TotalFeedback      int64         `json:"totalFeedback"`
	RatingDistribution map[int]int64 `json:"ratingDistribution"`
	RatingTrend        []TrendPoint  `json:"ratingTrend"`
}

// ==================== 看板 ====================

// ShopStatsResp 单店看板统计
type ShopStatsResp struct {
	TotalFeedback int64  `json:"totalFeedback"`
	AvgRating     string `json:"avgRating"`
}

// BatchStatsReq 批量看板统计请求
type BatchStatsReq struct {
	ShopIDs []int64 `json:"shop_ids" binding:"required"`
}
