package service

import (
	"feedback_dev_v1_202608/internal/model"
)

// ==================== 展示资格判定 ====================

// 评分达到该值才展示评价跳转与优惠券
const HighRatingThreshold = 4

// DefaultCouponMessage 店铺未配置优惠券文案时的默认值
const DefaultCouponMessage = "Use this coupon on your next purchase"

// 防刷阈值：设备历史提交数（含本次）超过该值后不再发券
const couponLifetimeLimit = 1

// Eligibility 提交后的展示决策
type Eligibility struct {
	ShowReview bool
	ReviewURL  string // 可为空，店铺未配置时挂件直接省略跳转入口

	ShowCoupon    bool
	CouponCode    string
	CouponMessage string
}

// EvaluateEligibility 判定是否展示评价跳转与优惠券
// lifetimeCount 为该设备在该店铺的历史提交总数，含刚落库的这一条；
// 超过 1 即视为已领过券，不再发放（防同一设备反复刷券）
// 纯函数，不做任何 I/O
func EvaluateEligibility(shop *model.Shop, rating int, lifetimeCount int64) Eligibility {
	var result Eligibility

	if rating >= HighRatingThreshold {
		result.ShowReview = true
		result.ReviewURL = shop.GoogleReviewURL
	}

	alreadyClaimed := lifetimeCount > couponLifetimeLimit

	if rating >= HighRatingThreshold && shop.CouponEnabled && shop.CouponCode != "" && !alreadyClaimed {
		result.ShowCoupon = true
		result.CouponCode = shop.CouponCode
		result.CouponMessage = shop.CouponMessage
		if result.CouponMessage == "" {
			result.CouponMessage = DefaultCouponMessage
		}
	}

	return result
}
