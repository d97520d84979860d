package service

import (
	"context"
	"fmt"
	"sort"

	"feedback_dev_v1_202608/internal/api/dto"
	"feedback_dev_v1_202608/internal/model"
	"feedback_dev_v1_202608/internal/repository"
)

// ==================== AnalyticsService 统计服务 ====================

// AnalyticsService 统计服务
// 聚合本身是对记录序列的纯折叠，repo 只负责取数；
// 每次请求全量重算，O(记录数)，不做缓存
type AnalyticsService struct {
	feedbackRepo repository.FeedbackRepository
	shopRepo     repository.ShopRepository
}

// NewAnalyticsService 创建统计服务
func NewAnalyticsService(feedbackRepo repository.FeedbackRepository, shopRepo repository.ShopRepository) *AnalyticsService {
	return &AnalyticsService{
		feedbackRepo: feedbackRepo,
		shopRepo:     shopRepo,
	}
}

// ==================== 纯聚合函数 ====================

// dayBucket 单日累计
type dayBucket struct {
	sum   int64
	count int64
}

// AggregateDistribution 按评分 1-5 统计分布
// 五个键始终存在（零填充），非法评分不计入
func AggregateDistribution(records []model.Feedback) map[int]int64 {
	dist := make(map[int]int64, model.RatingMax)
	for r := model.RatingMin; r <= model.RatingMax; r++ {
		dist[r] = 0
	}
	for _, f := range records {
		if f.Rating >= model.RatingMin && f.Rating <= model.RatingMax {
			dist[f.Rating]++
		}
	}
	return dist
}

// AggregateTrend 按 UTC 日期统计日均评分
// 趋势是稀疏的：没有记录的日期不产生条目；结果按日期升序，
// 与输入顺序无关
func AggregateTrend(records []model.Feedback) []dto.TrendPoint {
	daily := make(map[string]*dayBucket)
	for _, f := range records {
		day := f.CreatedAt.UTC().Format("2006-01-02")
		b, ok := daily[day]
		if !ok {
			b = &dayBucket{}
			daily[day] = b
		}
		b.sum += int64(f.Rating)
		b.count++
	}

	days := make([]string, 0, len(daily))
	for day := range daily {
		days = append(days, day)
	}
	sort.Strings(days)

	trend := make([]dto.TrendPoint, 0, len(days))
	for _, day := range days {
		b := daily[day]
		avg := float64(b.sum) / float64(b.count)
		trend = append(trend, dto.TrendPoint{
			Date:      day,
			AvgRating: fmt.Sprintf("%.2f", avg),
		})
	}
	return trend
}

// AggregateShop 店铺维度聚合，附加优惠券指标
// couponShownCount 统计高分记录里的去重设备数，是"领过券的设备"的上界近似，
// 不代表真实核销；conversionRate 为 couponShown/total*100，总数为 0 时定义为 "0.0"
func AggregateShop(records []model.Feedback) *dto.ShopAnalyticsResp {
	var highRatingCount int64
	highRatingDevices := make(map[string]struct{})

	for _, f := range records {
		if f.Rating >= HighRatingThreshold {
			highRatingCount++
			highRatingDevices[f.DeviceID] = struct{}{}
		}
	}

	total := int64(len(records))
	couponShown := int64(len(highRatingDevices))

	conversionRate := "0.0"
	if total > 0 {
		conversionRate = fmt.Sprintf("%.1f", float64(couponShown)/float64(total)*100)
	}

	return &dto.ShopAnalyticsResp{
		TotalFeedback:      total,
		HighRatingCount:    highRatingCount,
		CouponShownCount:   couponShown,
		ConversionRate:     conversionRate,
		RatingDistribution: AggregateDistribution(records),
		RatingTrend:        AggregateTrend(records),
	}
}

// AggregateGlobal 全局聚合，不含优惠券指标
func AggregateGlobal(records []model.Feedback) *dto.GlobalAnalyticsResp {
	return &dto.GlobalAnalyticsResp{
		TotalFeedback:      int64(len(records)),
		RatingDistribution: AggregateDistribution(records),
		RatingTrend:        AggregateTrend(records),
	}
}

// AverageRating 平均分，保留一位小数，空集合为 "0.0"
func AverageRating(records []model.Feedback) string {
	if len(records) == 0 {
		return "0.0"
	}
	var sum int64
	for _, f := range records {
		sum += int64(f.Rating)
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(records)))
}

// ==================== 取数 + 聚合 ====================

// GetShopAnalytics 店铺统计（含优惠券指标），仅店主可见
func (s *AnalyticsService) GetShopAnalytics(ctx context.Context, shopID, adminID int64) (*dto.ShopAnalyticsResp, error) {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}
	if shop.AdminID != adminID {
		return nil, ErrShopAccessDenied
	}

	records, err := s.feedbackRepo.ListByShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	return AggregateShop(records), nil
}

// GetGlobalAnalytics 全局统计
func (s *AnalyticsService) GetGlobalAnalytics(ctx context.Context) (*dto.GlobalAnalyticsResp, error) {
	records, err := s.feedbackRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return AggregateGlobal(records), nil
}

// GetShopStats 单店看板统计，校验归属
func (s *AnalyticsService) GetShopStats(ctx context.Context, shopID, adminID int64) (*dto.ShopStatsResp, error) {
	owned, err := s.shopRepo.IsOwnedBy(ctx, shopID, adminID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, ErrShopAccessDenied
	}

	records, err := s.feedbackRepo.ListByShop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	return &dto.ShopStatsResp{
		TotalFeedback: int64(len(records)),
		AvgRating:     AverageRating(records),
	}, nil
}

// GetBatchStats 批量看板统计，只返回属于该店主的店铺
func (s *AnalyticsService) GetBatchStats(ctx context.Context, adminID int64, shopIDs []int64) (map[int64]*dto.ShopStatsResp, error) {
	stats := make(map[int64]*dto.ShopStatsResp)
	if len(shopIDs) == 0 {
		return stats, nil
	}

	allowedIDs, err := s.shopRepo.FilterOwnedIDs(ctx, adminID, shopIDs)
	if err != nil {
		return nil, err
	}
	if len(allowedIDs) == 0 {
		return stats, nil
	}

	records, err := s.feedbackRepo.ListByShops(ctx, allowedIDs)
	if err != nil {
		return nil, err
	}

	grouped := make(map[int64][]model.Feedback)
	for _, f := range records {
		grouped[f.ShopID] = append(grouped[f.ShopID], f)
	}
	for shopID, group := range grouped {
		stats[shopID] = &dto.ShopStatsResp{
			TotalFeedback: int64(len(group)),
			AvgRating:     AverageRating(group),
		}
	}
	return stats, nil
}
