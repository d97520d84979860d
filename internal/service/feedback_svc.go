package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"feedback_dev_v1_202608/internal/api/dto"
	"feedback_dev_v1_202608/internal/model"
	"feedback_dev_v1_202608/internal/repository"
	"feedback_dev_v1_202608/pkg/utils"
)

// 店铺配置缓存 TTL，挂件提交热路径用
const shopCacheTTL = 60 * time.Second

// ==================== FeedbackService 提交编排 ====================

// FeedbackService 反馈提交编排
// 固定顺序：查店铺 → 当日配额 → 落库 → 重查历史计数 → 展示资格判定；
// 配额检查失败不写任何记录，落库失败直接中止，不再做资格判定
type FeedbackService struct {
	shopRepo     repository.ShopRepository
	feedbackRepo repository.FeedbackRepository
	dayPolicy    DayPolicy

	// 可替换时钟，测试用
	now func() time.Time
}

// NewFeedbackService 创建反馈服务
func NewFeedbackService(shopRepo repository.ShopRepository, feedbackRepo repository.FeedbackRepository, dayPolicy DayPolicy) *FeedbackService {
	return &FeedbackService{
		shopRepo:     shopRepo,
		feedbackRepo: feedbackRepo,
		dayPolicy:    dayPolicy,
		now:          time.Now,
	}
}

// SetClock 替换时钟（测试用）
func (s *FeedbackService) SetClock(now func() time.Time) {
	s.now = now
}

// Submit 挂件提交反馈
func (s *FeedbackService) Submit(ctx context.Context, shopID int64, req *dto.FeedbackSubmitReq) (*dto.FeedbackSubmitResp, error) {
	// 1. 查店铺配置（找不到是无效请求，不是配额问题）
	shop, err := s.getShopCached(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}

	// 2. 当日配额检查
	now := s.now()
	from, to := s.dayPolicy.DayWindow(now)
	todayCount, err := s.feedbackRepo.CountByDeviceBetween(ctx, shopID, req.DeviceID, from, to)
	if err != nil {
		return nil, fmt.Errorf("查询当日提交数失败: %w", err)
	}
	if err := s.dayPolicy.CheckQuota(shop.EffectiveMaxPerDay(), todayCount); err != nil {
		return nil, err
	}

	// 3. 落库（唯一的写操作）
	fb := &model.Feedback{
		ShopID:      shopID,
		DeviceID:    req.DeviceID,
		Rating:      req.Rating,
		Comment:     req.Comment,
		ParamScores: buildParamScores(req),
	}
	if err := s.feedbackRepo.Create(ctx, fb); err != nil {
		return nil, fmt.Errorf("反馈落库失败: %w", err)
	}

	// 4. 重查历史总数（含刚写入的这条）
	lifetimeCount, err := s.feedbackRepo.CountByDevice(ctx, shopID, req.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("查询历史提交数失败: %w", err)
	}

	// 5. 展示资格判定
	eligibility := EvaluateEligibility(shop, req.Rating, lifetimeCount)

	// 6. 只返回展示决策，不暴露落库记录
	return toSubmitResp(eligibility), nil
}

// AllowedOrigin 校验挂件来源是否在店铺 Origin 白名单内
// 白名单为空表示不限制；店铺不存在时放行，由 Submit 统一返回无效店铺
func (s *FeedbackService) AllowedOrigin(ctx context.Context, shopID int64, origin string) (bool, error) {
	if origin == "" {
		return true, nil
	}

	shop, err := s.getShopCached(ctx, shopID)
	if err != nil {
		return false, err
	}
	if shop == nil || len(shop.WidgetOrigins) == 0 {
		return true, nil
	}

	for _, allowed := range shop.WidgetOrigins {
		if allowed == origin {
			return true, nil
		}
	}
	return false, nil
}

// WidgetConfig 通过公开令牌获取挂件渲染配置
// 只返回渲染所需的最小集合，优惠券与配额设置不外泄
func (s *FeedbackService) WidgetConfig(ctx context.Context, token string) (*dto.WidgetConfigResp, error) {
	shop, err := s.shopRepo.GetByWidgetToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("查询店铺失败: %w", err)
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}

	params, err := s.shopRepo.ListParameters(ctx, shop.ID)
	if err != nil {
		return nil, fmt.Errorf("查询评价维度失败: %w", err)
	}

	labels := make([]string, 0, len(params))
	for _, p := range params {
		labels = append(labels, p.Label)
	}

	return &dto.WidgetConfigResp{
		ShopID:     shop.ID,
		ShopName:   shop.ShopName,
		Parameters: labels,
		MaxRating:  model.RatingMax,
	}, nil
}

// ListShopFeedback 店铺反馈列表（按时间倒序）
func (s *FeedbackService) ListShopFeedback(ctx context.Context, shopID, adminID int64) ([]dto.FeedbackItem, error) {
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

	items := make([]dto.FeedbackItem, 0, len(records))
	for _, f := range records {
		items = append(items, dto.FeedbackItem{
			ID:          f.ID,
			Rating:      f.Rating,
			ParamScores: f.ParamScores,
			Comment:     f.Comment,
			DeviceID:    f.DeviceID,
			CreatedAt:   f.CreatedAt,
		})
	}
	return items, nil
}

// ==================== 私有方法 ====================

func (s *FeedbackService) getShopCached(ctx context.Context, shopID int64) (*model.Shop, error) {
	key := shopCacheKey(shopID)
	if cached, ok := utils.GetCache(key); ok {
		return cached.(*model.Shop), nil
	}

	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("查询店铺失败: %w", err)
	}
	if shop != nil {
		utils.SetCache(key, shop, shopCacheTTL)
	}
	return shop, nil
}

func shopCacheKey(shopID int64) string {
	return fmt.Sprintf("shop:config:%d", shopID)
}

// buildParamScores 未传 param_scores 时，由三个兜底字段拼装
func buildParamScores(req *dto.FeedbackSubmitReq) datatypes.JSONMap {
	if req.ParamScores != nil {
		return datatypes.JSONMap(req.ParamScores)
	}

	scores := datatypes.JSONMap{
		"Service":     nil,
		"Quality":     nil,
		"Cleanliness": nil,
	}
	if req.Service != "" {
		scores["Service"] = req.Service
	}
	if req.Quality != "" {
		scores["Quality"] = req.Quality
	}
	if req.Cleanliness != "" {
		scores["Cleanliness"] = req.Cleanliness
	}
	return scores
}

func toSubmitResp(e Eligibility) *dto.FeedbackSubmitResp {
	resp := &dto.FeedbackSubmitResp{
		ShowGoogleReview: e.ShowReview,
		ShowCoupon:       e.ShowCoupon,
	}
	if e.ShowReview && e.ReviewURL != "" {
		resp.GoogleReviewURL = &e.ReviewURL
	}
	if e.ShowCoupon {
		resp.CouponCode = &e.CouponCode
		resp.CouponMessage = &e.CouponMessage
	}
	return resp
}
