package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"feedback_dev_v1_202608/internal/api/dto"
	"feedback_dev_v1_202608/internal/middleware"
	"feedback_dev_v1_202608/internal/model"
	"feedback_dev_v1_202608/internal/repository"
	"feedback_dev_v1_202608/pkg/utils"
)

// ==================== ShopService 店铺服务 ====================

// ShopService 店铺服务
type ShopService struct {
	shopRepo repository.ShopRepository
}

// NewShopService 创建店铺服务
func NewShopService(shopRepo repository.ShopRepository) *ShopService {
	return &ShopService{shopRepo: shopRepo}
}

// CreateShop 创建店铺，附带评价维度（最多 3 个）
func (s *ShopService) CreateShop(ctx context.Context, adminID int64, req *dto.ShopCreateReq) (*dto.ShopInfo, error) {
	shop := &model.Shop{
		AdminID:                    adminID,
		ShopName:                   req.Name,
		WidgetToken:                uuid.NewString(),
		GoogleReviewURL:            req.GoogleReviewLink,
		MaxFeedbackPerDevicePerDay: req.MaxFeedbackPerDevicePerDay,
		WidgetOrigins:              pq.StringArray(req.WidgetOrigins),
	}
	if shop.MaxFeedbackPerDevicePerDay <= 0 {
		shop.MaxFeedbackPerDevicePerDay = model.DefaultMaxFeedbackPerDay
	}
	// 未启用优惠券时不保留券码与文案
	if req.CouponEnabled {
		shop.CouponEnabled = true
		shop.CouponCode = req.CouponCode
		shop.CouponMessage = req.CouponMessage
	}
	shop.CreatedBy = auditActorID(ctx, adminID)

	if err := s.shopRepo.Create(ctx, shop); err != nil {
		return nil, err
	}

	// 评价维度：去空白、去空项，只保留前 3 个
	labels := normalizeLabels(req.Parameters)
	if len(labels) > 0 {
		params := make([]model.FeedbackParameter, 0, len(labels))
		for _, label := range labels {
			params = append(params, model.FeedbackParameter{ShopID: shop.ID, Label: label})
		}
		if err := s.shopRepo.CreateParameters(ctx, params); err != nil {
			return nil, err
		}
		shop.Parameters = params
	}

	return toShopInfo(shop), nil
}

// GetShop 店铺详情（含评价维度）
func (s *ShopService) GetShop(ctx context.Context, shopID, adminID int64) (*dto.ShopInfo, error) {
	if err := s.requireOwnership(ctx, shopID, adminID); err != nil {
		return nil, err
	}

	shop, err := s.shopRepo.GetByIDWithParameters(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}
	return toShopInfo(shop), nil
}

// AddParameter 新增评价维度，超过上限拒绝
func (s *ShopService) AddParameter(ctx context.Context, shopID, adminID int64, label string) error {
	if err := s.requireOwnership(ctx, shopID, adminID); err != nil {
		return err
	}

	count, err := s.shopRepo.CountParameters(ctx, shopID)
	if err != nil {
		return err
	}
	if count >= model.MaxParametersPerShop {
		return ErrMaxParameters
	}

	label = strings.TrimSpace(label)
	if label == "" {
		return ErrEmptyParameterLabel
	}

	return s.shopRepo.CreateParameters(ctx, []model.FeedbackParameter{
		{ShopID: shopID, Label: label},
	})
}

// ListMyShops 店主的店铺列表
func (s *ShopService) ListMyShops(ctx context.Context, adminID int64) ([]dto.ShopInfo, error) {
	shops, err := s.shopRepo.ListByAdmin(ctx, adminID)
	if err != nil {
		return nil, err
	}

	infos := make([]dto.ShopInfo, 0, len(shops))
	for i := range shops {
		infos = append(infos, *toShopInfo(&shops[i]))
	}
	return infos, nil
}

// UpdateSettings 更新店铺设置
// 关闭优惠券时同时清空券码与文案；评价链接传空串表示清除
func (s *ShopService) UpdateSettings(ctx context.Context, shopID, adminID int64, req *dto.ShopSettingsUpdateReq) error {
	if err := s.requireOwnership(ctx, shopID, adminID); err != nil {
		return err
	}

	fields := map[string]interface{}{}

	if req.MaxFeedbackPerDevicePerDay != nil {
		fields["max_feedback_per_device_per_day"] = *req.MaxFeedbackPerDevicePerDay
	}
	if req.CouponEnabled != nil {
		fields["coupon_enabled"] = *req.CouponEnabled
		if *req.CouponEnabled {
			fields["coupon_code"] = req.CouponCode
			fields["coupon_message"] = req.CouponMessage
		} else {
			fields["coupon_code"] = ""
			fields["coupon_message"] = ""
		}
	}
	if req.GoogleReviewURL != nil {
		fields["google_review_url"] = *req.GoogleReviewURL
		// 链接变更后重置检测状态
		fields["review_link_status"] = model.ReviewLinkUnchecked
	}
	if req.WidgetOrigins != nil {
		fields["widget_origins"] = pq.StringArray(*req.WidgetOrigins)
	}
	fields["updated_by"] = auditActorID(ctx, adminID)

	if err := s.shopRepo.UpdateFields(ctx, shopID, fields); err != nil {
		return err
	}

	// 配置已变，挂件热路径缓存立即失效
	utils.DeleteCache(shopCacheKey(shopID))
	return nil
}

// DeleteShop 删除店铺，级联清理反馈与评价维度
func (s *ShopService) DeleteShop(ctx context.Context, shopID, adminID int64) error {
	if err := s.requireOwnership(ctx, shopID, adminID); err != nil {
		return err
	}
	if err := s.shopRepo.DeleteCascade(ctx, shopID); err != nil {
		return err
	}
	utils.DeleteCache(shopCacheKey(shopID))
	return nil
}

// ==================== 私有方法 ====================

func (s *ShopService) requireOwnership(ctx context.Context, shopID, adminID int64) error {
	owned, err := s.shopRepo.IsOwnedBy(ctx, shopID, adminID)
	if err != nil {
		return err
	}
	if !owned {
		return ErrShopAccessDenied
	}
	return nil
}

// auditActorID 审计字段记录请求上下文里的操作人，拿不到时退回店主ID
// 操作人和归属店主可以不同（如后台代操作）
func auditActorID(ctx context.Context, fallback int64) int64 {
	if id := middleware.GetAuditUserID(ctx); id > 0 {
		return id
	}
	return fallback
}

func normalizeLabels(raw []string) []string {
	labels := make([]string, 0, model.MaxParametersPerShop)
	for _, label := range raw {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		labels = append(labels, label)
		if len(labels) == model.MaxParametersPerShop {
			break
		}
	}
	return labels
}

func toShopInfo(shop *model.Shop) *dto.ShopInfo {
	labels := make([]string, 0, len(shop.Parameters))
	for _, p := range shop.Parameters {
		labels = append(labels, p.Label)
	}

	return &dto.ShopInfo{
		ID:                         shop.ID,
		ShopName:                   shop.ShopName,
		WidgetToken:                shop.WidgetToken,
		GoogleReviewURL:            shop.GoogleReviewURL,
		ReviewLinkStatus:           shop.ReviewLinkStatus,
		MaxFeedbackPerDevicePerDay: shop.EffectiveMaxPerDay(),
		CouponEnabled:              shop.CouponEnabled,
		CouponCode:                 shop.CouponCode,
		CouponMessage:              shop.CouponMessage,
		WidgetOrigins:              shop.WidgetOrigins,
		Parameters:                 labels,
		CreatedAt:                  shop.CreatedAt,
	}
}

// ==================== 错误定义 ====================

var (
	ErrShopNotFound        = errors.New("店铺不存在")
	ErrShopAccessDenied    = errors.New("无权访问该店铺")
	ErrMaxParameters       = errors.New("评价维度最多 3 个")
	ErrEmptyParameterLabel = errors.New("评价维度名不能为空")
)
