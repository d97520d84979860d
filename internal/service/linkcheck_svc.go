package service

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"feedback_dev_v1_202608/internal/model"
	"feedback_dev_v1_202608/internal/repository"
)

// ==================== LinkCheckService 评价链接检测 ====================

// LinkCheckService 周期检测店铺配置的评价链接是否可达
// 只更新检测状态，不影响提交与资格判定逻辑
type LinkCheckService struct {
	shopRepo repository.ShopRepository
	client   *resty.Client
}

// NewLinkCheckService 创建链接检测服务
func NewLinkCheckService(shopRepo repository.ShopRepository) *LinkCheckService {
	client := resty.New()
	// 设置超时和重试，防止网络波动
	client.SetTimeout(10 * time.Second)
	client.SetRetryCount(2)

	return &LinkCheckService{
		shopRepo: shopRepo,
		client:   client,
	}
}

// CheckShop 检测单个店铺的评价链接
func (s *LinkCheckService) CheckShop(ctx context.Context, shop *model.Shop) error {
	if shop.GoogleReviewURL == "" {
		return nil
	}

	status := model.ReviewLinkReachable
	resp, err := s.client.R().SetContext(ctx).Head(shop.GoogleReviewURL)
	if err != nil || resp.StatusCode() >= http.StatusBadRequest {
		status = model.ReviewLinkUnreachable
	}

	now := time.Now()
	return s.shopRepo.UpdateFields(ctx, shop.ID, map[string]interface{}{
		"review_link_status":     status,
		"review_link_checked_at": &now,
	})
}

// CheckAll 检测所有配置了评价链接的店铺
func (s *LinkCheckService) CheckAll(ctx context.Context) {
	shops, err := s.shopRepo.ListWithReviewURL(ctx)
	if err != nil {
		log.Printf("[LinkCheck] 查询店铺列表失败: %v", err)
		return
	}

	for i := range shops {
		if err := s.CheckShop(ctx, &shops[i]); err != nil {
			log.Printf("[LinkCheck] 店铺 %d 检测失败: %v", shops[i].ID, err)
		}
	}
	log.Printf("[LinkCheck] 链接检测完成，共 %d 个店铺", len(shops))
}
