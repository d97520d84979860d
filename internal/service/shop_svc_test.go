package service

import (
	"context"
	"errors"
	"testing"

	"feedback_dev_v1_202608/internal/api/dto"
	"feedback_dev_v1_202608/internal/middleware"
	"feedback_dev_v1_202608/internal/model"
	"feedback_dev_v1_202608/internal/repository"
)

// ==================== 创建店铺 ====================

func TestShopService_CreateShop(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewShopService(repository.NewShopRepository(db))

	info, err := svc.CreateShop(context.Background(), 1, &dto.ShopCreateReq{
		Name:             "Bakery",
		GoogleReviewLink: "https://g.page/r/bakery",
		CouponEnabled:    true,
		CouponCode:       "BAKE5",
		Parameters:       []string{"Service", "Quality"},
	})
	if err != nil {
		t.Fatalf("创建店铺失败: %v", err)
	}

	if info.WidgetToken == "" {
		t.Error("挂件令牌不应为空")
	}
	if info.MaxFeedbackPerDevicePerDay != model.DefaultMaxFeedbackPerDay {
		t.Errorf("未配置配额应为默认值, got %d", info.MaxFeedbackPerDevicePerDay)
	}
	if len(info.Parameters) != 2 {
		t.Errorf("评价维度数 = %d, want 2", len(info.Parameters))
	}
	if !info.CouponEnabled || info.CouponCode != "BAKE5" {
		t.Errorf("优惠券配置错误: enabled=%v code=%s", info.CouponEnabled, info.CouponCode)
	}
}

func TestShopService_CreateShopTrimsParameters(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewShopService(repository.NewShopRepository(db))

	// 空白项剔除，超出 3 个截断
	info, err := svc.CreateShop(context.Background(), 1, &dto.ShopCreateReq{
		Name:       "Crowded",
		Parameters: []string{" Service ", "", "Quality", "Cleanliness", "Speed"},
	})
	if err != nil {
		t.Fatalf("创建店铺失败: %v", err)
	}

	if len(info.Parameters) != model.MaxParametersPerShop {
		t.Fatalf("评价维度数 = %d, want %d", len(info.Parameters), model.MaxParametersPerShop)
	}
	if info.Parameters[0] != "Service" {
		t.Errorf("维度名应去空白, got %q", info.Parameters[0])
	}
}

func TestShopService_CreateShopCouponDisabled(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewShopService(repository.NewShopRepository(db))

	// 未启用优惠券时忽略券码与文案
	info, err := svc.CreateShop(context.Background(), 1, &dto.ShopCreateReq{
		Name:          "No Coupon",
		CouponEnabled: false,
		CouponCode:    "IGNORED",
		CouponMessage: "ignored",
	})
	if err != nil {
		t.Fatalf("创建店铺失败: %v", err)
	}
	if info.CouponEnabled || info.CouponCode != "" || info.CouponMessage != "" {
		t.Errorf("未启用优惠券不应保留券信息: %+v", info)
	}
}

func TestShopService_GetShop(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewShopService(repository.NewShopRepository(db))

	info, err := svc.CreateShop(context.Background(), 1, &dto.ShopCreateReq{
		Name:       "Detail Shop",
		Parameters: []string{"Service"},
	})
	if err != nil {
		t.Fatalf("创建店铺失败: %v", err)
	}

	got, err := svc.GetShop(context.Background(), info.ID, 1)
	if err != nil {
		t.Fatalf("查询店铺详情失败: %v", err)
	}
	if got.ShopName != "Detail Shop" || len(got.Parameters) != 1 {
		t.Errorf("详情错误: %+v", got)
	}

	if _, err := svc.GetShop(context.Background(), info.ID, 2); !errors.Is(err, ErrShopAccessDenied) {
		t.Errorf("非店主应拒绝, err = %v", err)
	}
}

// ==================== 评价维度 ====================

func TestShopService_AddParameterLimit(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewShopService(repository.NewShopRepository(db))

	info, err := svc.CreateShop(context.Background(), 1, &dto.ShopCreateReq{
		Name:       "Limit Shop",
		Parameters: []string{"A", "B"},
	})
	if err != nil {
		t.Fatalf("创建店铺失败: %v", err)
	}

	ctx := context.Background()

	if err := svc.AddParameter(ctx, info.ID, 1, "C"); err != nil {
		t.Fatalf("第 3 个维度应允许: %v", err)
	}
	if err := svc.AddParameter(ctx, info.ID, 1, "D"); !errors.Is(err, ErrMaxParameters) {
		t.Errorf("第 4 个维度应拒绝, err = %v", err)
	}
	if err := svc.AddParameter(ctx, info.ID, 2, "X"); !errors.Is(err, ErrShopAccessDenied) {
		t.Errorf("非店主应拒绝, err = %v", err)
	}
}

func TestShopService_AddParameterEmptyLabel(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewShopService(repository.NewShopRepository(db))

	info, err := svc.CreateShop(context.Background(), 1, &dto.ShopCreateReq{Name: "Blank"})
	if err != nil {
		t.Fatalf("创建店铺失败: %v", err)
	}

	if err := svc.AddParameter(context.Background(), info.ID, 1, "   "); !errors.Is(err, ErrEmptyParameterLabel) {
		t.Errorf("空白维度名应拒绝, err = %v", err)
	}
}

// ==================== 店铺设置 ====================

func TestShopService_UpdateSettingsCouponDisable(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewShopService(repository.NewShopRepository(db))

	info, err := svc.CreateShop(context.Background(), 1, &dto.ShopCreateReq{
		Name:          "Settings Shop",
		CouponEnabled: true,
		CouponCode:    "OLD10",
		CouponMessage: "old message",
	})
	if err != nil {
		t.Fatalf("创建店铺失败: %v", err)
	}

	disabled := false
	if err := svc.UpdateSettings(context.Background(), info.ID, 1, &dto.ShopSettingsUpdateReq{
		CouponEnabled: &disabled,
	}); err != nil {
		t.Fatalf("更新设置失败: %v", err)
	}

	var shop model.Shop
	db.First(&shop, info.ID)
	if shop.CouponEnabled || shop.CouponCode != "" || shop.CouponMessage != "" {
		t.Errorf("关闭优惠券应清空券信息: enabled=%v code=%q msg=%q",
			shop.CouponEnabled, shop.CouponCode, shop.CouponMessage)
	}
}

func TestShopService_UpdateSettingsResetsLinkStatus(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewShopService(repository.NewShopRepository(db))

	info, err := svc.CreateShop(context.Background(), 1, &dto.ShopCreateReq{
		Name:             "Link Shop",
		GoogleReviewLink: "https://g.page/r/old",
	})
	if err != nil {
		t.Fatalf("创建店铺失败: %v", err)
	}

	// 模拟巡检标记为可达
	db.Model(&model.Shop{}).Where("id = ?", info.ID).
		Update("review_link_status", model.ReviewLinkReachable)

	newURL := "https://g.page/r/new"
	if err := svc.UpdateSettings(context.Background(), info.ID, 1, &dto.ShopSettingsUpdateReq{
		GoogleReviewURL: &newURL,
	}); err != nil {
		t.Fatalf("更新设置失败: %v", err)
	}

	var shop model.Shop
	db.First(&shop, info.ID)
	if shop.GoogleReviewURL != newURL {
		t.Errorf("评价链接 = %s, want %s", shop.GoogleReviewURL, newURL)
	}
	if shop.ReviewLinkStatus != model.ReviewLinkUnchecked {
		t.Errorf("链接变更后检测状态应重置, got %s", shop.ReviewLinkStatus)
	}
}

// ==================== 删除店铺 ====================

func TestShopService_DeleteShopCascade(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewShopService(repository.NewShopRepository(db))

	info, err := svc.CreateShop(context.Background(), 1, &dto.ShopCreateReq{
		Name:       "Doomed Shop",
		Parameters: []string{"Service"},
	})
	if err != nil {
		t.Fatalf("创建店铺失败: %v", err)
	}

	db.Create(&model.Feedback{ShopID: info.ID, DeviceID: "d1", Rating: 5})
	db.Create(&model.Feedback{ShopID: info.ID, DeviceID: "d2", Rating: 3})

	// 非店主删除拒绝
	if err := svc.DeleteShop(context.Background(), info.ID, 2); !errors.Is(err, ErrShopAccessDenied) {
		t.Fatalf("非店主删除应拒绝, err = %v", err)
	}

	if err := svc.DeleteShop(context.Background(), info.ID, 1); err != nil {
		t.Fatalf("删除店铺失败: %v", err)
	}

	var shopCount, fbCount, paramCount int64
	db.Model(&model.Shop{}).Where("id = ?", info.ID).Count(&shopCount)
	db.Model(&model.Feedback{}).Where("shop_id = ?", info.ID).Count(&fbCount)
	db.Model(&model.FeedbackParameter{}).Where("shop_id = ?", info.ID).Count(&paramCount)

	if shopCount != 0 || fbCount != 0 || paramCount != 0 {
		t.Errorf("级联删除不彻底: shop=%d feedback=%d param=%d", shopCount, fbCount, paramCount)
	}
}

// ==================== 审计字段 ====================

func TestShopService_AuditFieldsFromContext(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewShopService(repository.NewShopRepository(db))

	// 请求上下文里的操作人写入审计字段，可以与归属店主不同
	ctx := middleware.WithAuditInfo(context.Background(), 77, "ops")
	info, err := svc.CreateShop(ctx, 1, &dto.ShopCreateReq{Name: "Audited"})
	if err != nil {
		t.Fatalf("创建店铺失败: %v", err)
	}

	var shop model.Shop
	db.First(&shop, info.ID)
	if shop.AdminID != 1 {
		t.Errorf("归属店主 = %d, want 1", shop.AdminID)
	}
	if shop.CreatedBy != 77 {
		t.Errorf("created_by = %d, want 审计操作人 77", shop.CreatedBy)
	}

	max := 2
	if err := svc.UpdateSettings(ctx, info.ID, 1, &dto.ShopSettingsUpdateReq{
		MaxFeedbackPerDevicePerDay: &max,
	}); err != nil {
		t.Fatalf("更新设置失败: %v", err)
	}
	db.First(&shop, info.ID)
	if shop.UpdatedBy != 77 {
		t.Errorf("updated_by = %d, want 77", shop.UpdatedBy)
	}
}

func TestShopService_AuditFieldsFallback(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewShopService(repository.NewShopRepository(db))

	// 上下文没有审计信息时退回店主ID
	info, err := svc.CreateShop(context.Background(), 5, &dto.ShopCreateReq{Name: "Plain"})
	if err != nil {
		t.Fatalf("创建店铺失败: %v", err)
	}

	var shop model.Shop
	db.First(&shop, info.ID)
	if shop.CreatedBy != 5 {
		t.Errorf("created_by = %d, want 5", shop.CreatedBy)
	}
}
