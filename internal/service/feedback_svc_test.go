package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lib/pq"

	"feedback_dev_v1_202608/internal/api/dto"
	"feedback_dev_v1_202608/internal/model"
	"feedback_dev_v1_202608/internal/repository"
	"feedback_dev_v1_202608/pkg/utils"
)

// ==================== 测试辅助 ====================

func setupServiceTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	if err := db.AutoMigrate(
		&model.SysUser{}, &model.Shop{}, &model.FeedbackParameter{},
		&model.Feedback{}, &model.AnalyticsSnapshot{},
	); err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	return db
}

// newFeedbackTestService 构建服务并清掉全局缓存里的同 ID 残留
func newFeedbackTestService(t *testing.T, db *gorm.DB, shopIDs ...int64) *FeedbackService {
	for _, id := range shopIDs {
		utils.DeleteCache(shopCacheKey(id))
	}
	return NewFeedbackService(
		repository.NewShopRepository(db),
		repository.NewFeedbackRepository(db),
		DefaultDayPolicy(),
	)
}

func mustCreateShop(t *testing.T, db *gorm.DB, shop *model.Shop) {
	if err := db.Create(shop).Error; err != nil {
		t.Fatalf("创建店铺失败: %v", err)
	}
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

// ==================== 提交编排 ====================

func TestFeedbackService_SubmitFirstTime(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newFeedbackTestService(t, db, 101)

	mustCreateShop(t, db, &model.Shop{
		BaseModel:       model.BaseModel{ID: 101},
		AdminID:         1,
		ShopName:        "Coffee Corner",
		GoogleReviewURL: "https://g.page/r/coffee",
		CouponEnabled:   true,
		CouponCode:      "SAVE10",
	})

	svc.SetClock(fixedClock(time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC)))

	resp, err := svc.Submit(context.Background(), 101, &dto.FeedbackSubmitReq{
		Rating:   5,
		DeviceID: "dev-1",
		Comment:  "great coffee",
		Service:  "5",
		Quality:  "4",
	})
	if err != nil {
		t.Fatalf("首次提交失败: %v", err)
	}

	if !resp.ShowGoogleReview {
		t.Error("高分首次提交应展示评价跳转")
	}
	if resp.GoogleReviewURL == nil || *resp.GoogleReviewURL != "https://g.page/r/coffee" {
		t.Errorf("评价链接 = %v", resp.GoogleReviewURL)
	}
	if !resp.ShowCoupon {
		t.Fatal("高分首次提交应发券")
	}
	if *resp.CouponCode != "SAVE10" {
		t.Errorf("券码 = %s, want SAVE10", *resp.CouponCode)
	}
	if *resp.CouponMessage != DefaultCouponMessage {
		t.Errorf("未配置文案应回落默认值, got %s", *resp.CouponMessage)
	}

	// 落库校验：兜底字段拼装 param_scores
	var saved model.Feedback
	if err := db.Where("shop_id = ? AND device_id = ?", 101, "dev-1").First(&saved).Error; err != nil {
		t.Fatalf("反馈未落库: %v", err)
	}
	if saved.ParamScores["Service"] != "5" || saved.ParamScores["Quality"] != "4" {
		t.Errorf("param_scores 拼装错误: %v", saved.ParamScores)
	}
}

func TestFeedbackService_SubmitLowRating(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newFeedbackTestService(t, db, 102)

	mustCreateShop(t, db, &model.Shop{
		BaseModel:       model.BaseModel{ID: 102},
		AdminID:         1,
		ShopName:        "Low Shop",
		GoogleReviewURL: "https://g.page/r/low",
		CouponEnabled:   true,
		CouponCode:      "SAVE10",
	})

	resp, err := svc.Submit(context.Background(), 102, &dto.FeedbackSubmitReq{
		Rating:   2,
		DeviceID: "dev-1",
	})
	if err != nil {
		t.Fatalf("低分提交失败: %v", err)
	}

	if resp.ShowGoogleReview || resp.ShowCoupon {
		t.Error("低分不应展示评价跳转或发券")
	}
	if resp.GoogleReviewURL != nil || resp.CouponCode != nil || resp.CouponMessage != nil {
		t.Error("低分响应不应携带链接与券信息")
	}

	// 低分反馈照常落库
	var count int64
	db.Model(&model.Feedback{}).Where("shop_id = ?", 102).Count(&count)
	if count != 1 {
		t.Errorf("反馈数 = %d, want 1", count)
	}
}

func TestFeedbackService_SubmitQuotaExceeded(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newFeedbackTestService(t, db, 103)

	mustCreateShop(t, db, &model.Shop{
		BaseModel:                  model.BaseModel{ID: 103},
		AdminID:                    1,
		ShopName:                   "Quota Shop",
		MaxFeedbackPerDevicePerDay: 1,
		CouponEnabled:              true,
		CouponCode:                 "SAVE10",
	})

	day1 := time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC)

	// 当天已有一条记录
	if err := db.Create(&model.Feedback{
		BaseModel: model.BaseModel{CreatedAt: day1},
		ShopID:    103, DeviceID: "dev-1", Rating: 5,
	}).Error; err != nil {
		t.Fatalf("预置反馈失败: %v", err)
	}

	// 同日 10:00 再提交，应拒绝且不落库
	svc.SetClock(fixedClock(day1.Add(time.Hour)))
	_, err := svc.Submit(context.Background(), 103, &dto.FeedbackSubmitReq{Rating: 4, DeviceID: "dev-1"})
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("期望配额拒绝，实际 err = %v", err)
	}

	var count int64
	db.Model(&model.Feedback{}).Where("shop_id = ?", 103).Count(&count)
	if count != 1 {
		t.Errorf("配额拒绝不应写入记录，反馈数 = %d, want 1", count)
	}

	// 次日 00:01 提交，应放行；该设备历史已有 2 条，不再发券
	svc.SetClock(fixedClock(time.Date(2026, 8, 16, 0, 1, 0, 0, time.UTC)))
	resp, err := svc.Submit(context.Background(), 103, &dto.FeedbackSubmitReq{Rating: 5, DeviceID: "dev-1"})
	if err != nil {
		t.Fatalf("次日提交应放行: %v", err)
	}
	if resp.ShowCoupon {
		t.Error("同一设备第二次提交不应再发券")
	}
}

func TestFeedbackService_SubmitHigherQuota(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newFeedbackTestService(t, db, 104)

	mustCreateShop(t, db, &model.Shop{
		BaseModel:                  model.BaseModel{ID: 104},
		AdminID:                    1,
		ShopName:                   "Busy Shop",
		MaxFeedbackPerDevicePerDay: 2,
	})

	day1 := time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC)
	svc.SetClock(fixedClock(day1.Add(2 * time.Hour)))

	// dev-1 当天已达上限 2
	for i := 0; i < 2; i++ {
		db.Create(&model.Feedback{
			BaseModel: model.BaseModel{CreatedAt: day1.Add(time.Duration(i) * time.Minute)},
			ShopID:    104, DeviceID: "dev-1", Rating: 3,
		})
	}
	_, err := svc.Submit(context.Background(), 104, &dto.FeedbackSubmitReq{Rating: 3, DeviceID: "dev-1"})
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("达到上限应拒绝，err = %v", err)
	}

	// dev-2 当天只有 1 条，仍可提交
	db.Create(&model.Feedback{
		BaseModel: model.BaseModel{CreatedAt: day1},
		ShopID:    104, DeviceID: "dev-2", Rating: 3,
	})
	if _, err := svc.Submit(context.Background(), 104, &dto.FeedbackSubmitReq{Rating: 3, DeviceID: "dev-2"}); err != nil {
		t.Errorf("未达上限应放行: %v", err)
	}
}

func TestFeedbackService_SubmitInvalidShop(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newFeedbackTestService(t, db, 999)

	_, err := svc.Submit(context.Background(), 999, &dto.FeedbackSubmitReq{Rating: 5, DeviceID: "dev-1"})
	if !errors.Is(err, ErrShopNotFound) {
		t.Errorf("期望店铺不存在，实际 err = %v", err)
	}
}

// ==================== Origin 白名单 ====================

func TestFeedbackService_AllowedOrigin(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newFeedbackTestService(t, db, 105, 106)

	mustCreateShop(t, db, &model.Shop{
		BaseModel:     model.BaseModel{ID: 105},
		AdminID:       1,
		ShopName:      "Guarded Shop",
		WidgetOrigins: pq.StringArray{"https://shop.example.com"},
	})
	mustCreateShop(t, db, &model.Shop{
		BaseModel: model.BaseModel{ID: 106},
		AdminID:   1,
		ShopName:  "Open Shop",
	})

	ctx := context.Background()

	cases := []struct {
		name   string
		shopID int64
		origin string
		want   bool
	}{
		{"无 Origin 头放行", 105, "", true},
		{"白名单内放行", 105, "https://shop.example.com", true},
		{"白名单外拒绝", 105, "https://evil.example.com", false},
		{"空白名单不限制", 106, "https://anywhere.example.com", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.AllowedOrigin(ctx, tc.shopID, tc.origin)
			if err != nil {
				t.Fatalf("校验失败: %v", err)
			}
			if got != tc.want {
				t.Errorf("allowed = %v, want %v", got, tc.want)
			}
		})
	}
}

// ==================== 挂件配置 ====================

func TestFeedbackService_WidgetConfig(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newFeedbackTestService(t, db, 108)

	mustCreateShop(t, db, &model.Shop{
		BaseModel:     model.BaseModel{ID: 108},
		AdminID:       1,
		ShopName:      "Widget Shop",
		WidgetToken:   "tok-widget-108",
		CouponEnabled: true,
		CouponCode:    "SECRET",
	})
	db.Create(&model.FeedbackParameter{ShopID: 108, Label: "Service"})
	db.Create(&model.FeedbackParameter{ShopID: 108, Label: "Quality"})

	cfg, err := svc.WidgetConfig(context.Background(), "tok-widget-108")
	if err != nil {
		t.Fatalf("获取挂件配置失败: %v", err)
	}
	if cfg.ShopID != 108 || cfg.ShopName != "Widget Shop" {
		t.Errorf("配置内容错误: %+v", cfg)
	}
	if len(cfg.Parameters) != 2 || cfg.Parameters[0] != "Service" {
		t.Errorf("评价维度错误: %v", cfg.Parameters)
	}
	if cfg.MaxRating != model.RatingMax {
		t.Errorf("maxRating = %d, want %d", cfg.MaxRating, model.RatingMax)
	}

	if _, err := svc.WidgetConfig(context.Background(), "tok-unknown"); !errors.Is(err, ErrShopNotFound) {
		t.Errorf("未知令牌应返回店铺不存在, err = %v", err)
	}
}

// ==================== 反馈列表 ====================

func TestFeedbackService_ListShopFeedback(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newFeedbackTestService(t, db, 107)

	mustCreateShop(t, db, &model.Shop{
		BaseModel: model.BaseModel{ID: 107},
		AdminID:   7,
		ShopName:  "List Shop",
	})

	base := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	db.Create(&model.Feedback{BaseModel: model.BaseModel{CreatedAt: base}, ShopID: 107, DeviceID: "d1", Rating: 3})
	db.Create(&model.Feedback{BaseModel: model.BaseModel{CreatedAt: base.Add(time.Hour)}, ShopID: 107, DeviceID: "d2", Rating: 5})

	items, err := svc.ListShopFeedback(context.Background(), 107, 7)
	if err != nil {
		t.Fatalf("查询反馈列表失败: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("反馈数 = %d, want 2", len(items))
	}
	if items[0].Rating != 5 {
		t.Errorf("列表应按时间倒序，首条评分 = %d, want 5", items[0].Rating)
	}

	// 非店主访问拒绝
	if _, err := svc.ListShopFeedback(context.Background(), 107, 8); !errors.Is(err, ErrShopAccessDenied) {
		t.Errorf("非店主应拒绝，err = %v", err)
	}
}
