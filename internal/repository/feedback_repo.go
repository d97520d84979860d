package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"feedback_dev_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// FeedbackRepository 反馈仓储接口
// 对应核心逻辑消费的四类查询：取店铺、按日计数、插入、按店铺取记录
type FeedbackRepository interface {
	Create(ctx context.Context, fb *model.Feedback) error

	// CountByDeviceBetween 统计某店铺某设备在 [from, to] 区间内的提交数
	CountByDeviceBetween(ctx context.Context, shopID int64, deviceID string, from, to time.Time) (int64, error)

	// CountByDevice 统计某店铺某设备的历史总提交数
	CountByDevice(ctx context.Context, shopID int64, deviceID string) (int64, error)

	ListByShop(ctx context.Context, shopID int64) ([]model.Feedback, error)
	ListByShops(ctx context.Context, shopIDs []int64) ([]model.Feedback, error)
	ListAll(ctx context.Context) ([]model.Feedback, error)

	// ListCreatedUpTo 返回 cutoff（含）之前创建的全部记录，快照补数用
	ListCreatedUpTo(ctx context.Context, cutoff time.Time) ([]model.Feedback, error)
}

// ==================== 仓储实现 ====================

type feedbackRepo struct {
	db *gorm.DB
}

// NewFeedbackRepository 创建反馈仓储
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepo{db: db}
}

func (r *feedbackRepo) Create(ctx context.Context, fb *model.Feedback) error {
	return r.db.WithContext(ctx).Create(fb).Error
}

func (r *feedbackRepo) CountByDeviceBetween(ctx context.Context, shopID int64, deviceID string, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Feedback{}).
		Where("shop_id = ? AND device_id = ?", shopID, deviceID).
		Where("created_at >= ? AND created_at <= ?", from, to).
		Count(&count).Error
	return count, err
}

func (r *feedbackRepo) CountByDevice(ctx context.Context, shopID int64, deviceID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Feedback{}).
		Where("shop_id = ? AND device_id = ?", shopID, deviceID).
		Count(&count).Error
	return count, err
}

func (r *feedbackRepo) ListByShop(ctx context.Context, shopID int64) ([]model.Feedback, error) {
	var records []model.Feedback
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}

func (r *feedbackRepo) ListByShops(ctx context.Context, shopIDs []int64) ([]model.Feedback, error) {
	var records []model.Feedback
	err := r.db.WithContext(ctx).
		Where("shop_id IN ?", shopIDs).
		Find(&records).Error
	return records, err
}

func (r *feedbackRepo) ListAll(ctx context.Context) ([]model.Feedback, error) {
	var records []model.Feedback
	err := r.db.WithContext(ctx).Find(&records).Error
	return records, err
}

func (r *feedbackRepo) ListCreatedUpTo(ctx context.Context, cutoff time.Time) ([]model.Feedback, error) {
	var records []model.Feedback
	err := r.db.WithContext(ctx).
		Where("created_at <= ?", cutoff).
		Find(&records).Error
	return records, err
}
