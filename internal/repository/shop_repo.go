package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"feedback_dev_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// ShopRepository 店铺仓储接口
type ShopRepository interface {
	Create(ctx context.Context, shop *model.Shop) error
	GetByID(ctx context.Context, id int64) (*model.Shop, error)
	GetByIDWithParameters(ctx context.Context, id int64) (*model.Shop, error)
	GetByWidgetToken(ctx context.Context, token string) (*model.Shop, error)
	ListByAdmin(ctx context.Context, adminID int64) ([]model.Shop, error)
	ListAll(ctx context.Context) ([]model.Shop, error)
	ListWithReviewURL(ctx context.Context) ([]model.Shop, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	IsOwnedBy(ctx context.Context, shopID, adminID int64) (bool, error)
	FilterOwnedIDs(ctx context.Context, adminID int64, shopIDs []int64) ([]int64, error)

	// 评价维度
	CountParameters(ctx context.Context, shopID int64) (int64, error)
	CreateParameters(ctx context.Context, params []model.FeedbackParameter) error
	ListParameters(ctx context.Context, shopID int64) ([]model.FeedbackParameter, error)

	// 级联删除店铺及其反馈、评价维度
	DeleteCascade(ctx context.Context, shopID int64) error
}

// ==================== 仓储实现 ====================

type shopRepo struct {
	db *gorm.DB
}

// NewShopRepository 创建店铺仓储
func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepo{db: db}
}

func (r *shopRepo) Create(ctx context.Context, shop *model.Shop) error {
	return r.db.WithContext(ctx).Create(shop).Error
}

func (r *shopRepo) GetByID(ctx context.Context, id int64) (*model.Shop, error) {
	var shop model.Shop
	err := r.db.WithContext(ctx).First(&shop, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepo) GetByIDWithParameters(ctx context.Context, id int64) (*model.Shop, error) {
	var shop model.Shop
	err := r.db.WithContext(ctx).
		Preload("Parameters", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&shop, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepo) GetByWidgetToken(ctx context.Context, token string) (*model.Shop, error) {
	var shop model.Shop
	err := r.db.WithContext(ctx).Where("widget_token = ?", token).First(&shop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepo) ListByAdmin(ctx context.Context, adminID int64) ([]model.Shop, error) {
	var shops []model.Shop
	err := r.db.WithContext(ctx).
		Preload("Parameters").
		Where("admin_id = ?", adminID).
		Order("created_at DESC").
		Find(&shops).Error
	return shops, err
}

func (r *shopRepo) ListAll(ctx context.Context) ([]model.Shop, error) {
	var shops []model.Shop
	err := r.db.WithContext(ctx).Find(&shops).Error
	return shops, err
}

// ListWithReviewURL 获取配置了评价链接的店铺，供链接检测任务使用
func (r *shopRepo) ListWithReviewURL(ctx context.Context) ([]model.Shop, error) {
	var shops []model.Shop
	err := r.db.WithContext(ctx).
		Where("google_review_url <> ''").
		Find(&shops).Error
	return shops, err
}

func (r *shopRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Shop{}).Where("id = ?", id).Updates(fields).Error
}

// IsOwnedBy 校验店铺归属
func (r *shopRepo) IsOwnedBy(ctx context.Context, shopID, adminID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Shop{}).
		Where("id = ? AND admin_id = ?", shopID, adminID).
		Count(&count).Error
	return count > 0, err
}

// FilterOwnedIDs 过滤出属于该店主的店铺 ID
func (r *shopRepo) FilterOwnedIDs(ctx context.Context, adminID int64, shopIDs []int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&model.Shop{}).
		Where("admin_id = ? AND id IN ?", adminID, shopIDs).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *shopRepo) CountParameters(ctx context.Context, shopID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.FeedbackParameter{}).
		Where("shop_id = ?", shopID).
		Count(&count).Error
	return count, err
}

func (r *shopRepo) CreateParameters(ctx context.Context, params []model.FeedbackParameter) error {
	if len(params) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&params).Error
}

func (r *shopRepo) ListParameters(ctx context.Context, shopID int64) ([]model.FeedbackParameter, error) {
	var params []model.FeedbackParameter
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("id ASC").
		Find(&params).Error
	return params, err
}

// DeleteCascade 在一个事务内删除店铺、反馈记录与评价维度
func (r *shopRepo) DeleteCascade(ctx context.Context, shopID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shop_id = ?", shopID).Delete(&model.Feedback{}).Error; err != nil {
			return err
		}
		if err := tx.Where("shop_id = ?", shopID).Delete(&model.FeedbackParameter{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Shop{}, shopID).Error
	})
}
