package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"feedback_dev_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// SnapshotRepository 全局统计快照仓储接口
type SnapshotRepository interface {
	// Upsert 按日期写入或覆盖快照
	Upsert(ctx context.Context, snapshot *model.AnalyticsSnapshot) error
	GetByDay(ctx context.Context, day string) (*model.AnalyticsSnapshot, error)
}

// ==================== 仓储实现 ====================

type snapshotRepo struct {
	db *gorm.DB
}

// NewSnapshotRepository 创建快照仓储
func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepo{db: db}
}

func (r *snapshotRepo) Upsert(ctx context.Context, snapshot *model.AnalyticsSnapshot) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_feedback", "avg_rating", "distribution", "updated_at"}),
	}).Create(snapshot).Error
}

func (r *snapshotRepo) GetByDay(ctx context.Context, day string) (*model.AnalyticsSnapshot, error) {
	var snapshot model.AnalyticsSnapshot
	err := r.db.WithContext(ctx).Where("day = ?", day).First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}
