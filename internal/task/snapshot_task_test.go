package task

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"feedback_dev_v1_202608/internal/model"
	"feedback_dev_v1_202608/internal/repository"
	"feedback_dev_v1_202608/internal/service"
)

func setupTaskTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.Feedback{}, &model.AnalyticsSnapshot{}); err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	return db
}

func TestSnapshotTask_SnapshotDay(t *testing.T) {
	db := setupTaskTestDB(t)

	seed := func(at time.Time, ratings ...int) {
		for _, rating := range ratings {
			if err := db.Create(&model.Feedback{
				BaseModel: model.BaseModel{CreatedAt: at},
				ShopID:    1, DeviceID: "dev", Rating: rating,
			}).Error; err != nil {
				t.Fatalf("预置反馈失败: %v", err)
			}
		}
	}

	seed(time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC), 5, 5, 4, 2)
	// 当日最后一秒计入快照
	seed(time.Date(2026, 8, 29, 23, 59, 59, 0, time.UTC), 4)
	// 次日的记录不回流到 29 号的快照
	seed(time.Date(2026, 8, 30, 0, 0, 1, 0, time.UTC), 1)

	snapshotRepo := repository.NewSnapshotRepository(db)
	snapshotTask := NewSnapshotTask(repository.NewFeedbackRepository(db), snapshotRepo, service.DefaultDayPolicy())

	if err := snapshotTask.SnapshotDay(context.Background(), "2026-08-29"); err != nil {
		t.Fatalf("生成快照失败: %v", err)
	}

	got, err := snapshotRepo.GetByDay(context.Background(), "2026-08-29")
	if err != nil {
		t.Fatalf("查询快照失败: %v", err)
	}
	if got == nil {
		t.Fatal("快照未写入")
	}
	if got.TotalFeedback != 5 {
		t.Errorf("总数 = %d, want 5", got.TotalFeedback)
	}
	if got.AvgRating != 4.0 {
		t.Errorf("均分 = %v, want 4.0", got.AvgRating)
	}

	// JSON 数值回读为 float64
	if v, ok := got.Distribution["5"].(float64); !ok || v != 2 {
		t.Errorf("分布 dist[5] = %v, want 2", got.Distribution["5"])
	}
	if v, ok := got.Distribution["1"].(float64); !ok || v != 0 {
		t.Errorf("次日记录不应计入 dist[1] = %v, want 0", got.Distribution["1"])
	}
	if v, ok := got.Distribution["3"].(float64); !ok || v != 0 {
		t.Errorf("分布应零填充 dist[3] = %v, want 0", got.Distribution["3"])
	}
}

func TestSnapshotTask_SnapshotDayInvalidKey(t *testing.T) {
	db := setupTaskTestDB(t)
	snapshotTask := NewSnapshotTask(
		repository.NewFeedbackRepository(db),
		repository.NewSnapshotRepository(db),
		service.DefaultDayPolicy(),
	)

	if err := snapshotTask.SnapshotDay(context.Background(), "2026/08/29"); err == nil {
		t.Error("非法日期键应报错")
	}
}
