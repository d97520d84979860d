package task

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/datatypes"

	"feedback_dev_v1_202608/internal/model"
	"feedback_dev_v1_202608/internal/repository"
	"feedback_dev_v1_202608/internal/service"
)

// ==================== SnapshotTask 全局统计快照任务 ====================

// SnapshotTask 每日把全局统计落为快照
// 快照按日期幂等写入，重跑只会覆盖同一天的数据
type SnapshotTask struct {
	feedbackRepo repository.FeedbackRepository
	snapshotRepo repository.SnapshotRepository
	dayPolicy    service.DayPolicy
	cron         *cron.Cron
}

// NewSnapshotTask 创建快照任务
func NewSnapshotTask(
	feedbackRepo repository.FeedbackRepository,
	snapshotRepo repository.SnapshotRepository,
	dayPolicy service.DayPolicy,
) *SnapshotTask {
	return &SnapshotTask{
		feedbackRepo: feedbackRepo,
		snapshotRepo: snapshotRepo,
		dayPolicy:    dayPolicy,
		cron:         cron.New(cron.WithSeconds()),
	}
}

// Start 启动定时任务
func (t *SnapshotTask) Start() {
	// 每日 00:05 (UTC) 执行，统计刚结束的前一天
	_, err := t.cron.AddFunc("0 5 0 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		t.snapshotPreviousDay(ctx)
	})
	if err != nil {
		log.Printf("[SnapshotTask] 定时任务启动失败: %v", err)
		return
	}

	t.cron.Start()
	log.Println("[SnapshotTask] 已启动 (每日 00:05)")
}

// Stop 停止任务
func (t *SnapshotTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[SnapshotTask] 已停止")
}

// snapshotPreviousDay 对前一天的全量数据做快照
func (t *SnapshotTask) snapshotPreviousDay(ctx context.Context) {
	day := t.dayPolicy.DayKey(time.Now().AddDate(0, 0, -1))
	if err := t.SnapshotDay(ctx, day); err != nil {
		log.Printf("[SnapshotTask] %s 快照失败: %v", day, err)
	}
}

// SnapshotDay 对指定日期生成快照（可用于补数）
// 快照口径为截至该日 23:59:59 的累计全量，之后写入的记录不回流，
// 补历史日期得到的是当时的累计值而非现在的
func (t *SnapshotTask) SnapshotDay(ctx context.Context, day string) error {
	dayStart, err := t.dayPolicy.ParseDayKey(day)
	if err != nil {
		return fmt.Errorf("非法日期键 %q: %w", day, err)
	}
	_, dayEnd := t.dayPolicy.DayWindow(dayStart)

	records, err := t.feedbackRepo.ListCreatedUpTo(ctx, dayEnd)
	if err != nil {
		return fmt.Errorf("查询反馈记录失败: %w", err)
	}

	dist := service.AggregateDistribution(records)
	distJSON := make(datatypes.JSONMap, len(dist))
	for rating, count := range dist {
		distJSON[fmt.Sprintf("%d", rating)] = count
	}

	var sum int64
	for _, f := range records {
		sum += int64(f.Rating)
	}
	var avg float64
	if len(records) > 0 {
		avg = float64(sum) / float64(len(records))
	}

	snapshot := &model.AnalyticsSnapshot{
		Day:           day,
		TotalFeedback: int64(len(records)),
		AvgRating:     avg,
		Distribution:  distJSON,
	}
	if err := t.snapshotRepo.Upsert(ctx, snapshot); err != nil {
		return fmt.Errorf("写入快照失败: %w", err)
	}

	log.Printf("[SnapshotTask] %s 快照完成: 总数 %d, 均分 %.2f", day, snapshot.TotalFeedback, avg)
	return nil
}
