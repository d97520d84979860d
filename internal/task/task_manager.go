package task

import (
	"context"
	"log"
	"time"

	"feedback_dev_v1_202608/internal/repository"
	"feedback_dev_v1_202608/internal/service"
)

// ==================== TaskManager 后台任务管理器 ====================

// TaskManager 统一管理后台定时任务
// 管理范围：统计快照、链接巡检
// 不包含：分区维护（基础设施层独立管理）
type TaskManager struct {
	snapshotTask  *SnapshotTask
	linkCheckTask *LinkCheckTask
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	FeedbackRepo repository.FeedbackRepository
	SnapshotRepo repository.SnapshotRepository
	DayPolicy    service.DayPolicy

	LinkCheckService *service.LinkCheckService
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	SnapshotEnabled  bool
	LinkCheckEnabled bool
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		SnapshotEnabled:  true,
		LinkCheckEnabled: true,
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tm := &TaskManager{}

	if cfg.SnapshotEnabled && deps.SnapshotRepo != nil {
		tm.snapshotTask = NewSnapshotTask(deps.FeedbackRepo, deps.SnapshotRepo, deps.DayPolicy)
	}

	if cfg.LinkCheckEnabled && deps.LinkCheckService != nil {
		tm.linkCheckTask = NewLinkCheckTask(deps.LinkCheckService)
	}

	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() {
	log.Println("[TaskManager] 正在启动后台任务...")

	if tm.snapshotTask != nil {
		tm.snapshotTask.Start()
	}
	if tm.linkCheckTask != nil {
		tm.linkCheckTask.Start()
	}

	log.Println("[TaskManager] 后台任务已全部启动")
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	log.Println("[TaskManager] 正在停止后台任务...")

	if tm.snapshotTask != nil {
		tm.snapshotTask.Stop()
	}
	if tm.linkCheckTask != nil {
		tm.linkCheckTask.Stop()
	}

	log.Println("[TaskManager] 后台任务已全部停止")
}

// ==================== 手动触发接口 ====================

// TriggerSnapshot 触发指定日期的快照
func (tm *TaskManager) TriggerSnapshot(day string) error {
	if tm.snapshotTask == nil {
		return ErrTaskDisabled
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := tm.snapshotTask.SnapshotDay(ctx, day); err != nil {
			log.Printf("[TaskManager] 手动快照失败: %v", err)
		}
	}()
	return nil
}

// TriggerLinkCheck 触发链接巡检
func (tm *TaskManager) TriggerLinkCheck() {
	if tm.linkCheckTask != nil {
		tm.linkCheckTask.CheckNow()
	}
}

// Status 获取任务状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"snapshot":  tm.snapshotTask != nil,
		"linkcheck": tm.linkCheckTask != nil,
	}
}

// ==================== 错误定义 ====================

type TaskError string

func (e TaskError) Error() string { return string(e) }

const (
	ErrTaskDisabled TaskError = "task is disabled"
)
