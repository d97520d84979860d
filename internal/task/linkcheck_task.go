package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"feedback_dev_v1_202608/internal/service"
)

// ==================== LinkCheckTask 评价链接巡检任务 ====================

// LinkCheckTask 周期巡检店铺评价链接可达性
type LinkCheckTask struct {
	linkCheckSvc *service.LinkCheckService
	cron         *cron.Cron
}

// NewLinkCheckTask 创建链接巡检任务
func NewLinkCheckTask(linkCheckSvc *service.LinkCheckService) *LinkCheckTask {
	return &LinkCheckTask{
		linkCheckSvc: linkCheckSvc,
		cron:         cron.New(cron.WithSeconds()),
	}
}

// Start 启动定时任务
func (t *LinkCheckTask) Start() {
	// 首次执行（延迟 1 分钟，等服务就绪）
	go func() {
		time.Sleep(time.Minute)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		log.Println("[LinkCheckTask] 执行首次链接巡检...")
		t.linkCheckSvc.CheckAll(ctx)
	}()

	// 每日 03:00 执行
	_, err := t.cron.AddFunc("0 0 3 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		t.linkCheckSvc.CheckAll(ctx)
	})
	if err != nil {
		log.Printf("[LinkCheckTask] 定时任务启动失败: %v", err)
		return
	}

	t.cron.Start()
	log.Println("[LinkCheckTask] 已启动 (每日 03:00)")
}

// Stop 停止任务
func (t *LinkCheckTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[LinkCheckTask] 已停止")
}

// CheckNow 立即巡检
func (t *LinkCheckTask) CheckNow() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		t.linkCheckSvc.CheckAll(ctx)
	}()
}
