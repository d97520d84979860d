package database

import (
	"context"
	"embed"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
)

// 分区主表 DDL，主表必须先于所有分区创建
//
//go:embed partitions/*.sql
var partitionFS embed.FS

// ==================== 分区管理 ====================

// PartitionManager feedback 表按月分区管理器
// 反馈只增不改，按 created_at 月度分区，老数据整分区归档/清理
type PartitionManager struct {
	db        *gorm.DB
	tableName string
}

// NewPartitionManager 创建分区管理器
func NewPartitionManager(db *gorm.DB, tableName string) *PartitionManager {
	return &PartitionManager{db: db, tableName: tableName}
}

// InitParentTable 创建分区主表（如不存在）
// 主表由内嵌 DDL 建成 PARTITION BY RANGE，不走 AutoMigrate，
// 普通建表会让后续所有 CREATE TABLE ... PARTITION OF 失败
func (m *PartitionManager) InitParentTable(ctx context.Context) error {
	ddl, err := parentTableDDL(m.tableName)
	if err != nil {
		return err
	}

	for _, stmt := range strings.Split(ddl, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if err := m.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("创建分区主表 %s 失败: %w", m.tableName, err)
		}
	}

	log.Printf("[Partition] 分区主表 %s 就绪", m.tableName)
	return nil
}

// parentTableDDL 读取指定表的内嵌主表 DDL
func parentTableDDL(tableName string) (string, error) {
	ddl, err := partitionFS.ReadFile(fmt.Sprintf("partitions/%s.sql", tableName))
	if err != nil {
		return "", fmt.Errorf("表 %s 没有分区主表 DDL: %w", tableName, err)
	}
	return string(ddl), nil
}

// EnsureFuturePartitions 确保未来 N 个月的分区存在
func (m *PartitionManager) EnsureFuturePartitions(ctx context.Context, monthsAhead int) error {
	now := time.Now()
	for i := 0; i <= monthsAhead; i++ {
		targetMonth := now.AddDate(0, i, 0)
		if err := m.createPartitionIfNotExists(ctx, targetMonth); err != nil {
			log.Printf("[Partition] 创建 %s 分区失败: %v", m.tableName, err)
		}
	}
	return nil
}

// partitionFor 返回某月分区的名字与上下界（上界开区间）
func (m *PartitionManager) partitionFor(month time.Time) (name string, from, to time.Time) {
	from = time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	to = from.AddDate(0, 1, 0)
	name = fmt.Sprintf("%s_y%dm%02d", m.tableName, from.Year(), from.Month())
	return name, from, to
}

// createPartitionIfNotExists 创建分区（如不存在）
func (m *PartitionManager) createPartitionIfNotExists(ctx context.Context, month time.Time) error {
	partitionName, startDate, endDate := m.partitionFor(month)

	exists, err := m.partitionExists(ctx, partitionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	sql := fmt.Sprintf(
		`CREATE TABLE %s PARTITION OF %s FOR VALUES FROM ('%s') TO ('%s')`,
		partitionName, m.tableName,
		startDate.Format("2006-01-02"),
		endDate.Format("2006-01-02"),
	)

	if err := m.db.WithContext(ctx).Exec(sql).Error; err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return nil
		}
		return fmt.Errorf("创建分区 %s 失败: %w", partitionName, err)
	}

	log.Printf("[Partition] 创建分区 %s", partitionName)
	return nil
}

func (m *PartitionManager) partitionExists(ctx context.Context, partitionName string) (bool, error) {
	var count int64
	err := m.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM pg_tables
		WHERE schemaname = 'public' AND tablename = ?
	`, partitionName).Scan(&count).Error
	return count > 0, err
}

// ==================== 分区维护任务 ====================

// PartitionTask 分区维护任务
type PartitionTask struct {
	manager      *PartitionManager
	futureMonths int
	interval     time.Duration
	stopCh       chan struct{}
	wg           sync.WaitGroup
	running      bool
	mu           sync.Mutex
}

// NewPartitionTask 创建分区维护任务
func NewPartitionTask(manager *PartitionManager) *PartitionTask {
	return &PartitionTask{
		manager:      manager,
		futureMonths: 3,
		interval:     24 * time.Hour,
		stopCh:       make(chan struct{}),
	}
}

// Start 启动任务
func (t *PartitionTask) Start() {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	t.running = true
	t.mu.Unlock()

	t.wg.Add(1)
	go t.run()

	log.Printf("[PartitionTask] 已启动，间隔: %v, 未来分区: %d 月", t.interval, t.futureMonths)
}

// Stop 停止任务
func (t *PartitionTask) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	t.mu.Unlock()

	close(t.stopCh)
	t.wg.Wait()
	log.Println("[PartitionTask] 已停止")
}

func (t *PartitionTask) run() {
	defer t.wg.Done()

	// 启动时立即执行
	t.execute()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.execute()
		case <-t.stopCh:
			return
		}
	}
}

func (t *PartitionTask) execute() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := t.manager.EnsureFuturePartitions(ctx, t.futureMonths); err != nil {
		log.Printf("[PartitionTask] 创建分区失败: %v", err)
	}
}
