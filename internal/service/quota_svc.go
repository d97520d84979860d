package service

import (
	"errors"
	"time"
)

// ==================== 配额判定 ====================

// ErrQuotaExceeded 当日提交次数已达上限
var ErrQuotaExceeded = errors.New("今日已提交过反馈，请明天再试")

// DayPolicy 日界策略
// 配额按服务端 UTC 自然日统计，不按客户端时区；
// 作为显式依赖注入，方便测试时固定时钟
type DayPolicy struct {
	Location *time.Location
}

// DefaultDayPolicy 默认 UTC 日界
func DefaultDayPolicy() DayPolicy {
	return DayPolicy{Location: time.UTC}
}

// DayWindow 返回 now 所在自然日的区间 [00:00:00, 23:59:59]
func (p DayPolicy) DayWindow(now time.Time) (from, to time.Time) {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	t := now.In(loc)
	from = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	to = time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, loc)
	return from, to
}

// DayKey 返回 now 所在自然日的 YYYY-MM-DD 键
func (p DayPolicy) DayKey(now time.Time) string {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format("2006-01-02")
}

// ParseDayKey 解析 YYYY-MM-DD 键为该自然日的起点，与 DayKey 互逆
func (p DayPolicy) ParseDayKey(day string) (time.Time, error) {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation("2006-01-02", day, loc)
}

// CheckQuota 判定当日是否还允许提交
// maxPerDay <= 0 时按默认上限 1 处理；纯判定，不做任何 I/O
// 注意：计数与插入之间没有事务保证，同一瞬间的并发提交可能都通过检查，
// 配额是软上限（低风险场景可接受）
func (p DayPolicy) CheckQuota(maxPerDay int, todayCount int64) error {
	if maxPerDay <= 0 {
		maxPerDay = 1
	}
	if todayCount >= int64(maxPerDay) {
		return ErrQuotaExceeded
	}
	return nil
}
