package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== FloodGuard 挂件提交冷却 ====================

// FloodGuard 挂件提交冷却限流器
// 挡在数据库日配额之前的内存闸门，拦截同一来源的瞬时连击；
// 日配额才是正式规则，这里只是降噪
type FloodGuard struct {
	locks sync.Map // key -> *lockEntry
}

// lockEntry 锁条目
type lockEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// 全局限流器实例
var globalGuard = &FloodGuard{}

// GetFloodGuard 获取全局限流器
func GetFloodGuard() *FloodGuard {
	return globalGuard
}

// Check 检查是否允许执行
// key: 限流键，如 "widget:1.2.3.4:123"
// interval: 冷却间隔
func (g *FloodGuard) Check(key string, interval time.Duration) bool {
	actual, _ := g.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	if now.Sub(entry.lastTime) < interval {
		return false
	}

	// 更新最后执行时间
	entry.lastTime = now
	return true
}

// WidgetFloodGuard 挂件提交冷却中间件
// 按 (客户端IP, 店铺) 维度限制最小提交间隔
func WidgetFloodGuard(interval time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("widget:%s:%s", c.ClientIP(), c.Param("shopId"))
		if !globalGuard.Check(key, interval) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"message": "Too many requests, slow down.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
