package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ==================== 挂件 CORS ====================

// WidgetCORS 挂件跨域中间件
// 挂件嵌在顾客店铺的站点里，提交接口必须放开跨域；
// 店铺级 Origin 白名单在 controller 里按店铺配置校验
func WidgetCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			origin = "*"
		}
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
