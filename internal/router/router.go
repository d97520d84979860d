package router

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"feedback_dev_v1_202608/internal/controller"
	"feedback_dev_v1_202608/internal/middleware"

	_ "feedback_dev_v1_202608/docs"
)

// Controllers 控制器集合
type Controllers struct {
	User      *controller.UserController
	Shop      *controller.ShopController
	Feedback  *controller.FeedbackController
	Analytics *controller.AnalyticsController
	Dashboard *controller.DashboardController
	Task      *controller.TaskController
}

// 挂件同一来源的最小提交间隔，挡瞬时连击，正式配额在数据库按日判定
const widgetSubmitCooldown = 3 * time.Second

// SetupRouter 注册所有路由
func SetupRouter(ctls *Controllers) *gin.Engine {
	r := gin.Default()

	// 1. Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 2. API 路由组
	api := r.Group("/api")
	{
		// auth 鉴权组
		auth := api.Group("/auth")
		{
			auth.POST("/register", ctls.User.Register)
			auth.POST("/login", ctls.User.Login)
			auth.POST("/refresh", ctls.User.RefreshToken)
			auth.GET("/profile", middleware.JWTAuth(), ctls.User.GetProfile)
		}

		// feedback 挂件提交组（公开，无鉴权，顾客侧调用）
		feedback := api.Group("/feedback")
		feedback.Use(middleware.WidgetCORS())
		{
			// GET /api/feedback/widget/:token 挂件渲染配置
			feedback.GET("/widget/:token", ctls.Feedback.WidgetConfig)
			// POST /api/feedback/:shopId
			feedback.POST("/:shopId",
				middleware.WidgetFloodGuard(widgetSubmitCooldown),
				ctls.Feedback.Submit)
		}

		// shop 店铺管理（店主）
		shops := api.Group("/shops")
		shops.Use(middleware.JWTAuth(), middleware.AuditContext())
		{
			shops.GET("", ctls.Shop.GetMyShops)
			shops.POST("", ctls.Shop.CreateShop)
			shops.GET("/:shopId", ctls.Shop.GetShop)
			shops.POST("/:shopId/parameters", ctls.Shop.AddParameter)
			shops.GET("/:shopId/feedback", ctls.Shop.GetShopFeedback)
			shops.PUT("/:shopId/settings", ctls.Shop.UpdateSettings)
			shops.DELETE("/:shopId", ctls.Shop.DeleteShop)
		}

		// dashboard 店主看板
		dashboard := api.Group("/dashboard")
		dashboard.Use(middleware.JWTAuth())
		{
			dashboard.GET("/shop/:shopId", ctls.Dashboard.GetShopStats)
			dashboard.POST("/batch", ctls.Dashboard.GetBatchStats)
		}

		// analytics 统计
		analytics := api.Group("/analytics")
		{
			analytics.GET("/coupon/:shopId", middleware.JWTAuth(), ctls.Analytics.GetCouponStats)
			// 全局统计仅限管理员角色
			analytics.GET("/global", middleware.JWTAuth(), middleware.RequireRole("admin"), ctls.Analytics.GetGlobalAnalytics)
		}

		// admin 后台任务运维（管理员）
		adminTasks := api.Group("/admin/tasks")
		adminTasks.Use(middleware.JWTAuth(), middleware.RequireRole("admin"))
		{
			adminTasks.GET("/status", ctls.Task.GetStatus)
			adminTasks.POST("/snapshot", ctls.Task.TriggerSnapshot)
			adminTasks.POST("/linkcheck", ctls.Task.TriggerLinkCheck)
		}
	}

	return r
}
