package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"feedback_dev_v1_202608/internal/controller"
	"feedback_dev_v1_202608/internal/middleware"
	"feedback_dev_v1_202608/internal/model"
	"feedback_dev_v1_202608/internal/repository"
	"feedback_dev_v1_202608/internal/router"
	"feedback_dev_v1_202608/internal/service"
	"feedback_dev_v1_202608/internal/task"
	"feedback_dev_v1_202608/pkg/database"
)

// @title Feedback Widget API
// @version 1.0
// @description 店铺反馈挂件后端 API
// @host localhost:8080
// @BasePath /
func main() {
	// 0. 加载环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
	}

	// 1. JWT 密钥
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg := middleware.DefaultJWTConfig()
		cfg.SecretKey = secret
		middleware.SetJWTConfig(cfg)
	}

	// 2. 初始化数据库
	db := initDatabase()

	// 3. 初始化依赖
	deps := initDependencies(db)

	// 4. 启动定时任务
	deps.Tasks.Start()
	defer deps.Tasks.Stop()

	// 5. 初始化路由
	r := router.SetupRouter(deps.Controllers)

	// 6. 启动服务
	startServer(r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *router.Controllers
	Tasks       *task.TaskManager
}

// Repositories 仓库集合
type Repositories struct {
	User     repository.UserRepository
	Shop     repository.ShopRepository
	Feedback repository.FeedbackRepository
	Snapshot repository.SnapshotRepository
}

// Services 服务集合
type Services struct {
	User      *service.UserService
	Shop      *service.ShopService
	Feedback  *service.FeedbackService
	Analytics *service.AnalyticsService
	LinkCheck *service.LinkCheckService
	DayPolicy service.DayPolicy
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	cfg := database.DefaultConfig(getEnv("DATABASE_DSN",
		"host=localhost user=postgres password=postgres dbname=feedback port=5432 sslmode=disable TimeZone=UTC"))
	cfg.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", cfg.MaxIdleConns)
	cfg.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", cfg.MaxOpenConns)
	cfg.LogSQL = getEnv("DB_LOG_SQL", "false") == "true"

	models := []interface{}{
		// Account
		&model.SysUser{},
		// Shop
		&model.Shop{}, &model.FeedbackParameter{},
		// Analytics
		&model.AnalyticsSnapshot{},
	}

	// 分区模式下 feedback 主表由 DDL 建成分区表，不能走 AutoMigrate，
	// 普通建表会挡掉后续所有 PARTITION OF 子分区
	partitionEnabled := getEnv("PARTITION_ENABLED", "false") == "true"
	if !partitionEnabled {
		models = append(models, &model.Feedback{})
	}

	db := database.InitDB(cfg, models...)

	if partitionEnabled {
		manager := database.NewPartitionManager(db, model.Feedback{}.TableName())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := manager.InitParentTable(ctx); err != nil {
			log.Fatalf("分区主表初始化失败: %v", err)
		}

		database.NewPartitionTask(manager).Start()
	}

	return db
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		User:     repository.NewUserRepository(db),
		Shop:     repository.NewShopRepository(db),
		Feedback: repository.NewFeedbackRepository(db),
		Snapshot: repository.NewSnapshotRepository(db),
	}

	// -------- 业务服务 --------
	dayPolicy := service.DefaultDayPolicy()

	services := &Services{
		User:      service.NewUserService(repos.User),
		Shop:      service.NewShopService(repos.Shop),
		Feedback:  service.NewFeedbackService(repos.Shop, repos.Feedback, dayPolicy),
		Analytics: service.NewAnalyticsService(repos.Feedback, repos.Shop),
		LinkCheck: service.NewLinkCheckService(repos.Shop),
		DayPolicy: dayPolicy,
	}

	// -------- 后台任务 --------
	tasks := task.NewTaskManager(&task.TaskManagerDeps{
		FeedbackRepo:     repos.Feedback,
		SnapshotRepo:     repos.Snapshot,
		DayPolicy:        services.DayPolicy,
		LinkCheckService: services.LinkCheck,
	}, nil)

	// -------- Controller 层 --------
	controllers := &router.Controllers{
		User:      controller.NewUserController(services.User),
		Shop:      controller.NewShopController(services.Shop, services.Feedback),
		Feedback:  controller.NewFeedbackController(services.Feedback),
		Analytics: controller.NewAnalyticsController(services.Analytics),
		Dashboard: controller.NewDashboardController(services.Analytics),
		Task:      controller.NewTaskController(tasks),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
		Tasks:       tasks,
	}
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
