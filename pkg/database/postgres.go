package database

import (
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ==================== 连接配置 ====================

// Config 数据库连接配置
type Config struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	// LogSQL 为 true 时打印全部 SQL，排查挂件提交链路时用
	LogSQL bool
}

// DefaultConfig 默认连接配置
func DefaultConfig(dsn string) *Config {
	return &Config{
		DSN:             dsn,
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: time.Hour,
	}
}

// normalize 兜底零值，避免连接池被意外配成 0
func (c *Config) normalize() {
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 10
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 100
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = time.Hour
	}
}

// ==================== 连接初始化 ====================

// InitDB 连接数据库并迁移表结构，失败直接退出
// models 为需要 AutoMigrate 的结构体指针；
// 分区表不在此列，由 PartitionManager 用 DDL 单独建
func InitDB(cfg *Config, models ...interface{}) *gorm.DB {
	cfg.normalize()

	logLevel := logger.Warn
	if cfg.LogSQL {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("获取底层连接池失败: %v", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	log.Printf("数据库已连接 (连接池 空闲 %d / 上限 %d)", cfg.MaxIdleConns, cfg.MaxOpenConns)

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			log.Fatalf("表结构迁移失败: %v", err)
		}
	}

	return db
}
