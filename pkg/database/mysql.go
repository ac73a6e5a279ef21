package database

import (
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"bebo-bot-go/internal/model"
	"bebo-bot-go/pkg/log"
)

var DB *gorm.DB

// InitMySQL 初始化 MySQL 数据库连接
func InitMySQL(dsn string) {
	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		// 可以在这里添加 GORM 的配置
	})
	if err != nil {
		log.Fatal("failed to connect database", err)
	}

	// 配置连接池
	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatal("failed to get sql.DB", err)
	}

	sqlDB.SetMaxIdleConns(10)           // 设置空闲连接池中连接的最大数量
	sqlDB.SetMaxOpenConns(100)          // 设置打开数据库连接的最大数量
	sqlDB.SetConnMaxLifetime(time.Hour) // 设置了连接可复用的最大时间

	// users 表由外部系统维护，这里只迁移本服务拥有的两张表
	if err := DB.AutoMigrate(&model.ChatSession{}, &model.ChatMessage{}); err != nil {
		log.Fatal("failed to migrate chat tables", err)
	}

	log.Info("MySQL database connected successfully")
}
