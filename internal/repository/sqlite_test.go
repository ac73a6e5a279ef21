package repository

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bebo-bot-go/internal/model"
)

// newTestDB 打开一个独立的内存 SQLite 库并建好所有表。
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.ChatSession{}, &model.ChatMessage{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return db
}

// seedUser 插入一个用户行，模拟外部系统维护的 users 表。
func seedUser(t *testing.T, db *gorm.DB, id uint, name string) {
	t.Helper()
	if err := db.Create(&model.User{ID: id, Name: name, Email: name + "@example.com"}).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
}
