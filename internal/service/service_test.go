package service

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
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

// stubReplyService 返回固定回复并记录最近一次调用的入参。
type stubReplyService struct {
	reply      string
	gotModel   string
	gotText    string
	gotContext string
	gotHistory []model.MemoryTurn
}

func (s *stubReplyService) Generate(ctx context.Context, text, contextText string) string {
	return s.GenerateWithModel(ctx, "", text, contextText)
}

func (s *stubReplyService) GenerateWithModel(ctx context.Context, modelName, text, contextText string) string {
	s.gotModel = modelName
	s.gotText = text
	s.gotContext = contextText
	if s.reply == "" {
		return "Dạ, Bé Bơ nghe nè!"
	}
	return s.reply
}

func (s *stubReplyService) GenerateWithHistory(ctx context.Context, history []model.MemoryTurn, text, contextText string) string {
	s.gotHistory = history
	return s.GenerateWithModel(ctx, "", text, contextText)
}

// stubEnrichment 返回固定的检索上下文，空串表示不增强。
type stubEnrichment struct {
	context string
	gotText string
}

func (s *stubEnrichment) ShouldEnrich(text string) bool { return s.context != "" }

func (s *stubEnrichment) Enrich(ctx context.Context, text string) string {
	s.gotText = text
	return s.context
}
