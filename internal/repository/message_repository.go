package repository

import (
	"gorm.io/gorm"

	"bebo-bot-go/internal/model"
)

// MessageRepository 接口定义了聊天消息的持久化操作。
type MessageRepository interface {
	Create(message *model.ChatMessage) error
	FindBySession(sessionID uint) ([]model.ChatMessage, error)
	SearchLike(query string, sessionID uint, limit int) ([]model.ChatMessage, error)
	Count() (int64, error)
}

// messageRepository 是 MessageRepository 接口的 GORM 实现。
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建一个新的 MessageRepository 实例。
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create 在数据库中创建一条消息记录。
func (r *messageRepository) Create(message *model.ChatMessage) error {
	return r.db.Create(message).Error
}

// FindBySession 按发送时间升序返回一个会话的全部消息。
func (r *messageRepository) FindBySession(sessionID uint) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	err := r.db.Where("session_id = ?", sessionID).Order("sent_at ASC").Find(&messages).Error
	return messages, err
}

// SearchLike 用 LIKE 做消息内容的模糊检索，Elasticsearch 不可用时的兜底。
// sessionID 为 0 时不限定会话。
func (r *messageRepository) SearchLike(query string, sessionID uint, limit int) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	db := r.db.Where("message LIKE ?", "%"+query+"%")
	if sessionID != 0 {
		db = db.Where("session_id = ?", sessionID)
	}
	err := db.Order("sent_at DESC").Limit(limit).Find(&messages).Error
	return messages, err
}

// Count 返回消息总数。
func (r *messageRepository) Count() (int64, error) {
	var total int64
	err := r.db.Model(&model.ChatMessage{}).Count(&total).Error
	return total, err
}
