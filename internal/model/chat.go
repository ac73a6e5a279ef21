package model

import (
	"time"

	"gorm.io/datatypes"
)

// 消息发送方取值。
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// ChatSession 代表一条持久化的会话线程，归属于一个用户。
// 不声明外键关联：消息与会话的引用完整性由删除事务中的
// 先删消息、后删会话的显式顺序保证。
type ChatSession struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	StartedAt time.Time  `gorm:"not null" json:"started_at"`
	EndedAt   *time.Time `gorm:"default:null" json:"ended_at"`
	Context   *string    `gorm:"type:text" json:"context"`
	BotModel  *string    `gorm:"type:varchar(100)" json:"bot_model"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (ChatSession) TableName() string {
	return "chat_sessions"
}

// ChatMessage 代表会话中的一条消息，用户和机器人各占一行。
type ChatMessage struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID uint           `gorm:"index;not null" json:"session_id"`
	Sender    string         `gorm:"type:varchar(10);not null" json:"sender"` // "user" 或 "bot"
	Message   string         `gorm:"type:text;not null" json:"message"`
	SentAt    time.Time      `gorm:"not null" json:"sent_at"`
	Metadata  datatypes.JSON `gorm:"type:json" json:"metadata"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (ChatMessage) TableName() string {
	return "chat_messages"
}
