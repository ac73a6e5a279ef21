package model

import "time"

// EsChatMessage 是 chat_messages 在 Elasticsearch 中的索引文档。
type EsChatMessage struct {
	MessageID uint      `json:"message_id"`
	SessionID uint      `json:"session_id"`
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	SentAt    time.Time `json:"sent_at"`
}
