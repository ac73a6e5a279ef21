package model

import "time"

// MemoryTurn 代表存储在 Redis 中的一条 webhook 短期记忆。
// webhook 渠道没有持久会话，靠它维持最近几轮的上下文。
type MemoryTurn struct {
	Role      string    `json:"role"` // "user" 或 "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
