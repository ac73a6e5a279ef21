package model

// LogEntry 是单轮（非持久化）聊天路径的一条日志，
// 只存最近 1000 条，落在 data/logs.json 里供后台查看。
type LogEntry struct {
	From    string    `json:"from"` // "user" 或 "bot"
	Content string    `json:"content"`
	Time    LocalTime `json:"time"`
}
