// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

import (
	"time"

	"github.com/google/uuid"
)

// InboundMessageTask 代表一条归一化后的入站 webhook 消息。
type InboundMessageTask struct {
	ID         string    `json:"id"`
	Channel    string    `json:"channel"`
	SenderID   string    `json:"sender_id"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}

// NewInboundMessageTask 生成带唯一 ID 和接收时间的任务。
func NewInboundMessageTask(channel, senderID, text string) InboundMessageTask {
	return InboundMessageTask{
		ID:         uuid.NewString(),
		Channel:    channel,
		SenderID:   senderID,
		Text:       text,
		ReceivedAt: time.Now(),
	}
}
