// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"bebo-bot-go/internal/model"
)

// MemoryRepository 定义了 webhook 渠道短期对话记忆的操作接口。
// 渠道消息没有持久会话，记忆按 {channel, senderID} 维度存在 Redis。
type MemoryRepository interface {
	GetHistory(ctx context.Context, channel, senderID string) ([]model.MemoryTurn, error)
	AppendTurns(ctx context.Context, channel, senderID string, turns ...model.MemoryTurn) error
}

type redisMemoryRepository struct {
	redisClient *redis.Client
	maxTurns    int
	ttl         time.Duration
}

// NewMemoryRepository 创建一个新的 MemoryRepository 实例。
// maxTurns 是保留的问答轮数，一轮等于用户和机器人各一条。
func NewMemoryRepository(redisClient *redis.Client, maxTurns, ttlHours int) MemoryRepository {
	if maxTurns <= 0 {
		maxTurns = 5
	}
	if ttlHours <= 0 {
		ttlHours = 24
	}
	return &redisMemoryRepository{
		redisClient: redisClient,
		maxTurns:    maxTurns,
		ttl:         time.Duration(ttlHours) * time.Hour,
	}
}

func memoryKey(channel, senderID string) string {
	return fmt.Sprintf("memory:%s:%s", channel, senderID)
}

// GetHistory 从 Redis 获取最近的对话记忆。
func (r *redisMemoryRepository) GetHistory(ctx context.Context, channel, senderID string) ([]model.MemoryTurn, error) {
	jsonData, err := r.redisClient.Get(ctx, memoryKey(channel, senderID)).Result()
	if err == redis.Nil {
		return []model.MemoryTurn{}, nil // No history yet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get memory history: %w", err)
	}
	var turns []model.MemoryTurn
	if err := json.Unmarshal([]byte(jsonData), &turns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal memory history: %w", err)
	}
	return turns, nil
}

// AppendTurns 追加记忆并裁剪到保留窗口，同时刷新过期时间。
func (r *redisMemoryRepository) AppendTurns(ctx context.Context, channel, senderID string, turns ...model.MemoryTurn) error {
	history, err := r.GetHistory(ctx, channel, senderID)
	if err != nil {
		return err
	}
	history = append(history, turns...)

	// 一轮两条，超出窗口的最早记录丢弃
	max := r.maxTurns * 2
	if len(history) > max {
		history = history[len(history)-max:]
	}

	jsonData, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal memory history: %w", err)
	}
	if err := r.redisClient.Set(ctx, memoryKey(channel, senderID), jsonData, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set memory history: %w", err)
	}
	return nil
}
