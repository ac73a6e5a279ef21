package service

import (
	"context"

	"bebo-bot-go/internal/config"
	"bebo-bot-go/internal/model"
	"bebo-bot-go/internal/repository"
	"bebo-bot-go/pkg/apperr"
	"bebo-bot-go/pkg/es"
	"bebo-bot-go/pkg/log"
)

const searchResultLimit = 50

// AdminService 定义了后台管理的业务接口：
// 环形日志查看、实时日志订阅和聊天消息全文检索。
type AdminService interface {
	ListLogEntries() ([]model.LogEntry, error)
	SubscribeLog() (<-chan model.LogEntry, func())
	SearchMessages(ctx context.Context, query string, sessionID uint) ([]model.EsChatMessage, error)
}

type adminService struct {
	chatLogRepo repository.ChatLogRepository
	messageRepo repository.MessageRepository
	esCfg       config.ElasticsearchConfig
}

// NewAdminService 创建一个新的 AdminService 实例。
func NewAdminService(chatLogRepo repository.ChatLogRepository, messageRepo repository.MessageRepository, esCfg config.ElasticsearchConfig) AdminService {
	return &adminService{
		chatLogRepo: chatLogRepo,
		messageRepo: messageRepo,
		esCfg:       esCfg,
	}
}

// ListLogEntries 返回单轮聊天路径的全部日志（从旧到新）。
func (s *adminService) ListLogEntries() ([]model.LogEntry, error) {
	entries, err := s.chatLogRepo.List()
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to read chat log", err)
	}
	return entries, nil
}

// SubscribeLog 订阅后续追加的日志条目，返回的取消函数必须被调用。
func (s *adminService) SubscribeLog() (<-chan model.LogEntry, func()) {
	return s.chatLogRepo.Subscribe()
}

// SearchMessages 检索持久化的聊天消息。
// 配置了 Elasticsearch 时走全文检索，否则退化为 MySQL LIKE。
func (s *adminService) SearchMessages(ctx context.Context, query string, sessionID uint) ([]model.EsChatMessage, error) {
	if s.esCfg.Enabled && es.ESClient != nil {
		results, err := es.SearchMessages(ctx, s.esCfg.IndexName, query, sessionID, searchResultLimit)
		if err != nil {
			// 检索引擎临时不可用时退回数据库，查询不至于整个失败
			log.Warnf("elasticsearch search failed, falling back to LIKE: %v", err)
		} else {
			return results, nil
		}
	}

	messages, err := s.messageRepo.SearchLike(query, sessionID, searchResultLimit)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to search messages", err)
	}

	results := make([]model.EsChatMessage, 0, len(messages))
	for _, m := range messages {
		results = append(results, model.EsChatMessage{
			MessageID: m.ID,
			SessionID: m.SessionID,
			Sender:    m.Sender,
			Message:   m.Message,
			SentAt:    m.SentAt,
		})
	}
	return results, nil
}
