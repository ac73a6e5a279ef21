package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"bebo-bot-go/internal/config"
	"bebo-bot-go/internal/model"
	"bebo-bot-go/internal/repository"
	"bebo-bot-go/pkg/apperr"
	"bebo-bot-go/pkg/es"
	"bebo-bot-go/pkg/log"
)

// SendResult 是一次 sendMessage 的结果。
// Degraded 为 true 表示用户消息已存储、但机器人回复这条腿失败了。
type SendResult struct {
	Stored   *model.ChatMessage
	Reply    *model.ChatMessage
	Degraded bool
}

// ChatService 定义了持久化多轮聊天路径的业务接口。
type ChatService interface {
	SendMessage(ctx context.Context, sessionID uint, sender, text string, metadata datatypes.JSON) (*SendResult, error)
	ListMessages(sessionID uint) ([]model.ChatMessage, error)
}

type chatService struct {
	sessionRepo  repository.SessionRepository
	messageRepo  repository.MessageRepository
	replyService ReplyService
	enrichment   EnrichmentService
	esCfg        config.ElasticsearchConfig
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(sessionRepo repository.SessionRepository, messageRepo repository.MessageRepository, replyService ReplyService, enrichment EnrichmentService, esCfg config.ElasticsearchConfig) ChatService {
	return &chatService{
		sessionRepo:  sessionRepo,
		messageRepo:  messageRepo,
		replyService: replyService,
		enrichment:   enrichment,
		esCfg:        esCfg,
	}
}

// SendMessage 存储一条消息；发送方是用户时同步生成并存储机器人回复。
// 同一次调用里用户行先落库、机器人行后落库，时间戳不会倒挂。
func (s *chatService) SendMessage(ctx context.Context, sessionID uint, sender, text string, metadata datatypes.JSON) (*SendResult, error) {
	if sender == "" {
		sender = model.SenderUser
	}
	if sender != model.SenderUser && sender != model.SenderBot {
		return nil, apperr.New(apperr.CodeInvalidArgument, "sender must be user or bot")
	}

	// 1. 会话必须存在
	session, err := s.sessionRepo.FindByID(sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.CodeNotFound, fmt.Sprintf("session %d not found", sessionID))
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to load session", err)
	}

	// 2. 先落用户（或显式 bot）消息
	stored := &model.ChatMessage{
		SessionID: sessionID,
		Sender:    sender,
		Message:   text,
		SentAt:    time.Now(),
		Metadata:  metadata,
	}
	if err := s.messageRepo.Create(stored); err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to store message", err)
	}
	s.indexAsync(stored)

	if sender != model.SenderUser {
		return &SendResult{Stored: stored}, nil
	}

	// 3. 组装上下文：会话自带的 context 在前，餐饮检索结果在后
	var parts []string
	if session.Context != nil && *session.Context != "" {
		parts = append(parts, *session.Context)
	}
	if ragContext := s.enrichment.Enrich(ctx, text); ragContext != "" {
		parts = append(parts, ragContext)
	}
	contextText := strings.Join(parts, "\n\n")

	// 4. 生成回复（绝不失败，上游挂了会得到道歉文案）并落库
	modelName := ""
	if session.BotModel != nil {
		modelName = *session.BotModel
	}
	replyText := s.replyService.GenerateWithModel(ctx, modelName, text, contextText)

	reply := &model.ChatMessage{
		SessionID: sessionID,
		Sender:    model.SenderBot,
		Message:   replyText,
		SentAt:    time.Now(),
	}
	if err := s.messageRepo.Create(reply); err != nil {
		// 用户消息已经存好了，这一步失败只降级，不让整个调用失败
		log.Errorf("failed to store bot reply for session %d: %v", sessionID, err)
		return &SendResult{Stored: stored, Degraded: true}, nil
	}
	s.indexAsync(reply)

	return &SendResult{Stored: stored, Reply: reply}, nil
}

// ListMessages 按时间升序返回会话的全部消息，未知会话得到空列表。
func (s *chatService) ListMessages(sessionID uint) ([]model.ChatMessage, error) {
	messages, err := s.messageRepo.FindBySession(sessionID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to list messages", err)
	}
	return messages, nil
}

// indexAsync 把消息异步写进 Elasticsearch，尽力而为。
func (s *chatService) indexAsync(msg *model.ChatMessage) {
	if !s.esCfg.Enabled || es.ESClient == nil {
		return
	}
	doc := model.EsChatMessage{
		MessageID: msg.ID,
		SessionID: msg.SessionID,
		Sender:    msg.Sender,
		Message:   msg.Message,
		SentAt:    msg.SentAt,
	}
	indexName := s.esCfg.IndexName
	go func() {
		if err := es.IndexMessage(context.Background(), indexName, doc); err != nil {
			log.Warnf("failed to index message %d: %v", doc.MessageID, err)
		}
	}()
}
