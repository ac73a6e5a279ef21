package service

import (
	"context"
	"time"

	"bebo-bot-go/internal/model"
	"bebo-bot-go/internal/repository"
	"bebo-bot-go/pkg/log"
)

// ConversationService 处理单轮、非持久化的聊天路径：
// 可选的图片识别，可选的餐饮检索，生成回复，可选的语音合成，
// 每一轮的两句话都进环形日志供后台查看。
type ConversationService interface {
	HandleTurn(ctx context.Context, text, imageDataURI string) (reply, voiceURL string)
}

type conversationService struct {
	replyService ReplyService
	enrichment   EnrichmentService
	media        MediaService
	chatLogRepo  repository.ChatLogRepository
}

// NewConversationService 创建一个新的 ConversationService 实例。
func NewConversationService(replyService ReplyService, enrichment EnrichmentService, media MediaService, chatLogRepo repository.ChatLogRepository) ConversationService {
	return &conversationService{
		replyService: replyService,
		enrichment:   enrichment,
		media:        media,
		chatLogRepo:  chatLogRepo,
	}
}

// HandleTurn 跑完一轮问答。这一路径上的所有外部失败都被吸收：
// 识图失败得到固定文案，检索失败没有上下文，合成失败没有语音，
// 调用方总能拿到一条可展示的回复。
func (s *conversationService) HandleTurn(ctx context.Context, text, imageDataURI string) (string, string) {
	s.appendLog(model.SenderUser, text)

	// 1. 图片描述与检索结果都并入上下文
	var contextText string
	if imageDataURI != "" {
		contextText = "Mô tả ảnh khách gửi: " + s.media.AnalyzeImage(ctx, imageDataURI)
	}
	if ragContext := s.enrichment.Enrich(ctx, text); ragContext != "" {
		if contextText != "" {
			contextText += "\n\n"
		}
		contextText += ragContext
	}

	// 2. 生成回复
	reply := s.replyService.Generate(ctx, text, contextText)
	s.appendLog(model.SenderBot, reply)

	// 3. 语音是锦上添花，失败只记日志
	var voiceURL string
	if s.media.HasTTS() {
		url, err := s.media.SynthesizeSpeech(ctx, reply, "reply")
		if err != nil {
			log.Warnf("speech synthesis failed, replying without voice: %v", err)
		} else {
			voiceURL = url
		}
	}

	return reply, voiceURL
}

func (s *conversationService) appendLog(from, content string) {
	entry := model.LogEntry{
		From:    from,
		Content: content,
		Time:    model.LocalTime(time.Now()),
	}
	if err := s.chatLogRepo.Append(entry); err != nil {
		log.Warnf("failed to append chat log entry: %v", err)
	}
}
