// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"

	"bebo-bot-go/internal/config"
	"bebo-bot-go/internal/model"
	"bebo-bot-go/pkg/llm"
	"bebo-bot-go/pkg/log"
)

// 配置缺省时的兜底人设与道歉文案。
const (
	defaultPersona = "Bạn là Bé Bơ, trợ lý thông minh và thân thiện của ShipperRachGia.vn. " +
		"Luôn trả lời hoàn toàn bằng tiếng Việt, xưng hô với người dùng là anh/chị, " +
		"bắt đầu bằng lời chào thân thiện kèm biểu tượng cảm xúc. " +
		"Khi trả lời về quán ăn, món ăn hay dịch vụ, chỉ dựa vào thông tin trong ngữ cảnh được cung cấp; " +
		"nếu không có thông tin, hướng dẫn anh/chị truy cập https://shipperrachgia.vn/. " +
		"Giá cả luôn dùng đơn vị VND. Kết thúc bằng một câu thân thiện như " +
		"\"Bé Bơ rất vui được hỗ trợ anh/chị!\"."

	defaultApology = "Xin lỗi anh/chị, Bé Bơ đang gặp chút trục trặc nên chưa trả lời được ạ. " +
		"Anh/chị thử lại sau giúp em nhé! 🙏"
)

// ReplyService 定义了机器人回复生成的接口。
// 所有方法都保证返回字符串、绝不向外抛错：上游失败时返回固定道歉文案。
type ReplyService interface {
	Generate(ctx context.Context, text, contextText string) string
	GenerateWithModel(ctx context.Context, modelName, text, contextText string) string
	GenerateWithHistory(ctx context.Context, history []model.MemoryTurn, text, contextText string) string
}

type replyService struct {
	llmClient llm.Client
}

// NewReplyService 创建一个新的 ReplyService 实例。
func NewReplyService(llmClient llm.Client) ReplyService {
	return &replyService{llmClient: llmClient}
}

// Generate 用默认模型生成一条回复。
func (s *replyService) Generate(ctx context.Context, text, contextText string) string {
	return s.generate(ctx, "", nil, text, contextText)
}

// GenerateWithModel 用指定模型生成一条回复，modelName 为空时等同 Generate。
func (s *replyService) GenerateWithModel(ctx context.Context, modelName, text, contextText string) string {
	return s.generate(ctx, modelName, nil, text, contextText)
}

// GenerateWithHistory 在消息列表中携带最近几轮对话记忆后生成回复。
func (s *replyService) GenerateWithHistory(ctx context.Context, history []model.MemoryTurn, text, contextText string) string {
	return s.generate(ctx, "", history, text, contextText)
}

func (s *replyService) generate(ctx context.Context, modelName string, history []model.MemoryTurn, text, contextText string) string {
	messages := composeReplyMessages(history, text, contextText)

	reply, err := s.llmClient.ChatWithModel(ctx, modelName, messages, nil)
	if err != nil {
		// 上游失败绝不外传，退化为道歉文案
		log.Errorf("reply generation failed, falling back to apology: %v", err)
		return apologyText()
	}
	if reply == "" {
		return apologyText()
	}
	return reply
}

// composeReplyMessages 组装发给模型的消息列表：
// 固定人设 system 消息，可选的上下文 system 消息（原样携带），
// 最近的对话记忆，最后是用户输入。
func composeReplyMessages(history []model.MemoryTurn, text, contextText string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+3)
	messages = append(messages, llm.Message{Role: "system", Content: personaText()})
	if contextText != "" {
		messages = append(messages, llm.Message{Role: "system", Content: contextText})
	}
	for _, turn := range history {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, llm.Message{Role: "user", Content: text})
	return messages
}

func personaText() string {
	if p := config.Conf.LLM.Prompt.Persona; p != "" {
		return p
	}
	return defaultPersona
}

func apologyText() string {
	if a := config.Conf.LLM.Prompt.Apology; a != "" {
		return a
	}
	return defaultApology
}
