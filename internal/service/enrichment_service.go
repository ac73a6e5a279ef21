package service

import (
	"context"
	"strings"

	"bebo-bot-go/internal/config"
	"bebo-bot-go/pkg/log"
	"bebo-bot-go/pkg/rag"
)

// 配置未给出关键词时的缺省餐饮关键词。
var defaultFoodKeywords = []string{
	"ăn", "món", "quán", "nhà hàng", "thực đơn", "menu", "đói", "đặt món",
}

// EnrichmentService 定义了餐饮检索增强的接口。
// 只有用户文本命中关键词时才调用检索服务；检索失败一律吸收为空上下文。
type EnrichmentService interface {
	ShouldEnrich(text string) bool
	Enrich(ctx context.Context, text string) string
}

type enrichmentService struct {
	ragClient rag.Client
}

// NewEnrichmentService 创建一个新的 EnrichmentService 实例。
// ragClient 为 nil 时该能力视为缺席，Enrich 永远返回空串。
func NewEnrichmentService(ragClient rag.Client) EnrichmentService {
	return &enrichmentService{ragClient: ragClient}
}

// ShouldEnrich 判断文本是否像一个餐饮类问题。
func (s *enrichmentService) ShouldEnrich(text string) bool {
	if s.ragClient == nil {
		return false
	}
	lowered := strings.ToLower(text)
	for _, kw := range foodKeywords() {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// Enrich 调用检索服务并格式化结果；未命中关键词或调用失败时返回空串。
func (s *enrichmentService) Enrich(ctx context.Context, text string) string {
	if !s.ShouldEnrich(text) {
		return ""
	}

	result, err := s.ragClient.Query(ctx, text)
	if err != nil {
		// 检索挂了不能影响回复，按无上下文继续
		log.Warnf("restaurant enrichment failed, continuing without context: %v", err)
		return ""
	}
	return result.FormatContext()
}

func foodKeywords() []string {
	if kws := config.Conf.RAG.Keywords; len(kws) > 0 {
		return kws
	}
	return defaultFoodKeywords
}
