// Package pipeline 驱动一条归一化入站消息走完完整的处理链路。
package pipeline

import (
	"context"
	"fmt"
	"time"

	"bebo-bot-go/internal/channel"
	"bebo-bot-go/internal/model"
	"bebo-bot-go/internal/repository"
	"bebo-bot-go/internal/service"
	"bebo-bot-go/pkg/log"
	"bebo-bot-go/pkg/tasks"
)

// Processor 处理一条入站 webhook 消息：先做检索增强和短期记忆加载，
// 再生成回复并回发渠道，最后追加记忆与日志。
// 它同时实现 kafka.TaskProcessor，可以被同步调用也可以挂在消费者后面。
type Processor struct {
	adapters     map[string]channel.Adapter
	replyService service.ReplyService
	enrichment   service.EnrichmentService
	memoryRepo   repository.MemoryRepository
	chatLogRepo  repository.ChatLogRepository
}

// NewProcessor 创建消息处理器。
func NewProcessor(adapters map[string]channel.Adapter, replyService service.ReplyService, enrichment service.EnrichmentService, memoryRepo repository.MemoryRepository, chatLogRepo repository.ChatLogRepository) *Processor {
	return &Processor{
		adapters:     adapters,
		replyService: replyService,
		enrichment:   enrichment,
		memoryRepo:   memoryRepo,
		chatLogRepo:  chatLogRepo,
	}
}

// Process 跑完一条消息的处理链。只有渠道回发失败会返回错误
// （让队列侧重试）；记忆和日志的失败只记录，不影响结果。
func (p *Processor) Process(ctx context.Context, task tasks.InboundMessageTask) error {
	adapter, ok := p.adapters[task.Channel]
	if !ok {
		return fmt.Errorf("no adapter registered for channel %q", task.Channel)
	}

	// 1. 餐饮检索（失败已在内部吸收为空上下文）
	contextText := p.enrichment.Enrich(ctx, task.Text)

	// 2. 加载短期记忆，挂了就当没有历史
	history, err := p.memoryRepo.GetHistory(ctx, task.Channel, task.SenderID)
	if err != nil {
		log.Warnf("failed to load memory for %s/%s: %v", task.Channel, task.SenderID, err)
		history = nil
	}

	// 3. 生成回复（绝不失败）
	reply := p.replyService.GenerateWithHistory(ctx, history, task.Text, contextText)

	// 4. 回发到渠道；失败向上抛，让调用方决定重试或放弃
	if err := adapter.Send(ctx, task.SenderID, reply); err != nil {
		return fmt.Errorf("failed to send reply via %s: %w", task.Channel, err)
	}

	// 5. 回发成功后才追加记忆，重试不会造成重复记录
	now := time.Now()
	if err := p.memoryRepo.AppendTurns(ctx, task.Channel, task.SenderID,
		model.MemoryTurn{Role: "user", Content: task.Text, Timestamp: task.ReceivedAt},
		model.MemoryTurn{Role: "assistant", Content: reply, Timestamp: now},
	); err != nil {
		log.Warnf("failed to append memory for %s/%s: %v", task.Channel, task.SenderID, err)
	}

	p.appendLog(model.SenderUser, task.Text, task.ReceivedAt)
	p.appendLog(model.SenderBot, reply, now)

	return nil
}

func (p *Processor) appendLog(from, content string, at time.Time) {
	entry := model.LogEntry{
		From:    from,
		Content: content,
		Time:    model.LocalTime(at),
	}
	if err := p.chatLogRepo.Append(entry); err != nil {
		log.Warnf("failed to append chat log entry: %v", err)
	}
}
