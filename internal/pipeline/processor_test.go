package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bebo-bot-go/internal/channel"
	"bebo-bot-go/internal/model"
	"bebo-bot-go/internal/repository"
	"bebo-bot-go/pkg/tasks"
)

type fakeAdapter struct {
	name         string
	sendErr      error
	sentTo       string
	sentText     string
	sendAttempts int
}

func (a *fakeAdapter) Name() string { return a.name }

func (a *fakeAdapter) Receive(payload []byte) ([]channel.InboundMessage, error) {
	return nil, nil
}

func (a *fakeAdapter) Send(ctx context.Context, recipientID, text string) error {
	a.sendAttempts++
	if a.sendErr != nil {
		return a.sendErr
	}
	a.sentTo = recipientID
	a.sentText = text
	return nil
}

type fakeMemoryRepo struct {
	history    []model.MemoryTurn
	historyErr error
	appendErr  error
	gotChannel string
	gotSender  string
	appended   []model.MemoryTurn
}

func (r *fakeMemoryRepo) GetHistory(ctx context.Context, channelName, senderID string) ([]model.MemoryTurn, error) {
	if r.historyErr != nil {
		return nil, r.historyErr
	}
	return r.history, nil
}

func (r *fakeMemoryRepo) AppendTurns(ctx context.Context, channelName, senderID string, turns ...model.MemoryTurn) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	r.gotChannel = channelName
	r.gotSender = senderID
	r.appended = append(r.appended, turns...)
	return nil
}

type fakeReplyService struct {
	reply      string
	gotText    string
	gotContext string
	gotHistory []model.MemoryTurn
}

func (s *fakeReplyService) Generate(ctx context.Context, text, contextText string) string {
	return s.GenerateWithHistory(ctx, nil, text, contextText)
}

func (s *fakeReplyService) GenerateWithModel(ctx context.Context, modelName, text, contextText string) string {
	return s.GenerateWithHistory(ctx, nil, text, contextText)
}

func (s *fakeReplyService) GenerateWithHistory(ctx context.Context, history []model.MemoryTurn, text, contextText string) string {
	s.gotHistory = history
	s.gotText = text
	s.gotContext = contextText
	return s.reply
}

type fakeEnrichment struct {
	context string
}

func (s *fakeEnrichment) ShouldEnrich(text string) bool { return s.context != "" }

func (s *fakeEnrichment) Enrich(ctx context.Context, text string) string { return s.context }

type processorFixture struct {
	processor *Processor
	adapter   *fakeAdapter
	memory    *fakeMemoryRepo
	reply     *fakeReplyService
	enrich    *fakeEnrichment
	logRepo   repository.ChatLogRepository
}

func newProcessorFixture(t *testing.T) *processorFixture {
	t.Helper()
	logRepo, err := repository.NewChatLogRepository(filepath.Join(t.TempDir(), "chatlog.json"), 100)
	require.NoError(t, err)

	adapter := &fakeAdapter{name: channel.NameZalo}
	memory := &fakeMemoryRepo{}
	reply := &fakeReplyService{reply: "Dạ Bé Bơ đây ạ!"}
	enrich := &fakeEnrichment{}

	return &processorFixture{
		processor: NewProcessor(map[string]channel.Adapter{channel.NameZalo: adapter}, reply, enrich, memory, logRepo),
		adapter:   adapter,
		memory:    memory,
		reply:     reply,
		enrich:    enrich,
		logRepo:   logRepo,
	}
}

func TestProcessor_ProcessSendsReplyAndRecordsTurn(t *testing.T) {
	f := newProcessorFixture(t)
	f.enrich.context = "Quán gợi ý: Quán A"

	task := tasks.NewInboundMessageTask(channel.NameZalo, "user-42", "quán nào ngon?")
	require.NoError(t, f.processor.Process(context.Background(), task))

	// 回复经由渠道适配器发出
	assert.Equal(t, "user-42", f.adapter.sentTo)
	assert.Equal(t, "Dạ Bé Bơ đây ạ!", f.adapter.sentText)
	assert.Equal(t, "quán nào ngon?", f.reply.gotText)
	assert.Equal(t, "Quán gợi ý: Quán A", f.reply.gotContext)

	// 记忆追加了一来一回两条
	require.Len(t, f.memory.appended, 2)
	assert.Equal(t, "user", f.memory.appended[0].Role)
	assert.Equal(t, "quán nào ngon?", f.memory.appended[0].Content)
	assert.Equal(t, "assistant", f.memory.appended[1].Role)
	assert.Equal(t, "Dạ Bé Bơ đây ạ!", f.memory.appended[1].Content)
	assert.Equal(t, channel.NameZalo, f.memory.gotChannel)
	assert.Equal(t, "user-42", f.memory.gotSender)

	// 环形日志同样记下两句话
	entries, err := f.logRepo.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.SenderUser, entries[0].From)
	assert.Equal(t, model.SenderBot, entries[1].From)
}

func TestProcessor_HistoryFlowsIntoReply(t *testing.T) {
	f := newProcessorFixture(t)
	f.memory.history = []model.MemoryTurn{
		{Role: "user", Content: "ship về Rạch Giá không?", Timestamp: time.Now().Add(-time.Minute)},
		{Role: "assistant", Content: "Dạ có ship nha!", Timestamp: time.Now().Add(-time.Minute)},
	}

	task := tasks.NewInboundMessageTask(channel.NameZalo, "user-42", "phí bao nhiêu?")
	require.NoError(t, f.processor.Process(context.Background(), task))

	require.Len(t, f.reply.gotHistory, 2)
	assert.Equal(t, "ship về Rạch Giá không?", f.reply.gotHistory[0].Content)
}

func TestProcessor_MemoryLoadFailureIsAbsorbed(t *testing.T) {
	f := newProcessorFixture(t)
	f.memory.historyErr = errors.New("redis down")

	task := tasks.NewInboundMessageTask(channel.NameZalo, "user-42", "xin chào")
	require.NoError(t, f.processor.Process(context.Background(), task))

	assert.Nil(t, f.reply.gotHistory)
	assert.Equal(t, "xin chào", f.adapter.sentText)
}

func TestProcessor_SendFailureReturnsErrorWithoutMemoryWrite(t *testing.T) {
	f := newProcessorFixture(t)
	sendErr := errors.New("gateway timeout")
	f.adapter.sendErr = sendErr

	task := tasks.NewInboundMessageTask(channel.NameZalo, "user-42", "xin chào")
	err := f.processor.Process(context.Background(), task)
	require.Error(t, err)
	assert.ErrorIs(t, err, sendErr)

	// 发送失败时不落记忆、不落日志，重试不会产生重复记录
	assert.Empty(t, f.memory.appended)
	entries, listErr := f.logRepo.List()
	require.NoError(t, listErr)
	assert.Empty(t, entries)
}

func TestProcessor_UnknownChannelFails(t *testing.T) {
	f := newProcessorFixture(t)

	task := tasks.NewInboundMessageTask("telegram", "user-42", "xin chào")
	err := f.processor.Process(context.Background(), task)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram")
	assert.Zero(t, f.adapter.sendAttempts)
}

func TestProcessor_MemoryAppendFailureDoesNotFailTurn(t *testing.T) {
	f := newProcessorFixture(t)
	f.memory.appendErr = errors.New("redis down")

	task := tasks.NewInboundMessageTask(channel.NameZalo, "user-42", "xin chào")
	require.NoError(t, f.processor.Process(context.Background(), task))

	// 回发成功就算成功，日志照常记录
	entries, err := f.logRepo.List()
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
