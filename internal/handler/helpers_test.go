package handler

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"bebo-bot-go/internal/channel"
	"bebo-bot-go/internal/config"
	"bebo-bot-go/internal/model"
	"bebo-bot-go/internal/pipeline"
	"bebo-bot-go/internal/repository"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// resetConfig 把全局配置清零，测试结束后恢复原值。
func resetConfig(t *testing.T) {
	t.Helper()
	saved := config.Conf
	config.Conf = config.Config{}
	t.Cleanup(func() { config.Conf = saved })
}

func doRequest(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// recordingAdapter 只记录出站发送，入站解析交给真实适配器。
type recordingAdapter struct {
	name     string
	sendErr  error
	sentTo   []string
	sentText []string
}

func (a *recordingAdapter) Name() string { return a.name }

func (a *recordingAdapter) Receive(payload []byte) ([]channel.InboundMessage, error) {
	return nil, nil
}

func (a *recordingAdapter) Send(ctx context.Context, recipientID, text string) error {
	if a.sendErr != nil {
		return a.sendErr
	}
	a.sentTo = append(a.sentTo, recipientID)
	a.sentText = append(a.sentText, text)
	return nil
}

type stubReply struct{ reply string }

func (s *stubReply) Generate(ctx context.Context, text, contextText string) string {
	return s.reply
}

func (s *stubReply) GenerateWithModel(ctx context.Context, modelName, text, contextText string) string {
	return s.reply
}

func (s *stubReply) GenerateWithHistory(ctx context.Context, history []model.MemoryTurn, text, contextText string) string {
	return s.reply
}

type stubEnrich struct{}

func (s *stubEnrich) ShouldEnrich(text string) bool { return false }

func (s *stubEnrich) Enrich(ctx context.Context, text string) string { return "" }

type stubMemory struct{}

func (s *stubMemory) GetHistory(ctx context.Context, channelName, senderID string) ([]model.MemoryTurn, error) {
	return nil, nil
}

func (s *stubMemory) AppendTurns(ctx context.Context, channelName, senderID string, turns ...model.MemoryTurn) error {
	return nil
}

// newTestProcessor 搭一条出站走 recordingAdapter 的处理链。
func newTestProcessor(t *testing.T, adapters map[string]channel.Adapter) *pipeline.Processor {
	t.Helper()
	logRepo, err := repository.NewChatLogRepository(filepath.Join(t.TempDir(), "chatlog.json"), 100)
	require.NoError(t, err)
	return pipeline.NewProcessor(adapters, &stubReply{reply: "Dạ Bé Bơ đây ạ!"}, &stubEnrich{}, &stubMemory{}, logRepo)
}
