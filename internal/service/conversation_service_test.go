package service

import (
	"context"
	"encoding/base64"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bebo-bot-go/internal/config"
	"bebo-bot-go/internal/model"
	"bebo-bot-go/internal/repository"
)

type conversationFixture struct {
	svc     ConversationService
	reply   *stubReplyService
	enrich  *stubEnrichment
	synth   *fakeSynthesizer
	logRepo repository.ChatLogRepository
}

func newConversationFixture(t *testing.T, labeler ImageLabeler, synth SpeechSynthesizer) *conversationFixture {
	t.Helper()
	logRepo, err := repository.NewChatLogRepository(filepath.Join(t.TempDir(), "chatlog.json"), 100)
	require.NoError(t, err)

	reply := &stubReplyService{reply: "Dạ em gợi ý cơm gà nha!"}
	enrich := &stubEnrichment{}
	media := NewMediaService(labeler, synth, config.MinIOConfig{}, config.TTSConfig{OutputDir: t.TempDir()})

	f := &conversationFixture{
		svc:     NewConversationService(reply, enrich, media, logRepo),
		reply:   reply,
		enrich:  enrich,
		logRepo: logRepo,
	}
	if s, ok := synth.(*fakeSynthesizer); ok {
		f.synth = s
	}
	return f
}

func TestConversationService_TextOnlyTurn(t *testing.T) {
	f := newConversationFixture(t, nil, nil)

	reply, voiceURL := f.svc.HandleTurn(context.Background(), "quán mở cửa chưa?", "")
	assert.Equal(t, "Dạ em gợi ý cơm gà nha!", reply)
	assert.Empty(t, voiceURL)
	assert.Empty(t, f.reply.gotContext)

	// 两句话都进了环形日志，先用户后机器人
	entries, err := f.logRepo.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.SenderUser, entries[0].From)
	assert.Equal(t, "quán mở cửa chưa?", entries[0].Content)
	assert.Equal(t, model.SenderBot, entries[1].From)
	assert.Equal(t, "Dạ em gợi ý cơm gà nha!", entries[1].Content)
}

func TestConversationService_ImageAndEnrichmentComposeContext(t *testing.T) {
	labeler := &fakeLabeler{labels: []string{"food", "noodle"}}
	f := newConversationFixture(t, labeler, nil)
	f.enrich.context = "Quán gợi ý: Quán A"

	imageDataURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	_, _ = f.svc.HandleTurn(context.Background(), "món này là gì?", imageDataURI)

	// 图片描述在前、检索上下文在后
	require.True(t, strings.HasPrefix(f.reply.gotContext, "Mô tả ảnh khách gửi: "))
	assert.Contains(t, f.reply.gotContext, "food, noodle")
	assert.True(t, strings.HasSuffix(f.reply.gotContext, "\n\nQuán gợi ý: Quán A"))
	assert.Equal(t, []byte("png-bytes"), labeler.gotData)
}

func TestConversationService_VoiceOnSuccessfulSynthesis(t *testing.T) {
	f := newConversationFixture(t, nil, &fakeSynthesizer{audio: []byte("mp3-bytes")})

	reply, voiceURL := f.svc.HandleTurn(context.Background(), "đọc cho em nghe", "")
	assert.NotEmpty(t, reply)
	require.NotEmpty(t, voiceURL)
	assert.True(t, strings.HasPrefix(voiceURL, "/data/"))
	assert.True(t, strings.HasSuffix(voiceURL, ".mp3"))
	assert.Equal(t, reply, f.synth.gotText)
}

func TestConversationService_SynthesisFailureDropsVoiceOnly(t *testing.T) {
	f := newConversationFixture(t, nil, &fakeSynthesizer{err: errors.New("quota exceeded")})

	reply, voiceURL := f.svc.HandleTurn(context.Background(), "đọc cho em nghe", "")
	assert.Equal(t, "Dạ em gợi ý cơm gà nha!", reply)
	assert.Empty(t, voiceURL)

	entries, err := f.logRepo.List()
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
