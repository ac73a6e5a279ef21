package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConversationService struct {
	reply    string
	voiceURL string
	gotText  string
	gotImage string
}

func (s *fakeConversationService) HandleTurn(ctx context.Context, text, imageDataURI string) (string, string) {
	s.gotText = text
	s.gotImage = imageDataURI
	return s.reply, s.voiceURL
}

func newChatRouter(svc *fakeConversationService) *gin.Engine {
	router := gin.New()
	router.POST("/chat", NewChatHandler(svc).Chat)
	return router
}

func TestChatHandler_Chat(t *testing.T) {
	svc := &fakeConversationService{reply: "Dạ em gợi ý cơm gà nha!"}
	router := newChatRouter(svc)

	w := doRequest(router, http.MethodPost, "/chat", []byte(`{"message":"quán nào ngon?","channel":"web"}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"reply":"Dạ em gợi ý cơm gà nha!"}`, w.Body.String())
	assert.Equal(t, "quán nào ngon?", svc.gotText)
	assert.Empty(t, svc.gotImage)
}

func TestChatHandler_ChatWithVoice(t *testing.T) {
	svc := &fakeConversationService{reply: "Dạ nghe nè!", voiceURL: "/data/reply-abc.mp3"}
	router := newChatRouter(svc)

	w := doRequest(router, http.MethodPost, "/chat", []byte(`{"message":"đọc cho em nghe"}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"reply":"Dạ nghe nè!","voice_url":"/data/reply-abc.mp3"}`, w.Body.String())
}

func TestChatHandler_ChatForwardsImage(t *testing.T) {
	svc := &fakeConversationService{reply: "Dạ đây là món bún cá."}
	router := newChatRouter(svc)

	w := doRequest(router, http.MethodPost, "/chat", []byte(`{"message":"món này là gì?","image_base64":"data:image/png;base64,aGVsbG8="}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", svc.gotImage)
}

func TestChatHandler_ChatRequiresMessage(t *testing.T) {
	router := newChatRouter(&fakeConversationService{})

	w := doRequest(router, http.MethodPost, "/chat", []byte(`{"channel":"web"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"message is required"}`, w.Body.String())
}
