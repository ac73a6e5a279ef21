package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bebo-bot-go/internal/service"
	"bebo-bot-go/pkg/log"
)

// ChatHandler 负责无状态的单轮对话接口
type ChatHandler struct {
	conversationService service.ConversationService
}

func NewChatHandler(conversationService service.ConversationService) *ChatHandler {
	return &ChatHandler{conversationService: conversationService}
}

type chatRequest struct {
	Message     string `json:"message" binding:"required"`
	Channel     string `json:"channel"`
	ImageBase64 string `json:"image_base64"`
}

// Chat 处理一次完整的单轮对话：可选图片识别、检索增强、生成回复、可选语音合成
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("单轮对话请求参数错误: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	if req.Channel != "" {
		log.Infof("收到单轮对话请求: channel=%s", req.Channel)
	}

	reply, voiceURL := h.conversationService.HandleTurn(c.Request.Context(), req.Message, req.ImageBase64)

	resp := gin.H{"reply": reply}
	if voiceURL != "" {
		resp["voice_url"] = voiceURL
	}
	c.JSON(http.StatusOK, resp)
}
