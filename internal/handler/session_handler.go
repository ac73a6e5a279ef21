package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"bebo-bot-go/internal/service"
	"bebo-bot-go/pkg/log"
)

// SessionHandler 负责会话存储相关的 HTTP 接口（/chat-mysql 前缀）
type SessionHandler struct {
	sessionService service.SessionService
	chatService    service.ChatService
}

func NewSessionHandler(sessionService service.SessionService, chatService service.ChatService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		chatService:    chatService,
	}
}

// ListSessions 列出指定用户的全部会话，按开始时间倒序
func (h *SessionHandler) ListSessions(c *gin.Context) {
	userID, err := parseUintParam(c, "user_id")
	if err != nil {
		respondError(c, err)
		return
	}

	sessions, err := h.sessionService.ListSessions(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "sessions": sessions})
}

type createSessionRequest struct {
	UserID   *uint   `json:"user_id" binding:"required"`
	Context  *string `json:"context"`
	BotModel *string `json:"bot_model"`
}

// CreateSession 为已存在的用户开启一个新会话
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("创建会话请求参数错误: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "user_id is required"})
		return
	}

	session, err := h.sessionService.CreateSession(*req.UserID, req.Context, req.BotModel)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "session": session})
}

// EndSession 结束会话，记录结束时间
func (h *SessionHandler) EndSession(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.sessionService.EndSession(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteSession 删除会话及其全部消息
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.sessionService.DeleteSession(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListMessages 按发送时间正序返回会话内的全部消息
func (h *SessionHandler) ListMessages(c *gin.Context) {
	sessionID, err := parseUintParam(c, "session_id")
	if err != nil {
		respondError(c, err)
		return
	}

	messages, err := h.chatService.ListMessages(sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "messages": messages})
}

type sendMessageRequest struct {
	SessionID *uint           `json:"session_id" binding:"required"`
	Sender    string          `json:"sender"`
	Message   string          `json:"message" binding:"required"`
	Metadata  json.RawMessage `json:"metadata"`
}

// SendMessage 存储一条消息；发送方为用户时同步生成并存储机器人回复
func (h *SessionHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("发送消息请求参数错误: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "session_id and message are required"})
		return
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), *req.SessionID, req.Sender, req.Message, datatypes.JSON(req.Metadata))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"success": true, "message": result.Stored}
	if result.Reply != nil {
		resp["reply"] = result.Reply
	}
	// 回复生成后入库失败时仍算成功，但明确告知调用方回复未持久化
	if result.Degraded {
		resp["degraded"] = true
	}
	c.JSON(http.StatusOK, resp)
}

// GetUser 查询用户基础信息
func (h *SessionHandler) GetUser(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := h.sessionService.GetUser(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// GetStats 返回全局会话统计
func (h *SessionHandler) GetStats(c *gin.Context) {
	stats, err := h.sessionService.GetStats()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}
