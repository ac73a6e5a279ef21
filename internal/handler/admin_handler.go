package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"bebo-bot-go/internal/service"
	"bebo-bot-go/pkg/apperr"
	"bebo-bot-go/pkg/log"
	"bebo-bot-go/pkg/token"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有跨域请求
	},
}

// AdminHandler 负责后台管理接口：日志查看、实时日志流和消息检索
type AdminHandler struct {
	adminService service.AdminService
	jwtManager   *token.JWTManager
}

func NewAdminHandler(adminService service.AdminService, jwtManager *token.JWTManager) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		jwtManager:   jwtManager,
	}
}

// ListMessages 返回单轮聊天路径的环形日志，从旧到新
func (h *AdminHandler) ListMessages(c *gin.Context) {
	entries, err := h.adminService.ListLogEntries()
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": entries})
}

// SearchMessages 检索持久化的聊天消息，支持按会话过滤
func (h *AdminHandler) SearchMessages(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "q is required"})
		return
	}

	var sessionID uint
	if raw := c.Query("session_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "session_id must be a positive integer"})
			return
		}
		sessionID = uint(v)
	}

	results, err := h.adminService.SearchMessages(c.Request.Context(), query, sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "results": results})
}

// LiveLog 通过 WebSocket 实时推送新的日志条目。
// 浏览器的 WebSocket API 不支持自定义 Header，token 放在路径参数中。
func (h *AdminHandler) LiveLog(c *gin.Context) {
	tokenString := c.Param("token")
	claims, err := h.jwtManager.VerifyToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "无效的 token"})
		return
	}
	if claims.Role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "需要管理员权限"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Errorf("升级 WebSocket 连接失败: %v", err)
		return
	}
	defer conn.Close()

	entries, cancel := h.adminService.SubscribeLog()
	defer cancel()

	log.Infof("管理员 %s 开始订阅实时日志", claims.Username)

	// 读协程只用于探测客户端断开
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return
			}
			payload, err := json.Marshal(entry)
			if err != nil {
				log.Errorf("序列化日志条目失败: %v", err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Infof("管理员 %s 的实时日志连接已断开", claims.Username)
				return
			}
		case <-done:
			return
		}
	}
}
