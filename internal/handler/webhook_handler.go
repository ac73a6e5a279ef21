package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bebo-bot-go/internal/channel"
	"bebo-bot-go/internal/config"
	"bebo-bot-go/internal/pipeline"
	"bebo-bot-go/pkg/apperr"
	"bebo-bot-go/pkg/kafka"
	"bebo-bot-go/pkg/log"
	"bebo-bot-go/pkg/tasks"
)

// WebhookHandler 负责各渠道入站 webhook 的接收与分发
type WebhookHandler struct {
	facebook     channel.Adapter
	zalo         channel.Adapter
	zaloPersonal channel.Adapter
	processor    *pipeline.Processor
}

func NewWebhookHandler(facebook, zalo, zaloPersonal channel.Adapter, processor *pipeline.Processor) *WebhookHandler {
	return &WebhookHandler{
		facebook:     facebook,
		zalo:         zalo,
		zaloPersonal: zaloPersonal,
		processor:    processor,
	}
}

// VerifyFacebook 处理 Facebook 平台的 webhook 订阅校验请求
func (h *WebhookHandler) VerifyFacebook(c *gin.Context) {
	verifier, ok := h.facebook.(channel.Verifier)
	if !ok {
		c.String(http.StatusForbidden, "Forbidden")
		return
	}

	challenge, err := verifier.Verify(
		c.Query("hub.mode"),
		c.Query("hub.verify_token"),
		c.Query("hub.challenge"),
	)
	if err != nil {
		log.Warnf("Facebook webhook 校验失败: %v", err)
		c.String(http.StatusForbidden, "Forbidden")
		return
	}

	// 响应体必须原样回传 challenge，Facebook 以此确认订阅
	c.String(http.StatusOK, challenge)
}

// ReceiveFacebook 接收 Facebook 消息事件。
// 启用 Kafka 时仅投递任务后立即确认，否则同步处理完所有条目再响应。
func (h *WebhookHandler) ReceiveFacebook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	messages, err := h.facebook.Receive(payload)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeNotFound) {
			c.String(http.StatusNotFound, "Not Found")
			return
		}
		log.Warnf("Facebook webhook 负载解析失败: %v", err)
		c.String(apperr.HTTPStatus(err), apperr.Message(err))
		return
	}

	if config.Conf.Kafka.Enabled {
		for _, m := range messages {
			task := tasks.NewInboundMessageTask(channel.NameFacebook, m.SenderID, m.Text)
			if err := kafka.ProduceMessageTask(task); err != nil {
				log.Errorf("投递 Facebook 消息任务到 Kafka 失败: %v", err)
				c.String(http.StatusInternalServerError, "Internal Server Error")
				return
			}
		}
		c.String(http.StatusOK, "EVENT_RECEIVED")
		return
	}

	// 同步模式：所有条目处理完毕后再确认，任一失败以 500 告知平台重投
	var failed bool
	for _, m := range messages {
		task := tasks.NewInboundMessageTask(channel.NameFacebook, m.SenderID, m.Text)
		if err := h.processor.Process(c.Request.Context(), task); err != nil {
			log.Errorf("同步处理 Facebook 消息失败: sender=%s, Error: %v", m.SenderID, err)
			failed = true
		}
	}
	if failed {
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	c.String(http.StatusOK, "EVENT_RECEIVED")
}

// ReceiveZalo 接收 Zalo OA 消息事件，同步处理后按 code 字段报告结果
func (h *WebhookHandler) ReceiveZalo(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1})
		return
	}

	messages, err := h.zalo.Receive(payload)
	if err != nil {
		log.Errorf("Zalo webhook 负载解析失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1})
		return
	}

	for _, m := range messages {
		task := tasks.NewInboundMessageTask(channel.NameZalo, m.SenderID, m.Text)
		if err := h.processor.Process(c.Request.Context(), task); err != nil {
			// 回复发送失败不影响事件确认，仅记录日志
			if apperr.IsCode(err, apperr.CodeUpstream) {
				log.Warnf("Zalo 回复发送失败: sender=%s, Error: %v", m.SenderID, err)
				continue
			}
			log.Errorf("处理 Zalo 消息失败: sender=%s, Error: %v", m.SenderID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"code": 1})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"code": 0})
}

// ReceiveZaloPersonal 接收个人 Zalo 网关转发的消息
func (h *WebhookHandler) ReceiveZaloPersonal(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": 0})
		return
	}

	messages, err := h.zaloPersonal.Receive(payload)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeInvalidArgument) {
			log.Warnf("个人 Zalo webhook 字段缺失: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"ok": 0, "error": apperr.Message(err)})
			return
		}
		log.Errorf("个人 Zalo webhook 负载解析失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": 0})
		return
	}

	for _, m := range messages {
		task := tasks.NewInboundMessageTask(channel.NameZaloPersonal, m.SenderID, m.Text)
		if err := h.processor.Process(c.Request.Context(), task); err != nil {
			if apperr.IsCode(err, apperr.CodeUpstream) {
				log.Warnf("个人 Zalo 回复发送失败: sender=%s, Error: %v", m.SenderID, err)
				continue
			}
			log.Errorf("处理个人 Zalo 消息失败: sender=%s, Error: %v", m.SenderID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"ok": 0})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"ok": 1})
}
